// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/invowk/cliframe/pkg/descriptor"
)

// demoHandler backs `cliframe run`. Its commands cover the conversions the
// framework ships with: text, numbers, decimals, durations and enums.
type demoHandler struct {
	Upper  bool   `cli:"u" help:"Print in upper case."`
	Repeat *int   `cli:"n" help:"Print the text this many times." validate:"null | (>=1 & <=10)"`
	Level  level  `cli:"l" help:"Message level: info, warn or error."`
	Prefix string `cli:"p,long=prefix" help:"Text printed before each line."`

	out io.Writer
}

// level is a closed set of message levels.
type level string

var errDemo = errors.New("demo failure")

func newDemoHandler(out io.Writer) *demoHandler {
	return &demoHandler{out: out}
}

// EnumConstants lists the accepted levels.
func (level) EnumConstants() []any {
	return []any{level("info"), level("warn"), level("error")}
}

func (h *demoHandler) CmdEcho(text string) {
	if h.Upper {
		text = strings.ToUpper(text)
	}
	if h.Level != "" {
		text = "[" + string(h.Level) + "] " + text
	}
	n := 1
	if h.Repeat != nil {
		n = *h.Repeat
	}
	for range n {
		fmt.Fprintln(h.out, h.Prefix+text)
	}
}

func (h *demoHandler) CmdAdd(a, b *apd.Decimal) error {
	var sum apd.Decimal
	if _, err := apd.BaseContext.WithPrecision(34).Add(&sum, a, b); err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.Prefix+sum.String())
	return nil
}

func (h *demoHandler) CmdSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		fmt.Fprintf(h.out, "%sslept %s\n", h.Prefix, d)
		return nil
	}
}

func (h *demoHandler) CmdFail(code int) error {
	return &ExitError{Code: code, Err: errDemo}
}

// Describe implements descriptor.Describer.
func (h *demoHandler) Describe(cmd *descriptor.Command) {
	switch cmd.Name {
	case "echo":
		cmd.Summary = "Print text. Options change case, level, prefix and repetition."
		cmd.NameArgs("text")
		cmd.ArgNamed("text").Summary = "text to print"
	case "add":
		cmd.Summary = "Add two decimal numbers with 34 digits of precision."
		cmd.NameArgs("a", "b")
		cmd.ArgNamed("b").SetDefault("0")
	case "sleep":
		cmd.Summary = "Wait for a duration such as 250ms or 2s."
		cmd.NameArgs("duration")
		cmd.ArgNamed("duration").SetDefault("1s")
	case "fail":
		cmd.Summary = "Fail with the given exit code."
		cmd.NameArgs("code")
	}
}
