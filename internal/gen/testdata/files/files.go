// SPDX-License-Identifier: MPL-2.0

// Package files is a handler package scanned by the generator tests.
package files

import (
	"context"
	"time"
)

// Handler lists and watches files.
type Handler struct {
	// Output is written instead of stdout.
	Output string `cli:"o"`
	Limit  int    `cli:"n,long=max" help:"Maximum entries." validate:">=1"`

	verbose bool
}

// CmdLs lists a directory.
//
// path: directory to list
//
//cli:default path=.
func (h *Handler) CmdLs(path string) error {
	_ = h.verbose
	return nil
}

// CmdWait blocks for a while.
// It honors cancellation.
func (h *Handler) CmdWait(ctx context.Context, d time.Duration, _ int) {
	_, _ = ctx, d
}

func (h *Handler) helper() {}

type other struct{}

func (o other) CmdPing(host string) {}
