// SPDX-License-Identifier: MPL-2.0

package cliframe

import (
	"errors"
	"fmt"
	"os"

	"github.com/invowk/cliframe/internal/issue"
	"github.com/invowk/cliframe/pkg/convert"
	"github.com/invowk/cliframe/pkg/dispatch"
	"golang.org/x/term"
)

// maxExitCode is the largest status POSIX systems report to the parent.
const maxExitCode = 255

// Explain wraps err in an actionable error naming the catalog issue and
// suggestions for its kind. Errors that are already actionable are returned
// as they are; errors raised by an operation get no issue and no suggestions.
func Explain(err error, command string) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	help := fmt.Sprintf("Run '%s --help' to see its options and arguments", command)
	ctx := issue.NewErrorContext().WithOperation("run command").WithResource(command).Wrap(err)

	var (
		notFound *dispatch.CommandNotFoundError
		wrongArg *dispatch.WrongArgumentTypeError
		wrongOpt *dispatch.WrongOptionTypeError
		violated *dispatch.ConstraintViolationError
		missing  *DescriptorNotFoundError
	)
	switch {
	case errors.As(err, &notFound):
		ctx.WithIssue(issue.CommandNotFoundId).
			WithSuggestion("Run without arguments to list the available commands")
	case errors.Is(err, convert.ErrConversionUnsupported):
		ctx.WithIssue(issue.ConversionUnsupportedId).
			WithSuggestion("Implement encoding.TextUnmarshaler on the parameter or field type").
			WithSuggestion("Or register a converter for the type on the conversion engine")
	case errors.As(err, &wrongArg):
		ctx.WithIssue(issue.WrongArgumentTypeId).
			WithSuggestion(fmt.Sprintf("Argument %s expects a value of type %s", wrongArg.Name, wrongArg.Type)).
			WithSuggestion(help)
	case errors.As(err, &wrongOpt):
		ctx.WithIssue(issue.WrongOptionTypeId).
			WithSuggestion(fmt.Sprintf("Option %s expects a value of type %s", wrongOpt.Key(), wrongOpt.Type)).
			WithSuggestion(help)
	case errors.As(err, &violated):
		ctx.WithIssue(issue.ConstraintViolationId).WithSuggestion(help)
	case errors.As(err, &missing):
		ctx.WithOperation("load descriptors").
			WithResource(missing.Path).
			WithIssue(issue.DescriptorNotFoundId).
			WithSuggestion("Check the descriptors list in config.cue or CLIFRAME_DESCRIPTORS")
	case errors.Is(err, dispatch.ErrInvalidDescriptor):
		ctx.WithIssue(issue.InvalidDescriptorId).
			WithSuggestion("Run 'cliframe validate <file>' on the descriptor file").
			WithSuggestion("Regenerate descriptors with 'cliframe generate' after changing handler signatures")
	case errors.Is(err, dispatch.ErrHandlerUnavailable):
		ctx.WithIssue(issue.HandlerUnavailableId).
			WithSuggestion("Pass the handler to cliframe.Main or register a factory with Registry.Provide")
	}
	return ctx.Build()
}

// Message returns the text shown to the user for err: the message and
// suggestions for framework failures, the error text for operation failures.
func Message(err error, command string) string {
	ae := Explain(err, command)
	if ae.Issue == 0 && !ae.HasSuggestions() {
		return err.Error()
	}
	return ae.Format(false)
}

// ExitCode returns the exit status for err: 0 for nil, the code of an error
// implementing ExitCode() int when it is in 1..255, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code > 0 && code <= maxExitCode {
			return code
		}
	}
	return 1
}

// renderIssue renders the catalog entry of ae as Markdown for the terminal.
func renderIssue(ae *issue.ActionableError) string {
	if ae.Issue == 0 {
		return ""
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return ""
	}
	style := "notty"
	if term.IsTerminal(int(os.Stderr.Fd())) {
		style = "dark"
	}
	out, err := entry.Render(style)
	if err != nil {
		return ""
	}
	return out
}
