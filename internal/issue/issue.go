// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Catalog entries.
const (
	CommandNotFoundId Id = iota + 1
	WrongArgumentTypeId
	WrongOptionTypeId
	ConstraintViolationId
	ConversionUnsupportedId
	InvalidDescriptorId
	DescriptorNotFoundId
	HandlerUnavailableId
	ConfigLoadFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry explaining a class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the catalog identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the unrendered Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue for the terminal with the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

No registered command has the name you typed.

## Things you can try:
- Run the program without arguments to list the available commands
- Check for typos; command names are case sensitive
- If the command comes from a descriptor file, check that the file is listed
  under ` + "`descriptors`" + ` in your config or lives in a search path`,
	}

	wrongArgumentTypeIssue = &Issue{
		id: WrongArgumentTypeId,
		mdMsg: `
# Argument has wrong type!

A positional argument could not be converted to the type the command expects.

## Things you can try:
- Run the command with ` + "`--help`" + ` to see the expected arguments and their types
- Quote values containing spaces
- Numbers are parsed in base 10; booleans accept true/false, yes/no, on/off, y/n and 1/0`,
	}

	wrongOptionTypeIssue = &Issue{
		id: WrongOptionTypeId,
		mdMsg: `
# Option has wrong type!

An option value could not be converted to the type of the field it is stored in.

## Things you can try:
- Run the command with ` + "`--help`" + ` to see the available options
- An option followed by another option is treated as a flag with the value "true";
  pass the value right after the option key
- Negative numbers are accepted as values: ` + "`-n -5`",
	}

	constraintViolationIssue = &Issue{
		id: ConstraintViolationId,
		mdMsg: `
# Validation failed!

One or more values were converted successfully but violate a declared constraint.
Options are checked before arguments, and every violation is listed.

## Things you can try:
- Read the constraint next to each listed property
- Run the command with ` + "`--help`" + ` for a description of each value`,
	}

	conversionUnsupportedIssue = &Issue{
		id: ConversionUnsupportedId,
		mdMsg: `
# No converter for a declared type!

The command declares a parameter or option whose type cannot be built from text.
This is a problem in the program, not in your input.

## Things you can try (program authors):
- Implement ` + "`encoding.TextUnmarshaler`" + ` on the type
- Register a converter for the type with ` + "`convert.Engine.Register`",
	}

	invalidDescriptorIssue = &Issue{
		id: InvalidDescriptorId,
		mdMsg: `
# Invalid command descriptor!

A command descriptor is malformed or does not match its handler.

## Common issues:
- A declared argument type differs from the Go parameter type
- The method or an option field does not exist on the handler
- Argument positions are not contiguous from 0
- A short option key has more than one character

## Things you can try:
- Regenerate the descriptor file:
~~~
$ cliframe generate ./path/to/handlers
~~~
- Validate it:
~~~
$ cliframe validate cliframe/commands.cue
~~~`,
	}

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# Descriptor file not found!

A descriptor file listed in the configuration could not be read.

## Search locations (in order of precedence):
1. Paths listed under ` + "`descriptors`" + ` in the config file
2. ` + "`cliframe/commands.cue`" + ` in the current directory
3. ` + "`cliframe/commands.cue`" + ` in each of the ` + "`search_paths`",
	}

	handlerUnavailableIssue = &Issue{
		id: HandlerUnavailableId,
		mdMsg: `
# Handler unavailable!

The command is declared, but no handler instance is registered for it.

## Things you can try (program authors):
- Register the handler value with ` + "`RegisterHandler`" + `
- Or register a factory for the descriptor's handler name with ` + "`Provide`",
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be parsed or validated.

## Things you can try:
- Show the effective configuration:
~~~
$ cliframe config show
~~~
- Check the CUE syntax; unknown keys are rejected
- Environment variables prefixed with ` + "`CLIFRAME_`" + ` override file values`,
	}

	issues = map[Id]*Issue{
		commandNotFoundIssue.Id():       commandNotFoundIssue,
		wrongArgumentTypeIssue.Id():     wrongArgumentTypeIssue,
		wrongOptionTypeIssue.Id():       wrongOptionTypeIssue,
		constraintViolationIssue.Id():   constraintViolationIssue,
		conversionUnsupportedIssue.Id(): conversionUnsupportedIssue,
		invalidDescriptorIssue.Id():     invalidDescriptorIssue,
		descriptorNotFoundIssue.Id():    descriptorNotFoundIssue,
		handlerUnavailableIssue.Id():    handlerUnavailableIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
