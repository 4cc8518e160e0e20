// SPDX-License-Identifier: MPL-2.0

package gen

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/go/packages"

	"github.com/invowk/cliframe/pkg/descriptor"
)

const defaultDirective = "cli:default"

var (
	// ErrLoad is returned when the handler packages cannot be loaded or type-checked.
	ErrLoad = errors.New("failed to load handler packages")

	// ErrNoCommands is returned when the loaded packages declare no Cmd methods.
	ErrNoCommands = errors.New("no command methods found")
)

type (
	// Options controls which packages and handler types are scanned.
	Options struct {
		// Dir is the directory patterns are resolved in. Empty means the
		// current directory.
		Dir string
		// Patterns are go/packages patterns. Default is ".".
		Patterns []string
		// Types restricts generation to the named handler types.
		Types []string
		// Tags are build tags applied while loading.
		Tags []string
	}

	// LoadError is returned when go/packages reports errors for a package.
	// It wraps ErrLoad and every package error.
	LoadError struct {
		Package string
		Errs    []error
	}

	// handlerDecl collects the syntax of one handler type.
	handlerDecl struct {
		name    string
		fields  []*ast.Field
		methods []*ast.FuncDecl
	}
)

// Error implements the error interface.
func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("load %s: %s", e.Package, strings.Join(msgs, "; "))
}

// Unwrap returns the sentinel and the package errors.
func (e *LoadError) Unwrap() []error {
	return append([]error{ErrLoad}, e.Errs...)
}

// Generate loads the packages matched by opts and returns one descriptor per
// Cmd method of every handler type, ordered by type name then method name.
func Generate(ctx context.Context, opts Options) ([]descriptor.Command, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var cmds []descriptor.Command
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			loadErr := &LoadError{Package: pkg.PkgPath}
			for _, e := range pkg.Errors {
				loadErr.Errs = append(loadErr.Errs, e)
			}
			return nil, loadErr
		}
		pkgCmds, err := fromPackage(pkg, opts.Types)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, pkgCmds...)
	}

	if len(cmds) == 0 {
		return nil, ErrNoCommands
	}
	if err := (descriptor.Set{Commands: cmds}).Validate(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func fromPackage(pkg *packages.Package, only []string) ([]descriptor.Command, error) {
	decls := collect(pkg.Syntax)

	names := make([]string, 0, len(decls))
	for name, d := range decls {
		if len(d.methods) == 0 || (len(only) > 0 && !slices.Contains(only, name)) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	qualifier := func(p *types.Package) string { return p.Name() }

	var cmds []descriptor.Command
	for _, name := range names {
		d := decls[name]
		options, err := fieldOptions(d.fields)
		if err != nil {
			return nil, err
		}

		slices.SortFunc(d.methods, func(a, b *ast.FuncDecl) int { return strings.Compare(a.Name.Name, b.Name.Name) })
		for _, fn := range d.methods {
			cmdName, _ := descriptor.CommandName(fn.Name.Name)
			obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
			if !ok {
				continue
			}
			sig := obj.Type().(*types.Signature)
			if err := checkSignature(sig); err != nil {
				return nil, &descriptor.InvalidDescriptorError{Command: cmdName, Field: "method", Reason: fn.Name.Name + ": " + err.Error()}
			}

			params := paramNames(fn, sig)
			summary, argDocs, defaults := parseDoc(fn.Name.Name, fn.Doc, params)

			cmd := descriptor.Command{
				Name:    cmdName,
				Handler: pkg.Types.Name() + "." + name,
				Method:  fn.Name.Name,
				Summary: summary,
				Options: slices.Clone(options),
			}
			first := 0
			if sig.Params().Len() > len(params) {
				first = 1
			}
			for pos, pname := range params {
				arg := descriptor.Argument{
					Name:     pname,
					Position: pos,
					Type:     types.TypeString(sig.Params().At(first+pos).Type(), qualifier),
					Summary:  argDocs[pname],
				}
				if v, ok := defaults[pname]; ok {
					arg.SetDefault(v)
				}
				cmd.Args = append(cmd.Args, arg)
			}

			cmd = cmd.Normalize()
			if err := cmd.Validate(); err != nil {
				return nil, err
			}
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

// collect indexes struct types and their Cmd methods by type name.
func collect(files []*ast.File) map[string]*handlerDecl {
	decls := make(map[string]*handlerDecl)
	get := func(name string) *handlerDecl {
		d, ok := decls[name]
		if !ok {
			d = &handlerDecl{name: name}
			decls[name] = d
		}
		return d
	}

	for _, file := range files {
		for _, decl := range file.Decls {
			switch decl := decl.(type) {
			case *ast.GenDecl:
				if decl.Tok != token.TYPE {
					continue
				}
				for _, spec := range decl.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					if st, ok := ts.Type.(*ast.StructType); ok {
						get(ts.Name.Name).fields = st.Fields.List
					}
				}
			case *ast.FuncDecl:
				if decl.Recv == nil || len(decl.Recv.List) != 1 {
					continue
				}
				if _, ok := descriptor.CommandName(decl.Name.Name); !ok {
					continue
				}
				if recv := receiverTypeName(decl.Recv.List[0].Type); recv != "" {
					get(recv).methods = append(get(recv).methods, decl)
				}
			}
		}
	}
	return decls
}

// receiverTypeName returns the type name of a method receiver, T or *T.
func receiverTypeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return receiverTypeName(e.X)
	}
	return ""
}

func checkSignature(sig *types.Signature) error {
	if sig.Variadic() {
		return errors.New("variadic operations are not supported")
	}
	switch res := sig.Results(); {
	case res.Len() == 0:
	case res.Len() == 1 && types.Identical(res.At(0).Type(), types.Universe.Lookup("error").Type()):
	default:
		return fmt.Errorf("operation must return nothing or error, got %s", res)
	}
	return nil
}

// paramNames returns the source names of the argument parameters, skipping
// a leading context.Context. Blank and unnamed parameters are named argN.
func paramNames(fn *ast.FuncDecl, sig *types.Signature) []string {
	params := sig.Params()
	start := 0
	if params.Len() > 0 && types.TypeString(params.At(0).Type(), nil) == "context.Context" {
		start = 1
	}

	names := make([]string, 0, params.Len()-start)
	for i := start; i < params.Len(); i++ {
		name := params.At(i).Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i-start)
		}
		names = append(names, name)
	}
	return names
}

// parseDoc splits a method doc comment into the summary, the argument
// summaries given as "name: text" lines, and the //cli:default directives.
// The summary is the first paragraph; a leading method name is dropped.
func parseDoc(method string, doc *ast.CommentGroup, params []string) (summary string, argDocs, defaults map[string]string) {
	argDocs = make(map[string]string)
	defaults = make(map[string]string)
	if doc == nil {
		return "", argDocs, defaults
	}

	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, "//"+defaultDirective)
		if !ok {
			continue
		}
		name, value, ok := strings.Cut(strings.TrimSpace(rest), "=")
		if !ok {
			continue
		}
		if unquoted, err := strconv.Unquote(value); err == nil {
			value = unquoted
		}
		defaults[strings.TrimSpace(name)] = value
	}

	var first []string
	paragraph := 0
	for line := range strings.SplitSeq(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(first) > 0 {
				paragraph++
			}
			continue
		}
		if name, text, ok := strings.Cut(line, ":"); ok && slices.Contains(params, strings.TrimSpace(name)) {
			argDocs[strings.TrimSpace(name)] = strings.TrimSpace(text)
			continue
		}
		if paragraph == 0 {
			first = append(first, line)
		}
	}
	return trimMethodName(method, strings.Join(first, " ")), argDocs, defaults
}

// trimMethodName turns "CmdLs lists files." into "Lists files.".
func trimMethodName(method, summary string) string {
	rest, ok := strings.CutPrefix(summary, method+" ")
	if !ok {
		return summary
	}
	r, size := utf8.DecodeRuneInString(rest)
	return string(unicode.ToUpper(r)) + rest[size:]
}

// fieldOptions derives options from `cli`-tagged struct fields. The help tag
// wins over the field's doc comment for the summary.
func fieldOptions(fields []*ast.Field) ([]descriptor.Option, error) {
	var options []descriptor.Option
	for _, f := range fields {
		if f.Tag == nil {
			continue
		}
		raw, err := strconv.Unquote(f.Tag.Value)
		if err != nil {
			continue
		}
		tag := reflect.StructTag(raw)
		cli, ok := tag.Lookup(descriptor.TagCLI)
		if !ok || cli == "-" {
			continue
		}

		for _, ident := range f.Names {
			if !ident.IsExported() {
				return nil, &descriptor.InvalidDescriptorError{Field: "options", Reason: fmt.Sprintf("field %s is tagged but not exported", ident.Name)}
			}
			opt, err := descriptor.ParseTag(cli)
			if err != nil {
				return nil, &descriptor.InvalidDescriptorError{Field: "options", Reason: fmt.Sprintf("field %s: %v", ident.Name, err)}
			}
			opt.Field = ident.Name
			if opt.Long == "" {
				opt.Long = descriptor.KebabCase(ident.Name)
			}
			opt.Summary = tag.Get(descriptor.TagHelp)
			if opt.Summary == "" {
				opt.Summary = commentText(f.Doc, f.Comment)
			}
			opt.Constraint = tag.Get(descriptor.TagValidate)
			options = append(options, opt)
		}
	}
	return options, nil
}

// commentText joins the first non-empty comment group into one line.
func commentText(groups ...*ast.CommentGroup) string {
	for _, g := range groups {
		if text := strings.Join(strings.Fields(g.Text()), " "); text != "" {
			return text
		}
	}
	return ""
}
