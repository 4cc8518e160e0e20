// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type (
	ctxKey struct{}

	fileHandler struct {
		Output  string `cli:"o" help:"Output file."`
		DryRun  bool   `cli:",long=dry-run"`
		Limit   *int   `cli:"n" help:"Maximum entries." validate:">=1"`
		Timeout time.Duration
		Ignored string `cli:"-"`

		calls []string
		ctx   context.Context
	}

	badHandler struct{}

	hiddenHandler struct {
		secret string `cli:"s"`
	}
)

var errCopy = errors.New("copy failed")

func (h *fileHandler) CmdLs(path string) {
	h.calls = append(h.calls, "ls "+path)
}

func (h *fileHandler) CmdCopy(ctx context.Context, src, dst string, retries int) error {
	h.ctx = ctx
	h.calls = append(h.calls, "copy "+src+" "+dst)
	if retries < 0 {
		return errCopy
	}
	return nil
}

func (h *fileHandler) CmdHTTPGet(url string, timeout time.Duration) {}

func (h *fileHandler) Helper() {}

func (h *fileHandler) Describe(cmd *Command) {
	switch cmd.Name {
	case "ls":
		cmd.Summary = "List a directory."
		cmd.NameArgs("path")
		cmd.ArgNamed("path").SetDefault(".")
	case "copy":
		cmd.NameArgs("src", "dst", "retries")
		cmd.ArgNamed("retries").Constraint = ">=0"
	}
}

func (badHandler) CmdCount() int { return 0 }

func TestIntrospect(t *testing.T) {
	t.Parallel()

	cmds, err := Introspect(&fileHandler{})
	if err != nil {
		t.Fatalf("Introspect() error = %v", err)
	}

	var names []string
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	if want := []string{"copy", "http-get", "ls"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("command names = %v, want %v", names, want)
	}

	copyCmd := cmds[0]
	if copyCmd.Handler != "descriptor.fileHandler" || copyCmd.Method != "CmdCopy" {
		t.Errorf("copy Handler, Method = %q, %q", copyCmd.Handler, copyCmd.Method)
	}
	wantArgs := []Argument{
		{Name: "src", Position: 0, Type: "string"},
		{Name: "dst", Position: 1, Type: "string"},
		{Name: "retries", Position: 2, Type: "int", Constraint: ">=0"},
	}
	if !reflect.DeepEqual(copyCmd.Args, wantArgs) {
		t.Errorf("copy Args = %+v, want %+v", copyCmd.Args, wantArgs)
	}

	wantOptions := []Option{
		{Short: "o", Long: "output", Field: "Output", Summary: "Output file."},
		{Long: "dry-run", Field: "DryRun"},
		{Short: "n", Long: "limit", Field: "Limit", Summary: "Maximum entries.", Constraint: ">=1"},
	}
	if !reflect.DeepEqual(copyCmd.Options, wantOptions) {
		t.Errorf("copy Options = %+v, want %+v", copyCmd.Options, wantOptions)
	}

	get := cmds[1]
	if got := get.Args[1]; got.Name != "arg1" || got.Type != "time.Duration" {
		t.Errorf("http-get Args[1] = %+v, want arg1 of time.Duration", got)
	}

	ls := cmds[2]
	if ls.Summary != "List a directory." || ls.Args[0].Name != "path" || *ls.Args[0].Default != "." {
		t.Errorf("ls = %+v, want Describer refinements", ls)
	}
}

func TestIntrospect_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler any
	}{
		{"nil", nil},
		{"not a pointer", fileHandler{}},
		{"pointer to non-struct", new(int)},
		{"unsupported return", &badHandler{}},
		{"unexported option field", &hiddenHandler{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Introspect(tt.handler); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Introspect() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag     string
		want    Option
		wantErr bool
	}{
		{tag: "o", want: Option{Short: "o"}},
		{tag: "o,long=output", want: Option{Short: "o", Long: "output"}},
		{tag: ",long=dry-run", want: Option{Long: "dry-run"}},
		{tag: "o,short=x", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTag(tt.tag)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTag(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTag(%q) = %+v, want %+v", tt.tag, got, tt.want)
		}
	}
}

func TestBind_Call(t *testing.T) {
	t.Parallel()

	h := &fileHandler{}
	cmds, err := Introspect(h)
	if err != nil {
		t.Fatalf("Introspect() error = %v", err)
	}

	b, err := Bind(cmds[0], h)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if got := b.Params(); len(got) != 3 || got[2] != reflect.TypeFor[int]() {
		t.Errorf("Params() = %v", got)
	}
	if b.Handler() != h || b.Command().Name != "copy" {
		t.Errorf("Handler(), Command() do not match the bound values")
	}

	for _, o := range b.Options() {
		switch o.Field {
		case "Output":
			if err := o.Set("out.txt"); err != nil {
				t.Fatalf("Set(Output) error = %v", err)
			}
		case "Limit":
			n := 5
			if err := o.Set(&n); err != nil {
				t.Fatalf("Set(Limit) error = %v", err)
			}
		case "DryRun":
			if err := o.Set(42); err == nil {
				t.Error("Set(DryRun, 42) should reject an int")
			}
		}
	}
	if h.Output != "out.txt" || h.Limit == nil || *h.Limit != 5 {
		t.Errorf("options not injected: %+v", h)
	}

	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	if err := b.Call(ctx, []any{"a", "b", 1}); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if h.ctx == nil || h.ctx.Value(ctxKey{}) != "marker" {
		t.Error("Call() did not pass the context through")
	}
	if err := b.Call(ctx, []any{"a", "b", -1}); err != errCopy {
		t.Errorf("Call() error = %v, want the operation's own error", err)
	}
	if err := b.Call(ctx, []any{"a", "b"}); err == nil {
		t.Error("Call() with too few arguments should fail")
	}
	if err := b.Call(ctx, []any{"a", 2, 1}); err == nil {
		t.Error("Call() with a mistyped argument should fail")
	}
}

func TestBind_NilArgumentUsesZeroValue(t *testing.T) {
	t.Parallel()

	h := &fileHandler{}
	b, err := Bind(Command{Name: "ls", Args: []Argument{{Name: "path", Position: 0, Type: "string"}}}, h)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := b.Call(context.Background(), []any{nil}); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if want := []string{"ls "}; !reflect.DeepEqual(h.calls, want) {
		t.Errorf("calls = %q, want %q", h.calls, want)
	}
}

func TestBind_Errors(t *testing.T) {
	t.Parallel()

	str := []Argument{{Name: "path", Position: 0, Type: "string"}}
	tests := []struct {
		name    string
		cmd     Command
		handler any
	}{
		{"nil handler", Command{Name: "ls", Args: str}, (*fileHandler)(nil)},
		{"missing method", Command{Name: "rm"}, &fileHandler{}},
		{"arity mismatch", Command{Name: "ls"}, &fileHandler{}},
		{"type mismatch", Command{Name: "ls", Args: []Argument{{Name: "path", Position: 0, Type: "int"}}}, &fileHandler{}},
		{"missing field", Command{Name: "ls", Args: str, Options: []Option{{Long: "colour"}}}, &fileHandler{}},
		{"unsupported return", Command{Name: "count"}, &badHandler{}},
		{"invalid descriptor", Command{Name: ""}, &fileHandler{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Bind(tt.cmd, tt.handler); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Bind() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}
