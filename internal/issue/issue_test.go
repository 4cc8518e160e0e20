// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(ConfigLoadFailedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), ConfigLoadFailedId)
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
		if strings.TrimSpace(string(v.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", v.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	i := Get(CommandNotFoundId)
	if i == nil {
		t.Fatal("Get(CommandNotFoundId) returned nil")
	}
	if !strings.Contains(string(i.MarkdownMsg()), "Command not found") {
		t.Errorf("unexpected message: %s", i.MarkdownMsg())
	}
	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	i := &Issue{id: 1, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/docs"}}
	out, err := i.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"Title", "https://example.com/docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() should contain %q, got:\n%s", want, out)
		}
	}

	links := i.DocLinks()
	links[0] = "changed"
	if i.DocLinks()[0] == "changed" {
		t.Error("DocLinks() should return a copy")
	}
}
