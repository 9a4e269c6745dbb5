package embed

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/snipline/snipline/internal/dialog"
	"github.com/snipline/snipline/internal/expander"
	"github.com/snipline/snipline/internal/models"
	"github.com/snipline/snipline/internal/service"
	"github.com/snipline/snipline/internal/surface"
)

// newHost builds a host over a compose-like document: surrounding content
// carrying a case number, a subject field, and an editable region holding
// the text being typed. The caret sits at the end of the editable region.
func newHost(t *testing.T, snippets map[string]models.Body, edit *surface.Node) *Host {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SNIPLINE_DIR", dir)

	cfgSrc := "detect_patterns:\n  Case: case (\\d+)\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfgSrc), 0644); err != nil {
		t.Fatal(err)
	}

	svc, err := service.New(dir)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	t.Cleanup(svc.Close)
	for trigger, body := range snippets {
		if err := svc.SaveSnippet(trigger, "", body); err != nil {
			t.Fatalf("SaveSnippet failed: %v", err)
		}
	}

	doc := surface.NewDocument(surface.NewElement("div", nil,
		surface.NewElement("span", nil, surface.NewText("Ticket case 48213 opened")),
		surface.NewElement("input", map[string]string{"name": "subjectbox"}),
		surface.NewElement("div", map[string]string{"contenteditable": "true"}, edit),
	))
	h := New(svc, doc)
	t.Cleanup(h.Close)
	return h
}

func TestPlainExpansionRewritesDocument(t *testing.T) {
	edit := surface.NewText("say /hi")
	h := newHost(t, map[string]models.Body{"/hi": {Text: "hello there"}}, edit)

	if action := h.HandleKey(expander.KeyEvent{Key: "space"}); action != expander.ActionExpanded {
		t.Fatalf("HandleKey = %v", action)
	}
	if edit.Text != "say hello there" {
		t.Errorf("Editable region = %q", edit.Text)
	}
}

func TestDetectedValuesSeedDialog(t *testing.T) {
	edit := surface.NewText("/report")
	h := newHost(t, map[string]models.Body{
		"/report": {Text: "Case {{input:Case}}: {{input:Status|open}}"},
	}, edit)

	if action := h.HandleKey(expander.KeyEvent{Key: "space"}); action != expander.ActionDialog {
		t.Fatalf("HandleKey = %v", action)
	}
	if !h.Dialog().Active() {
		t.Fatal("Dialog should be showing")
	}

	values := h.Dialog().Values()
	if values["Case"] != "48213" {
		t.Errorf("Detected case number should seed the dialog, got %q", values["Case"])
	}
	if values["Status"] != "open" {
		t.Errorf("Undetected placeholder keeps its default, got %q", values["Status"])
	}

	// Confirming the dialog resumes the expansion into the document.
	_, cmd := h.Dialog().Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Confirming should close the dialog")
	}
	rm, ok := cmd().(dialog.ResultMsg)
	if !ok || rm.Result.Outcome != dialog.OutcomeInsert {
		t.Fatalf("Unexpected dialog result: %+v", rm)
	}
	h.Resolve(rm.Result)

	if edit.Text != "Case 48213: open" {
		t.Errorf("Editable region = %q", edit.Text)
	}
}

func TestMailSnippetFillsSubjectField(t *testing.T) {
	edit := surface.NewText("/case")
	h := newHost(t, map[string]models.Body{
		"/case": {Mail: &models.MailTemplate{Subject: "Re: order", Body: "All sorted."}},
	}, edit)

	if action := h.HandleKey(expander.KeyEvent{Key: "enter"}); action != expander.ActionExpanded {
		t.Fatalf("HandleKey = %v", action)
	}
	if edit.Text != "All sorted." {
		t.Errorf("Editable region = %q", edit.Text)
	}
	subject := h.Document().Find(func(n *surface.Node) bool {
		return n.Attr("name") == "subjectbox"
	})
	if subject == nil || len(subject.Children()) == 0 || subject.Children()[0].Text != "Re: order" {
		t.Error("Subject field should hold the resolved subject")
	}
}
