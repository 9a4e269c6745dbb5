package mailfields

import (
	"testing"

	"github.com/snipline/snipline/internal/expander"
	"github.com/snipline/snipline/internal/index"
	"github.com/snipline/snipline/internal/models"
	"github.com/snipline/snipline/internal/surface"
)

func composeDoc() (*surface.Document, *surface.Node, *surface.Node) {
	subject := surface.NewElement("input", map[string]string{"name": "subjectbox"})
	body := surface.NewElement("div", map[string]string{"role": "textbox"}, surface.NewText("draft"))
	doc := surface.NewDocument(surface.NewElement("div", nil, subject, body))
	return doc, subject, body
}

func TestFindsComposeFields(t *testing.T) {
	doc, subject, body := composeDoc()
	c := New(doc)

	if c.SubjectNode() != subject {
		t.Error("Subject field not found")
	}
	if c.BodyNode() != body {
		t.Error("Body field not found")
	}
}

func TestSubjectMatchesByAriaLabel(t *testing.T) {
	subject := surface.NewElement("input", map[string]string{"aria-label": "Subject line"})
	doc := surface.NewDocument(surface.NewElement("div", nil, subject))
	if New(doc).SubjectNode() != subject {
		t.Error("aria-label match failed")
	}
}

func TestSetSubjectWritesAndNotifies(t *testing.T) {
	doc, subject, _ := composeDoc()
	var events int
	doc.OnChange(func(surface.ChangeEvent) { events++ })

	c := New(doc)
	if !c.SetSubject("Re: order") {
		t.Fatal("SetSubject should succeed")
	}
	if len(subject.Children()) != 1 || subject.Children()[0].Text != "Re: order" {
		t.Errorf("Subject content: %+v", subject.Children())
	}
	if events != 3 {
		t.Errorf("Expected the synthetic change triple, got %d events", events)
	}

	// Rewrites reuse the text child.
	c.SetSubject("Re: updated")
	if len(subject.Children()) != 1 || subject.Children()[0].Text != "Re: updated" {
		t.Errorf("Subject content after rewrite: %+v", subject.Children())
	}
}

func TestMailExpansionFillsComposeFields(t *testing.T) {
	subject := surface.NewElement("input", map[string]string{"name": "subjectbox"})
	draft := surface.NewText("Dear customer, /case")
	body := surface.NewElement("div", map[string]string{"role": "textbox"}, draft)
	doc := surface.NewDocument(surface.NewElement("div", nil, subject, body))
	doc.SetCaret(draft, len(draft.Text))

	ix := index.New()
	ix.Rebuild(models.Library{Snippets: map[string]models.Body{
		"/case": {Mail: &models.MailTemplate{Subject: "Re: your order", Body: "all sorted."}},
	}})
	exp := expander.New(ix)
	exp.SetMailComposer(New(doc))

	action, _ := exp.HandleKey(doc, expander.KeyEvent{Key: "space"})
	if action != expander.ActionExpanded {
		t.Fatalf("HandleKey = %v", action)
	}
	if subject.Children()[0].Text != "Re: your order" {
		t.Errorf("Subject field: %+v", subject.Children())
	}
	if draft.Text != "Dear customer, all sorted." {
		t.Errorf("Draft: %q", draft.Text)
	}
}

func TestSetSubjectReportsMissingField(t *testing.T) {
	doc := surface.NewDocument(surface.NewElement("div", nil, surface.NewText("no compose here")))
	if New(doc).SetSubject("x") {
		t.Error("SetSubject must report a missing field")
	}
}
