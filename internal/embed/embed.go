// Package embed assembles the expansion engine over one rich document, the
// way an application embedding snipline in an editable view uses it: key
// events route through the expander, mail snippets fill the document's
// compose fields, and values the scanner extracts from the surrounding
// content seed the resolution dialog.
package embed

import (
	"github.com/snipline/snipline/internal/clipboard"
	"github.com/snipline/snipline/internal/detect"
	"github.com/snipline/snipline/internal/dialog"
	"github.com/snipline/snipline/internal/expander"
	"github.com/snipline/snipline/internal/mailfields"
	"github.com/snipline/snipline/internal/service"
	"github.com/snipline/snipline/internal/surface"
)

// Host drives snippet expansion inside one document.
type Host struct {
	doc     *surface.Document
	scanner *detect.Scanner
	exp     *expander.Expander
	dlg     *dialog.Dialog
}

// New wires a host over doc. The scanner watches the configured detection
// patterns and is re-armed by the document's synthetic change sequence, so
// every mutation schedules a debounced rescan.
func New(svc *service.Service, doc *surface.Document) *Host {
	scanner := detect.New(doc, svc.Config().CompiledPatterns())
	doc.OnChange(func(surface.ChangeEvent) { scanner.Notify() })

	exp := expander.New(svc.Index())
	exp.SetMailComposer(mailfields.New(doc))

	return &Host{
		doc:     doc,
		scanner: scanner,
		exp:     exp,
		dlg:     dialog.New(svc.LastValues(), clipboard.New()),
	}
}

// Document returns the hosted document.
func (h *Host) Document() *surface.Document {
	return h.doc
}

// Dialog returns the resolution dialog. While it is active the embedding
// application renders it and routes messages to it, then hands the emitted
// Result to Resolve.
func (h *Host) Dialog() *dialog.Dialog {
	return h.dlg
}

// Scanner returns the document scanner.
func (h *Host) Scanner() *detect.Scanner {
	return h.scanner
}

// HandleKey routes one key through the expander before the application
// applies it to the document. When expansion suspends on a dialog, a fresh
// scan's extracted values seed matching placeholders, below remembered
// ones.
func (h *Host) HandleKey(ev expander.KeyEvent) expander.Action {
	action, req := h.exp.HandleKey(h.doc, ev)
	if action == expander.ActionDialog {
		h.scanner.Scan()
		h.dlg.SetContextValues(h.scanner.Values())
		h.dlg.Show(req.Trigger, req.Template)
	}
	return action
}

// Resolve completes the suspended expansion with the dialog's outcome.
func (h *Host) Resolve(res dialog.Result) {
	h.exp.CompleteDialog(expander.DialogResult{
		Insert: res.Outcome == dialog.OutcomeInsert,
		Text:   res.Text,
	})
}

// Close cancels any pending scan.
func (h *Host) Close() {
	h.scanner.Close()
}
