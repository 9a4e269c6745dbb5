// Package expander orchestrates snippet expansion: it watches terminating
// keys, resolves the typed trigger through the index, and either rewrites
// the surface in place or suspends the expansion while a resolution dialog
// collects placeholder values.
package expander

import (
	"strings"

	"github.com/snipline/snipline/internal/index"
	"github.com/snipline/snipline/internal/models"
	"github.com/snipline/snipline/internal/surface"
	"github.com/snipline/snipline/internal/template"
)

// MailSep joins a mail snippet's subject and body into one composite
// template so both halves share a single dialog pass.
const MailSep = "\n<<<__MAILSEP__>>>\n"

// Action tells the host what became of a key event.
type Action int

const (
	// ActionNone means the key was not handled; the host delivers it to
	// the surface as typed.
	ActionNone Action = iota
	// ActionSuppressed means the key was claimed for a trigger-shaped
	// token that resolved to nothing; the host swallows the key and the
	// typed text stands.
	ActionSuppressed
	// ActionExpanded means the trigger was rewritten in place and the key
	// must be swallowed.
	ActionExpanded
	// ActionDialog means expansion is suspended on a resolution dialog;
	// the key must be swallowed and the returned request shown.
	ActionDialog
)

// DialogRequest describes the dialog the host must show to resume a
// suspended expansion.
type DialogRequest struct {
	Trigger  string
	Template string // macro-expanded, possibly a mail composite
	IsMail   bool
}

// DialogResult resumes a suspended expansion. Text is the final resolved
// text; Insert is false when the user copied or cancelled instead.
type DialogResult struct {
	Insert bool
	Text   string
}

// MailComposer places a subject line outside the text surface, in hosts
// that have a distinct subject field. SetSubject reports whether it did.
type MailComposer interface {
	SetSubject(subject string) bool
}

// Expander is the orchestrator. It is driven from a single goroutine; the
// host feeds it key events and dialog results in order.
type Expander struct {
	ix       *index.Index
	composer MailComposer

	// onExpanded fires after a successful in-place rewrite, for toasts.
	onExpanded func(trigger string)

	pending *pendingExpansion
}

// pendingExpansion is the continuation captured when a dialog opens.
type pendingExpansion struct {
	match   surface.Match
	trigger string
	isMail  bool
}

// New returns an expander over ix.
func New(ix *index.Index) *Expander {
	return &Expander{ix: ix}
}

// SetMailComposer installs the host's subject field access, nil to clear.
func (e *Expander) SetMailComposer(c MailComposer) {
	e.composer = c
}

// OnExpanded registers a notification hook fired after each completed
// expansion with the trigger that caused it.
func (e *Expander) OnExpanded(fn func(trigger string)) {
	e.onExpanded = fn
}

// Pending reports whether an expansion is suspended on a dialog.
func (e *Expander) Pending() bool {
	return e.pending != nil
}

// terminating reports whether key commits the token being typed.
func terminating(key string) bool {
	switch key {
	case " ", "space", "enter", "tab":
		return true
	}
	return false
}

// KeyEvent is one key reaching the surface. Composing events come from an
// active input method and never trigger expansion.
type KeyEvent struct {
	Key       string
	Composing bool
}

// HandleKey inspects one key aimed at s before the host applies it. On a
// terminating key with a trigger-shaped token adjacent to the caret the key
// is claimed before the index is consulted, so an unknown trigger still
// swallows the terminator; a known one performs or suspends the expansion.
// While a dialog is pending every key passes through untouched.
func (e *Expander) HandleKey(s surface.Surface, ev KeyEvent) (Action, *DialogRequest) {
	if e.pending != nil || ev.Composing || !terminating(ev.Key) {
		return ActionNone, nil
	}

	m := s.LocateShortcut()
	if m == nil {
		return ActionNone, nil
	}
	snip, ok := e.ix.Lookup(m.Shortcut())
	if !ok {
		return ActionSuppressed, nil
	}

	tpl, isMail := composite(snip.Body)
	tpl = template.ExpandMacros(tpl)

	if template.HasPlaceholders(tpl) {
		e.pending = &pendingExpansion{match: m, trigger: snip.Trigger, isMail: isMail}
		return ActionDialog, &DialogRequest{
			Trigger:  snip.Trigger,
			Template: tpl,
			IsMail:   isMail,
		}
	}

	e.insert(m, snip.Trigger, template.Render(tpl, nil, false).Plain, isMail)
	return ActionExpanded, nil
}

// CompleteDialog resumes the suspended expansion with the dialog's outcome.
// Without a pending expansion it is a no-op.
func (e *Expander) CompleteDialog(res DialogResult) {
	p := e.pending
	e.pending = nil
	if p == nil || !res.Insert {
		return
	}
	e.insert(p.match, p.trigger, res.Text, p.isMail)
}

// CancelDialog drops the suspended expansion, leaving the trigger in place.
func (e *Expander) CancelDialog() {
	e.pending = nil
}

func (e *Expander) insert(m surface.Match, trigger, text string, isMail bool) {
	if isMail {
		subject, body := SplitMail(text)
		if e.composer != nil && e.composer.SetSubject(subject) {
			text = body
		} else {
			text = FallbackMail(subject, body)
		}
	}
	m.Insert(text)
	if e.onExpanded != nil {
		e.onExpanded(trigger)
	}
}

// composite flattens a body into a single template string, joining mail
// subject and body with MailSep.
func composite(b models.Body) (tpl string, isMail bool) {
	if b.IsMail() {
		return b.Mail.Subject + MailSep + b.Mail.Body, true
	}
	return b.Text, false
}

// SplitMail separates a resolved mail composite back into subject and body.
// A composite without the separator is all body.
func SplitMail(text string) (subject, body string) {
	before, after, found := strings.Cut(text, MailSep)
	if !found {
		return "", text
	}
	return strings.TrimSpace(before), after
}

// FallbackMail renders a mail snippet for surfaces with no subject field.
func FallbackMail(subject, body string) string {
	if subject == "" {
		return body
	}
	return "SUBJECT: " + subject + "\n\n" + body
}
