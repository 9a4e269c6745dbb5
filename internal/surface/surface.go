// Package surface models the editable text surfaces snippets expand into,
// and locates trigger tokens adjacent to the caret in them.
//
// Two surface variants share one contract: FlatBuffer (a plain value string
// with selection offsets, the input/textarea case) and Document (a mutable
// tree of element and text nodes with a caret, the rich content-editable
// case). Both locate the nearest preceding trigger to the caret and can
// excise exactly that span on insert, firing the synthetic change
// notifications reactive hosts listen for.
package surface

import (
	"regexp"
	"strings"
)

// ChangeEvent is one step of the synthetic notification sequence fired on
// every programmatic mutation, mirroring what a host framework expects to
// see from real typing.
type ChangeEvent int

const (
	BeforeChange ChangeEvent = iota
	Change
	ChangeCommitted
)

func (e ChangeEvent) String() string {
	switch e {
	case BeforeChange:
		return "beforechange"
	case Change:
		return "change"
	case ChangeCommitted:
		return "changecommitted"
	}
	return "unknown"
}

// ChangeListener observes synthetic change notifications on a surface.
type ChangeListener func(ChangeEvent)

// notifier is the shared listener plumbing embedded by both surfaces.
type notifier struct {
	listeners []ChangeListener
}

// OnChange registers a listener for synthetic change notifications.
func (n *notifier) OnChange(fn ChangeListener) {
	n.listeners = append(n.listeners, fn)
}

// emitChangeSequence fires BeforeChange, Change, ChangeCommitted in order.
// Skipping this on insert causes silent data loss in hosts that only trust
// their own synthetic state over the raw value.
func (n *notifier) emitChangeSequence() {
	for _, ev := range []ChangeEvent{BeforeChange, Change, ChangeCommitted} {
		for _, fn := range n.listeners {
			fn(ev)
		}
	}
}

// Match is an ephemeral shortcut match context: the matched trigger and
// enough positional information to excise and replace exactly that span.
type Match interface {
	// Shortcut returns the matched trigger substring, "/" included.
	Shortcut() string
	// Insert excises the matched span, inserts text in its place,
	// repositions the caret after the inserted text, and fires the
	// synthetic change sequence.
	Insert(text string)
}

// Surface is any text surface the locator understands.
type Surface interface {
	// LocateShortcut finds the nearest preceding trigger token adjacent
	// to the caret, or returns nil when there is none.
	LocateShortcut() Match
	// OnChange registers a synthetic change listener.
	OnChange(fn ChangeListener)
}

// A trigger is "/" followed by word characters or hyphens, not preceded by
// ":" or another "/" (so URLs never match), ending at whitespace or end of
// text.
var reShortcutToken = regexp.MustCompile(`/[a-zA-Z0-9_-]+`)

// shortcutBefore finds the last trigger token in the text left of the
// caret, after discounting trailing whitespace. Returns the span's byte
// offsets within left.
func shortcutBefore(left string) (start, end int, ok bool) {
	trimmed := strings.TrimRight(left, " \t\n\r")
	var found bool
	for _, span := range reShortcutToken.FindAllStringIndex(trimmed, -1) {
		s, e := span[0], span[1]
		if s > 0 {
			prev := trimmed[s-1]
			if prev == ':' || prev == '/' {
				continue
			}
		}
		if e < len(trimmed) && !isSpace(trimmed[e]) {
			continue
		}
		start, end, found = s, e, true
	}
	return start, end, found
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
