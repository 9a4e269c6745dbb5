// Package mailfields locates mail compose fields in a rich surface and
// writes resolved snippet halves into them, bridging the expander's mail
// handling to whatever compose layout the host document carries.
package mailfields

import (
	"strings"

	"github.com/snipline/snipline/internal/expander"
	"github.com/snipline/snipline/internal/surface"
)

var _ expander.MailComposer = (*Composer)(nil)

// Composer finds and fills compose fields in one document. It satisfies the
// expander's MailComposer contract: SetSubject reports false when no
// subject field exists, which routes the expansion to the inline fallback.
type Composer struct {
	doc *surface.Document
}

// New returns a composer over doc.
func New(doc *surface.Document) *Composer {
	return &Composer{doc: doc}
}

// SubjectNode returns the document's subject field, nil when none exists.
// A subject field is an element whose name, aria-label or placeholder
// mentions "subject".
func (c *Composer) SubjectNode() *surface.Node {
	return c.doc.Find(func(n *surface.Node) bool {
		return mentionsSubject(n.Attr("name")) ||
			mentionsSubject(n.Attr("aria-label")) ||
			mentionsSubject(n.Attr("placeholder"))
	})
}

// BodyNode returns the compose body, nil when none exists: the first
// element declaring itself an editable text region.
func (c *Composer) BodyNode() *surface.Node {
	return c.doc.Find(func(n *surface.Node) bool {
		return strings.EqualFold(n.Attr("role"), "textbox") ||
			strings.EqualFold(n.Attr("contenteditable"), "true")
	})
}

// SetSubject writes subject into the subject field and fires the synthetic
// change sequence. It reports whether a field was found.
func (c *Composer) SetSubject(subject string) bool {
	node := c.SubjectNode()
	if node == nil {
		return false
	}
	setFieldText(node, subject)
	c.doc.NotifyChanged()
	return true
}

// setFieldText replaces an element's text content, reusing its first text
// child so repeated writes do not grow the tree.
func setFieldText(n *surface.Node, text string) {
	var first *surface.Node
	for _, child := range n.Children() {
		if child.Kind != surface.TextNode {
			continue
		}
		if first == nil {
			first = child
		} else {
			child.Text = ""
		}
	}
	if first != nil {
		first.Text = text
		return
	}
	n.Append(surface.NewText(text))
}

func mentionsSubject(attr string) bool {
	return strings.Contains(strings.ToLower(attr), "subject")
}
