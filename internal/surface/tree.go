package surface

// NodeKind distinguishes element and text nodes in a rich surface tree.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
)

// Node is one node of a rich surface tree. Text lives only in TextNode
// leaves; elements carry a tag, attributes and children.
type Node struct {
	Kind     NodeKind
	Tag      string
	Attrs    map[string]string
	Text     string
	parent   *Node
	children []*Node
}

// NewElement builds an element node with the given children attached.
func NewElement(tag string, attrs map[string]string, children ...*Node) *Node {
	n := &Node{Kind: ElementNode, Tag: tag, Attrs: attrs}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// NewText builds a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: TextNode, Text: text}
}

// Append attaches child as the last child of n.
func (n *Node) Append(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
}

// Parent returns the node's parent, nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in order.
func (n *Node) Children() []*Node {
	return n.children
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// prevInDocOrder steps one node backward in document order: the deepest
// last descendant of the previous sibling, else the parent.
func prevInDocOrder(n *Node) *Node {
	p := n.parent
	if p == nil {
		return nil
	}
	for i, c := range p.children {
		if c == n {
			if i == 0 {
				return p
			}
			prev := p.children[i-1]
			for len(prev.children) > 0 {
				prev = prev.children[len(prev.children)-1]
			}
			return prev
		}
	}
	return p
}

// PrevTextNode returns the text node preceding n in document order, nil when
// n is the first.
func PrevTextNode(n *Node) *Node {
	for cur := prevInDocOrder(n); cur != nil; cur = prevInDocOrder(cur) {
		if cur.Kind == TextNode {
			return cur
		}
	}
	return nil
}

// Caret is a position inside a text node of a Document, as a byte offset
// into that node's text.
type Caret struct {
	Node   *Node
	Offset int
}

// Document is the rich surface variant: a node tree plus a caret.
type Document struct {
	notifier
	root  *Node
	caret Caret
}

// NewDocument wraps a tree and parks the caret at the end of its last text
// node.
func NewDocument(root *Node) *Document {
	d := &Document{root: root}
	d.PlaceCaretAtEnd()
	return d
}

// Root returns the tree root.
func (d *Document) Root() *Node {
	return d.root
}

// Caret returns the current caret position.
func (d *Document) Caret() Caret {
	return d.caret
}

// SetCaret places the caret inside a text node, clamping the offset.
func (d *Document) SetCaret(n *Node, offset int) {
	if n == nil || n.Kind != TextNode {
		return
	}
	d.caret = Caret{Node: n, Offset: clamp(offset, 0, len(n.Text))}
}

// PlaceCaretAtEnd moves the caret to the end of the last text node in
// document order. Documents with no text keep a zero caret.
func (d *Document) PlaceCaretAtEnd() {
	var last *Node
	d.WalkText(func(t *Node) bool {
		last = t
		return true
	})
	if last != nil {
		d.caret = Caret{Node: last, Offset: len(last.Text)}
	}
}

// NotifyChanged fires the synthetic change sequence after an external
// mutation of the tree, such as a mail field being written directly.
func (d *Document) NotifyChanged() {
	d.emitChangeSequence()
}

// WalkText visits every text node in document order until fn returns false.
func (d *Document) WalkText(fn func(*Node) bool) {
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		if n.Kind == TextNode {
			return fn(n)
		}
		for _, c := range n.children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(d.root)
}

// Find returns the first element in document order satisfying pred, nil when
// none does.
func (d *Document) Find(pred func(*Node) bool) *Node {
	var found *Node
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		if n.Kind == ElementNode && pred(n) {
			found = n
			return false
		}
		for _, c := range n.children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(d.root)
	return found
}

// TextContent concatenates every text node in document order.
func (d *Document) TextContent() string {
	var out []byte
	d.WalkText(func(t *Node) bool {
		out = append(out, t.Text...)
		return true
	})
	return string(out)
}

// TextBeforeCaret concatenates document-order text up to the caret.
func (d *Document) TextBeforeCaret() string {
	var out []byte
	d.WalkText(func(t *Node) bool {
		if t == d.caret.Node {
			out = append(out, t.Text[:d.caret.Offset]...)
			return false
		}
		out = append(out, t.Text...)
		return true
	})
	return string(out)
}

// LocateShortcut scans the text before the caret for the nearest preceding
// trigger, then walks text nodes backward from the caret until the trigger
// span is consumed, so the resulting range bounds it exactly even when the
// trigger straddles node boundaries.
func (d *Document) LocateShortcut() Match {
	if d.caret.Node == nil {
		return nil
	}
	left := d.TextBeforeCaret()
	start, end, ok := shortcutBefore(left)
	if !ok {
		return nil
	}

	endC, ok := d.walkBack(d.caret, len(left)-end)
	if !ok {
		return nil
	}
	startC, ok := d.walkBack(endC, end-start)
	if !ok {
		return nil
	}
	return &treeMatch{
		doc:      d,
		shortcut: left[start:end],
		start:    startC,
		end:      endC,
	}
}

// walkBack moves a caret n bytes backward through text nodes.
func (d *Document) walkBack(from Caret, n int) (Caret, bool) {
	node, off := from.Node, from.Offset
	for {
		if node.Kind == TextNode && off >= n {
			return Caret{Node: node, Offset: off - n}, true
		}
		if node.Kind == TextNode {
			n -= off
		}
		prev := PrevTextNode(node)
		if prev == nil {
			return Caret{}, false
		}
		node, off = prev, len(prev.Text)
	}
}

// treeMatch captures a located trigger range in a Document.
type treeMatch struct {
	doc      *Document
	shortcut string
	start    Caret // first byte of the trigger
	end      Caret // one past the last byte of the trigger
}

func (m *treeMatch) Shortcut() string {
	return m.shortcut
}

// Insert excises the trigger range, which may span several text nodes,
// splices text at its start, repositions the caret after the inserted text,
// and fires the synthetic change sequence.
func (m *treeMatch) Insert(text string) {
	s, e := m.start, m.end
	if s.Node == e.Node {
		t := s.Node.Text
		s.Node.Text = t[:s.Offset] + text + t[e.Offset:]
	} else {
		e.Node.Text = e.Node.Text[e.Offset:]
		for mid := PrevTextNode(e.Node); mid != nil && mid != s.Node; mid = PrevTextNode(mid) {
			mid.Text = ""
		}
		s.Node.Text = s.Node.Text[:s.Offset] + text
	}
	m.doc.caret = Caret{Node: s.Node, Offset: s.Offset + len(text)}
	m.doc.emitChangeSequence()
}
