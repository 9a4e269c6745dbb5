package surface

// FlatBuffer is the flat surface variant: a single value string with a
// selection range. Collapsed selections model a caret.
type FlatBuffer struct {
	notifier
	value    string
	selStart int
	selEnd   int
}

// NewFlatBuffer returns a flat surface with a collapsed selection at caret.
func NewFlatBuffer(value string, caret int) *FlatBuffer {
	b := &FlatBuffer{value: value}
	b.SetSelection(caret, caret)
	return b
}

// Value returns the current buffer contents.
func (b *FlatBuffer) Value() string {
	return b.value
}

// SetValue replaces the contents and clamps the selection to the new length.
func (b *FlatBuffer) SetValue(value string) {
	b.value = value
	b.SetSelection(b.selStart, b.selEnd)
}

// Selection returns the selection range in byte offsets.
func (b *FlatBuffer) Selection() (start, end int) {
	return b.selStart, b.selEnd
}

// Caret returns the selection start, which is the caret position for a
// collapsed selection.
func (b *FlatBuffer) Caret() int {
	return b.selStart
}

// SetSelection sets the selection range, clamped to the value's bounds.
func (b *FlatBuffer) SetSelection(start, end int) {
	b.selStart = clamp(start, 0, len(b.value))
	b.selEnd = clamp(end, b.selStart, len(b.value))
}

// LocateShortcut scans the text left of the selection for the nearest
// preceding trigger token.
func (b *FlatBuffer) LocateShortcut() Match {
	left := b.value[:b.selStart]
	start, end, ok := shortcutBefore(left)
	if !ok {
		return nil
	}
	return &flatMatch{
		buf:       b,
		original:  b.value,
		remainder: b.value[b.selEnd:],
		from:      start,
		to:        end,
	}
}

// flatMatch captures a located trigger span in a FlatBuffer. The snapshot
// fields keep Insert correct even if typing races the lookup.
type flatMatch struct {
	buf       *FlatBuffer
	original  string // full value at match time
	remainder string // text after the selection at match time
	from, to  int    // trigger span within original
}

func (m *flatMatch) Shortcut() string {
	return m.original[m.from:m.to]
}

// Remainder returns the text that followed the selection when the trigger
// was located.
func (m *flatMatch) Remainder() string {
	return m.remainder
}

// Insert excises the trigger span, splices text in its place, parks the
// caret just after the inserted text, and fires the synthetic change
// sequence.
func (m *flatMatch) Insert(text string) {
	m.buf.value = m.original[:m.from] + text + m.original[m.to:]
	caret := m.from + len(text)
	m.buf.selStart, m.buf.selEnd = caret, caret
	m.buf.emitChangeSequence()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
