package engine

import (
	"bytes"
	"sort"
)

// Text indexes the line starts of a buffered document so byte offsets can be
// reported as line and column.
type Text struct {
	data  []byte
	lines []int64
	start int64
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMLen returns the length of a leading UTF-8 byte order mark in b, or 0.
func BOMLen(b []byte) int {
	if bytes.HasPrefix(b, utf8BOM) {
		return len(utf8BOM)
	}
	return 0
}

// NewText indexes b. The slice is retained, not copied. A leading byte order
// mark is not part of the document but still counts in positions.
func NewText(b []byte) *Text {
	lines := []int64{0}
	for i, c := range b {
		if c == '\n' {
			lines = append(lines, int64(i+1))
		}
	}
	return &Text{data: b, lines: lines, start: int64(BOMLen(b))}
}

// Body returns the document without its byte order mark; decoders read it.
func (t *Text) Body() []byte { return t.data[t.start:] }

// BodyPosition converts an offset into Body into a Position of the full text.
func (t *Text) BodyPosition(off int64) Position { return t.Position(t.start + off) }

// Len returns the document length in bytes.
func (t *Text) Len() int64 { return int64(len(t.data)) }

// Position converts a byte offset into a Position. Offsets past the end are
// clamped to the end of input; negative offsets yield the zero Position.
func (t *Text) Position(off int64) Position {
	if off < 0 {
		return Position{}
	}
	if n := int64(len(t.data)); off > n {
		off = n
	}
	i := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > off }) - 1
	return Position{Line: i + 1, Column: int(off-t.lines[i]) + 1, Offset: off}
}

// Cursor walks token boundaries through a Text in step with a decoder that
// has already validated the input. Drivers use it to attach exact spans to
// tokens regardless of how their decoder reports offsets.
type Cursor struct {
	text *Text
	off  int64
}

// NewCursor returns a cursor at the start of t.
func NewCursor(t *Text) *Cursor { return &Cursor{text: t, off: t.start} }

// Next advances over the next token of the given kind and returns its span.
func (c *Cursor) Next(kind Kind) (start, end Position) {
	c.skipSeparators()
	s := c.off
	switch kind {
	case KindBeginObject, KindEndObject, KindBeginArray, KindEndArray:
		c.off = s + 1
	case KindKey, KindString:
		c.off = c.stringEnd(s)
	default:
		c.off = c.literalEnd(s)
	}
	if n := c.text.Len(); c.off > n {
		c.off = n
	}
	return c.text.Position(s), c.text.Position(c.off)
}

// Peek returns the position of the next unconsumed token byte.
func (c *Cursor) Peek() Position {
	c.skipSeparators()
	return c.text.Position(c.off)
}

// End returns the position just past the last consumed token.
func (c *Cursor) End() Position { return c.text.Position(c.off) }

func (c *Cursor) skipSeparators() {
	d := c.text.data
	for c.off < int64(len(d)) {
		switch d[c.off] {
		case ' ', '\t', '\r', '\n', ',', ':':
			c.off++
		default:
			return
		}
	}
}

// stringEnd returns the offset just past the closing quote of the string
// starting at s.
func (c *Cursor) stringEnd(s int64) int64 {
	d := c.text.data
	for i := s + 1; i < int64(len(d)); i++ {
		switch d[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return int64(len(d))
}

func (c *Cursor) literalEnd(s int64) int64 {
	d := c.text.data
	i := s
	for i < int64(len(d)) && !isBoundary(d[i]) {
		i++
	}
	return i
}

func isBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', ':', '{', '}', '[', ']', '"':
		return true
	}
	return false
}
