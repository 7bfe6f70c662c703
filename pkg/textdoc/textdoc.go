package textdoc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text alignment
const (
	AlignLeft = iota
	AlignCenter
	AlignRight
)

const newline = '\n'

// Document builds a fixed-width plain text document.
type Document struct {
	buf   bytes.Buffer
	width int // line width in characters
}

// NewDocument creates a new document with the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 72
	}
	return &Document{width: charWidth}
}

// Width returns the line width in characters.
func (d *Document) Width() int {
	return d.width
}

// LineFeed writes an empty line.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(newline)
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(newline)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Aligned writes s padded to the document width.
func (d *Document) Aligned(align int, s string) *Document {
	return d.Text(pad(s, d.width, align))
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char rune) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
// Example: "Subtotal           100.00"
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - runeLen(key) - runeLen(value)
	if spaces < 1 {
		spaces = 1
	}
	return d.Text(key + strings.Repeat(" ", spaces) + value)
}

// Column describes one cell of a table row.
type Column struct {
	Width int
	Align int
}

// Row writes cells laid out in columns separated by a single space. Cells
// longer than their column are truncated.
func (d *Document) Row(columns []Column, cells ...string) *Document {
	parts := make([]string, len(columns))
	for i, c := range columns {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = pad(truncate(cell, c.Width), c.Width, c.Align)
	}
	return d.Text(strings.TrimRight(strings.Join(parts, " "), " "))
}

// Bytes returns the accumulated document.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// String returns the accumulated document.
func (d *Document) String() string {
	return d.buf.String()
}

// Reset clears the buffer.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	return d
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncate(s string, width int) string {
	if runeLen(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}

func pad(s string, width, align int) string {
	gap := width - runeLen(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
