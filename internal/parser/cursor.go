package parser

import (
	"fmt"
	"unicode/utf8"
)

// EOF is returned by PeekRune past the end of input.
const EOF rune = -1

// Position is a location in the source text. Line and Column are 1-based;
// Column counts runes, Offset counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Diagnostic is a single syntax problem found while parsing.
type Diagnostic struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Length  int    `json:"length"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}

// Checkpoint is a saved cursor position that can be restored later.
type Checkpoint struct {
	pos Position
}

// Cursor walks the input text rune by rune, tracking line and column, and
// collects diagnostics. It knows nothing about the grammar.
type Cursor struct {
	input       string
	pos         Position
	diagnostics []Diagnostic
}

// NewCursor returns a cursor at the start of input.
func NewCursor(input string) *Cursor {
	return &Cursor{input: input, pos: Position{Line: 1, Column: 1}}
}

// AtEnd reports whether the whole input has been consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos.Offset >= len(c.input)
}

// Pos returns the current position.
func (c *Cursor) Pos() Position {
	return c.pos
}

// PeekRune returns the rune n positions ahead without consuming anything.
func (c *Cursor) PeekRune(n int) rune {
	off := c.pos.Offset
	for i := 0; ; i++ {
		if off >= len(c.input) {
			return EOF
		}
		r, size := utf8.DecodeRuneInString(c.input[off:])
		if i == n {
			return r
		}
		off += size
	}
}

// PeekString returns up to n runes starting at the current position.
func (c *Cursor) PeekString(n int) string {
	off := c.pos.Offset
	for i := 0; i < n && off < len(c.input); i++ {
		_, size := utf8.DecodeRuneInString(c.input[off:])
		off += size
	}
	return c.input[c.pos.Offset:off]
}

// Advance consumes n runes and returns them. A '\n', or a '\r' not followed
// by '\n', ends the current line.
func (c *Cursor) Advance(n int) string {
	start := c.pos.Offset
	for i := 0; i < n && !c.AtEnd(); i++ {
		r, size := utf8.DecodeRuneInString(c.input[c.pos.Offset:])
		c.pos.Offset += size
		switch {
		case r == '\n', r == '\r' && c.PeekRune(0) != '\n':
			c.pos.Line++
			c.pos.Column = 1
		default:
			c.pos.Column++
		}
	}
	return c.input[start:c.pos.Offset]
}

// Checkpoint snapshots the current position.
func (c *Cursor) Checkpoint() Checkpoint {
	return Checkpoint{pos: c.pos}
}

// Restore rewinds the cursor to a checkpoint. Diagnostics recorded since the
// checkpoint are kept.
func (c *Cursor) Restore(cp Checkpoint) {
	c.pos = cp.pos
}

// RecordError appends a diagnostic at the given position.
func (c *Cursor) RecordError(message string, at Position, length int) {
	if length < 1 {
		length = 1
	}
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Message: message,
		Line:    at.Line,
		Column:  at.Column,
		Length:  length,
	})
}

// Errorf is RecordError with a format string.
func (c *Cursor) Errorf(at Position, length int, format string, args ...any) {
	c.RecordError(fmt.Sprintf(format, args...), at, length)
}

// Diagnostics returns everything recorded so far, in arrival order.
func (c *Cursor) Diagnostics() []Diagnostic {
	return c.diagnostics
}

// span returns the rune length between from and the current position when
// both are on the same line, and 1 otherwise.
func (c *Cursor) span(from Position) int {
	if from.Line != c.pos.Line || c.pos.Column <= from.Column {
		return 1
	}
	return c.pos.Column - from.Column
}
