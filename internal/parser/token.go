package parser

import (
	"strings"
	"unicode/utf8"
)

// TokenKind identifies a lexical category. The kinds are shared by all four
// tokenizers; each tokenizer only produces the subset its grammar needs.
type TokenKind int

const (
	EOFToken TokenKind = iota
	NewLine
	Comment
	Unknown
	Identifier
	Number
	Operator
	String
	Delimiter
	Colon
	Value
	ExerciseName
	TagStart
	TagEnd
)

var kindNames = [...]string{
	EOFToken:     "end of input",
	NewLine:      "newline",
	Comment:      "comment",
	Unknown:      "unknown",
	Identifier:   "identifier",
	Number:       "number",
	Operator:     "operator",
	String:       "string",
	Delimiter:    "delimiter",
	Colon:        "colon",
	Value:        "value",
	ExerciseName: "exercise name",
	TagStart:     "{",
	TagEnd:       "}",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is a lexeme with the position of its first rune.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   Position
}

// Len is the token length in runes, at least 1 so it can always be pointed at.
func (t Token) Len() int {
	if n := utf8.RuneCountInString(t.Value); n > 0 {
		return n
	}
	return 1
}

// Describe renders the token for use in diagnostics.
func (t Token) Describe() string {
	switch t.Kind {
	case EOFToken, NewLine:
		return t.Kind.String()
	}
	return t.Value
}

type tokenizer interface {
	Next() Token
}

// peek returns the next token of t without consuming it.
func peek(c *Cursor, t tokenizer) Token {
	cp := c.Checkpoint()
	tok := t.Next()
	c.Restore(cp)
	return tok
}

// The helpers below are the lexical building blocks shared by the tokenizers.
// None of them cross a line boundary.

func isLineEnd(c *Cursor) bool {
	r := c.PeekRune(0)
	return r == EOF || r == '\n' || r == '\r'
}

func isCommentStart(c *Cursor) bool {
	return c.PeekString(2) == "//"
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isIdentStart(r rune) bool {
	return isLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-'
}

func takeWhile(c *Cursor, pred func(rune) bool) string {
	var sb strings.Builder
	for !isLineEnd(c) && pred(c.PeekRune(0)) {
		sb.WriteString(c.Advance(1))
	}
	return sb.String()
}

func skipWhitespace(c *Cursor) {
	takeWhile(c, func(r rune) bool { return r == ' ' || r == '\t' })
}

func wrap(c *Cursor, kind TokenKind, lex func() string) Token {
	pos := c.Pos()
	return Token{Kind: kind, Value: lex(), Pos: pos}
}

// lexCommon produces the tokens every grammar shares: end of input, line
// breaks and comments. ok is false when none of them applies.
func lexCommon(c *Cursor) (Token, bool) {
	switch {
	case c.AtEnd():
		return Token{Kind: EOFToken, Pos: c.Pos()}, true
	case c.PeekRune(0) == '\r' || c.PeekRune(0) == '\n':
		return wrap(c, NewLine, func() string { return lexNewLine(c) }), true
	case isCommentStart(c):
		return wrap(c, Comment, func() string { return takeWhile(c, func(rune) bool { return true }) }), true
	}
	return Token{}, false
}

func lexNewLine(c *Cursor) string {
	if c.PeekString(2) == "\r\n" {
		return c.Advance(2)
	}
	return c.Advance(1)
}

func lexUnknown(c *Cursor) Token {
	return wrap(c, Unknown, func() string { return c.Advance(1) })
}

func lexIdentifier(c *Cursor) string {
	return takeWhile(c, isIdentPart)
}

// lexNumber reads an optional sign, digits, and an optional fraction. The
// text is not validated here; "-" and "." come back as-is for the parser to
// reject.
func lexNumber(c *Cursor) string {
	var sb strings.Builder
	if c.PeekRune(0) == '-' {
		sb.WriteString(c.Advance(1))
	}
	sb.WriteString(takeWhile(c, isDigit))
	if c.PeekRune(0) == '.' {
		sb.WriteString(c.Advance(1))
		sb.WriteString(takeWhile(c, isDigit))
	}
	return sb.String()
}

func isNumberStart(r rune) bool {
	return isDigit(r) || r == '.' || r == '-'
}

// lexString reads a double-quoted string, keeping the quotes and escapes in
// the token value. An unterminated string stops at the end of the line.
func lexString(c *Cursor) string {
	var sb strings.Builder
	sb.WriteString(c.Advance(1))
	for !isLineEnd(c) {
		r := c.PeekRune(0)
		if r == '\\' {
			sb.WriteString(c.Advance(1))
			if !isLineEnd(c) {
				sb.WriteString(c.Advance(1))
			}
			continue
		}
		sb.WriteString(c.Advance(1))
		if r == '"' {
			break
		}
	}
	return sb.String()
}

// skipLine consumes everything up to and including the next line break.
func skipLine(c *Cursor) {
	for !isLineEnd(c) {
		c.Advance(1)
	}
	if !c.AtEnd() {
		lexNewLine(c)
	}
}

// skipBlankLines consumes lines holding only whitespace or a comment. It
// stops at the start of the first line with content, leaving that line's
// leading whitespace in place.
func skipBlankLines(c *Cursor) {
	for !c.AtEnd() {
		cp := c.Checkpoint()
		skipWhitespace(c)
		if isCommentStart(c) {
			takeWhile(c, func(rune) bool { return true })
		}
		if !isLineEnd(c) {
			c.Restore(cp)
			return
		}
		if c.AtEnd() {
			return
		}
		lexNewLine(c)
	}
}

// firstContentRune returns the first non-whitespace rune of the current line
// without consuming anything.
func firstContentRune(c *Cursor) rune {
	cp := c.Checkpoint()
	defer c.Restore(cp)
	skipWhitespace(c)
	return c.PeekRune(0)
}
