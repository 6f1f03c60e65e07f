package parser

import "strings"

// metadataLexer tokenizes the front-matter block between --- delimiters.
type metadataLexer struct{ c *Cursor }

func (l metadataLexer) Next() Token {
	c := l.c
	skipWhitespace(c)
	if tok, ok := lexCommon(c); ok {
		return tok
	}
	r := c.PeekRune(0)
	switch {
	case c.PeekString(3) == "---":
		return wrap(c, Delimiter, func() string { return takeWhile(c, func(r rune) bool { return r == '-' }) })
	case isIdentStart(r):
		return wrap(c, Identifier, func() string { return lexIdentifier(c) })
	case r == ':':
		return wrap(c, Colon, func() string { return c.Advance(1) })
	case r == '"':
		return wrap(c, String, func() string { return lexString(c) })
	}
	return lexUnknown(c)
}

// NextValue is used directly after a colon. Unquoted values run to the end
// of the line or the start of a comment, so they may contain spaces.
func (l metadataLexer) NextValue() Token {
	c := l.c
	skipWhitespace(c)
	if tok, ok := lexCommon(c); ok {
		return tok
	}
	if c.PeekRune(0) == '"' {
		return wrap(c, String, func() string { return lexString(c) })
	}
	return wrap(c, Value, func() string {
		return strings.TrimSpace(takeWhile(c, func(rune) bool { return !isCommentStart(c) }))
	})
}

// headerLexer tokenizes exercise header lines: "# Name" or "& Name".
type headerLexer struct{ c *Cursor }

func (l headerLexer) Next() Token {
	c := l.c
	skipWhitespace(c)
	if tok, ok := lexCommon(c); ok {
		return tok
	}
	if r := c.PeekRune(0); r == '#' || r == '&' {
		return wrap(c, Operator, func() string { return c.Advance(1) })
	}
	return wrap(c, ExerciseName, func() string {
		return strings.TrimSpace(takeWhile(c, func(rune) bool { return !isCommentStart(c) }))
	})
}

// setLexer tokenizes set lines. 'x' is the reps operator, so identifiers
// never contain it: "bwx5" lexes as "bw", "x", "5".
type setLexer struct{ c *Cursor }

func isSetLetter(r rune) bool {
	return isLetter(r) && r != 'x' && r != 'X'
}

func (l setLexer) Next() Token {
	c := l.c
	skipWhitespace(c)
	if tok, ok := lexCommon(c); ok {
		return tok
	}
	r := c.PeekRune(0)
	switch {
	case isSetLetter(r):
		return wrap(c, Identifier, func() string { return takeWhile(c, isSetLetter) })
	case isNumberStart(r):
		return wrap(c, Number, func() string { return lexNumber(c) })
	case strings.ContainsRune("xX@:,", r):
		return wrap(c, Operator, func() string { return c.Advance(1) })
	case r == '{':
		return wrap(c, TagStart, func() string { return c.Advance(1) })
	}
	return lexUnknown(c)
}

// tagLexer tokenizes the inside of a {key: value, ...} block.
type tagLexer struct{ c *Cursor }

func (l tagLexer) Next() Token {
	c := l.c
	skipWhitespace(c)
	if tok, ok := lexCommon(c); ok {
		return tok
	}
	r := c.PeekRune(0)
	switch {
	case isIdentStart(r):
		return wrap(c, Identifier, func() string { return lexIdentifier(c) })
	case isNumberStart(r):
		return wrap(c, Number, func() string { return lexNumber(c) })
	case r == ',' || r == ':':
		return wrap(c, Operator, func() string { return c.Advance(1) })
	case r == '"':
		return wrap(c, String, func() string { return lexString(c) })
	case r == '{':
		return wrap(c, TagStart, func() string { return c.Advance(1) })
	case r == '}':
		return wrap(c, TagEnd, func() string { return c.Advance(1) })
	}
	return lexUnknown(c)
}
