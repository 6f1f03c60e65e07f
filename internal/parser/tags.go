package parser

// parseTags parses an inline tag block such as {belt, band: "red", tempo: 3}.
// The cursor must be at the opening brace. Pairs collected before an error
// are still returned, and the result is never nil.
func parseTags(c *Cursor) []Tag {
	lx := tagLexer{c}
	tags := []Tag{}

	open := lx.Next()
	if open.Kind != TagStart {
		c.Errorf(open.Pos, open.Len(), "expected { but got %s", open.Describe())
		return tags
	}
	if peek(c, lx).Kind == TagEnd {
		lx.Next()
		return tags
	}

	for {
		tag, ok := parseTag(c, lx)
		if ok {
			tags = append(tags, tag)
		} else if !recoverTag(c, lx) {
			return tags
		}

		sep := peek(c, lx)
		switch {
		case sep.Kind == TagEnd:
			lx.Next()
			return tags
		case sep.Kind == Operator && sep.Value == ",":
			lx.Next()
		case atLineEnd(sep):
			c.Errorf(sep.Pos, sep.Len(), "expected } but got %s", sep.Describe())
			return tags
		default:
			c.Errorf(sep.Pos, sep.Len(), "expected , or } but got %s", sep.Describe())
			if !recoverTag(c, lx) {
				return tags
			}
			if peek(c, lx).Kind == TagEnd {
				lx.Next()
				return tags
			}
			lx.Next()
		}
	}
}

// parseTag parses one key with an optional ": value".
func parseTag(c *Cursor, lx tagLexer) (Tag, bool) {
	key := peek(c, lx)
	switch key.Kind {
	case Identifier:
		lx.Next()
	case String:
		lx.Next()
		if !isTerminated(key.Value) {
			c.Errorf(key.Pos, key.Len(), "unterminated string %s", key.Value)
		}
		key.Value = unquote(key.Value)
	default:
		c.Errorf(key.Pos, key.Len(), "expected identifier or string but got %s", key.Describe())
		return Tag{}, false
	}
	tag := Tag{Key: key.Value}

	colon := peek(c, lx)
	if colon.Kind != Operator || colon.Value != ":" {
		return tag, true
	}
	lx.Next()

	val := peek(c, lx)
	switch val.Kind {
	case Number:
		lx.Next()
		f, ok := parseNumber(val.Value)
		if !ok {
			c.Errorf(val.Pos, val.Len(), "invalid number %s", val.Value)
			return Tag{}, false
		}
		tag.Value = f
	case String:
		lx.Next()
		if !isTerminated(val.Value) {
			c.Errorf(val.Pos, val.Len(), "unterminated string %s", val.Value)
		}
		tag.Value = unquote(val.Value)
	case Identifier:
		lx.Next()
		tag.Value = val.Value
	default:
		c.Errorf(val.Pos, val.Len(), "expected number, string or identifier but got %s", val.Describe())
		return Tag{}, false
	}
	return tag, true
}

// recoverTag skips tokens up to the next separator or closing brace, which
// is left unconsumed. It returns false when the line ends first, after
// reporting the missing brace.
func recoverTag(c *Cursor, lx tagLexer) bool {
	for {
		tok := peek(c, lx)
		switch {
		case tok.Kind == TagEnd, tok.Kind == Operator && tok.Value == ",":
			return true
		case atLineEnd(tok):
			c.Errorf(tok.Pos, tok.Len(), "expected } but got %s", tok.Describe())
			return false
		}
		lx.Next()
	}
}

func atLineEnd(tok Token) bool {
	return tok.Kind == EOFToken || tok.Kind == NewLine || tok.Kind == Comment
}
