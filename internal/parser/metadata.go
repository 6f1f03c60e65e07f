package parser

// parseMetadata parses a front-matter block:
//
//	---
//	name: Upper body
//	"quoted key": "quoted value"
//	---
//
// A block that does not start with a delimiter is reported and yields no
// metadata; the cursor is left where it was.
func parseMetadata(c *Cursor) Metadata {
	lx := metadataLexer{c}
	meta := Metadata{}

	cp := c.Checkpoint()
	open := lx.Next()
	if open.Kind != Delimiter {
		c.Errorf(open.Pos, open.Len(), "expected --- but got %s", open.Describe())
		c.Restore(cp)
		return meta
	}
	finishLine(c, lx)

	for {
		tok := peek(c, lx)
		switch tok.Kind {
		case EOFToken:
			c.Errorf(tok.Pos, 1, "expected --- but got end of input")
			return meta
		case Delimiter:
			lx.Next()
			finishLine(c, lx)
			return meta
		case NewLine, Comment:
			skipLine(c)
			continue
		}

		field, ok := parseMetadataLine(c, lx)
		if !ok {
			continue
		}
		if _, dup := meta.Get(field.Key); dup {
			c.Errorf(tok.Pos, tok.Len(), "duplicate metadata key %q", field.Key)
			continue
		}
		meta = append(meta, field)
	}
}

// parseMetadataLine parses one "key: value" line and always leaves the
// cursor at the start of the next line.
func parseMetadataLine(c *Cursor, lx metadataLexer) (MetadataField, bool) {
	key := lx.Next()
	if key.Kind != Identifier && key.Kind != String {
		c.Errorf(key.Pos, key.Len(), "expected identifier or string but got %s", key.Describe())
		skipLine(c)
		return MetadataField{}, false
	}
	if key.Kind == String && !isTerminated(key.Value) {
		c.Errorf(key.Pos, key.Len(), "unterminated string %s", key.Value)
	}

	colon := lx.Next()
	if colon.Kind != Colon {
		c.Errorf(colon.Pos, colon.Len(), "expected : but got %s", colon.Describe())
		if colon.Kind != NewLine {
			skipLine(c)
		}
		return MetadataField{}, false
	}

	cp := c.Checkpoint()
	val := lx.NextValue()
	if val.Kind != String && val.Kind != Value {
		c.Errorf(val.Pos, val.Len(), "expected string or value but got %s", val.Describe())
		c.Restore(cp)
		skipLine(c)
		return MetadataField{}, false
	}
	if val.Kind == String && !isTerminated(val.Value) {
		c.Errorf(val.Pos, val.Len(), "unterminated string %s", val.Value)
	}
	finishLine(c, lx)

	field := MetadataField{Key: key.Value}
	if key.Kind == String {
		field.Key = unquote(key.Value)
	}
	if val.Kind == String {
		field.Value = unquote(val.Value)
	} else {
		field.Value = implicitValue(val.Value)
	}
	return field, true
}

// finishLine consumes an optional comment and the line break. Anything else
// left on the line is reported once and skipped.
func finishLine(c *Cursor, lx tokenizer) {
	tok := lx.Next()
	if tok.Kind == Comment {
		tok = lx.Next()
	}
	switch tok.Kind {
	case NewLine, EOFToken:
		return
	}
	c.Errorf(tok.Pos, tok.Len(), "expected end of line but got %s", tok.Describe())
	skipLine(c)
}

// implicitValue types an unquoted value: true and false become booleans,
// numeric literals become numbers, anything else stays a string.
func implicitValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, ok := parseNumber(s); ok {
		return f
	}
	return s
}
