package parser

// exerciseNode is a parsed exercise block before the document assigns its
// sequence numbers.
type exerciseNode struct {
	name      string
	superset  bool
	headerPos Position
	sets      []Set
	lineStart int
	lineEnd   int
}

// parseExercise parses a header line followed by its set lines. It stops at
// the next header or at the end of input.
func parseExercise(c *Cursor) exerciseNode {
	lx := headerLexer{c}
	node := exerciseNode{lineStart: c.Pos().Line}

	tok := lx.Next()
	node.headerPos = tok.Pos
	if tok.Kind == Operator {
		node.superset = tok.Value == "&"
		tok = lx.Next()
	} else {
		c.Errorf(tok.Pos, tok.Len(), "expected # or & but got %s", tok.Describe())
	}

	if tok.Kind == ExerciseName {
		node.name = tok.Value
		if node.name == "" {
			c.Errorf(tok.Pos, tok.Len(), "expected exercise name")
		}
		tok = lx.Next()
	} else {
		c.Errorf(tok.Pos, tok.Len(), "expected exercise name but got %s", tok.Describe())
	}
	if tok.Kind == Comment {
		tok = lx.Next()
	}
	if tok.Kind != NewLine && tok.Kind != EOFToken {
		c.Errorf(tok.Pos, tok.Len(), "expected end of line but got %s", tok.Describe())
		skipLine(c)
	}
	node.lineEnd = node.lineStart

	for {
		skipBlankLines(c)
		if c.AtEnd() || startsHeader(c) {
			return node
		}
		line := c.Pos().Line
		node.sets = append(node.sets, parseSet(c))
		node.lineEnd = line
	}
}

// startsHeader reports whether the current line begins a new exercise.
func startsHeader(c *Cursor) bool {
	r := firstContentRune(c)
	return r == '#' || r == '&'
}
