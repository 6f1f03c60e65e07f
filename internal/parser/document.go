package parser

import (
	"fmt"
	"strings"
)

// Parse parses a whole workout document. It never fails: the returned
// document is always complete in shape, and every problem found along the
// way is reported in the diagnostics, in source order of discovery.
func Parse(text string) (*Document, []Diagnostic) {
	c := NewCursor(text)
	doc := &Document{Metadata: Metadata{}, Exercises: []Exercise{}}

	skipBlankLines(c)
	if firstContentRune(c) == '-' {
		doc.Metadata = parseMetadata(c)
	}

	sequence, subsequence := -1, 0
	for {
		skipBlankLines(c)
		if c.AtEnd() {
			break
		}
		before := c.Pos().Offset
		node := parseExercise(c)
		if c.Pos().Offset == before {
			c.Errorf(c.Pos(), 1, "parser made no progress")
			break
		}

		if node.superset && len(doc.Exercises) == 0 {
			c.Errorf(node.headerPos, 1, "first exercise cannot be a superset")
			node.superset = false
		}
		if node.superset {
			subsequence++
		} else {
			sequence++
			subsequence = 0
		}

		sets := node.sets
		if sets == nil {
			sets = []Set{}
		}
		doc.Exercises = append(doc.Exercises, Exercise{
			Name:        node.name,
			Sequence:    sequence,
			Subsequence: subsequence,
			Superset:    node.superset,
			Sets:        sets,
			LineStart:   node.lineStart,
			LineEnd:     node.lineEnd,
		})
	}
	return doc, c.Diagnostics()
}

// ParseError is returned by ParseStrict when the document has diagnostics.
type ParseError struct {
	Diagnostics []Diagnostic
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 1 {
		return "parse error: " + e.Diagnostics[0].String()
	}
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return fmt.Sprintf("%d parse errors: %s", len(e.Diagnostics), strings.Join(msgs, "; "))
}

// ParseStrict is Parse for callers that want a document only when the text
// is clean. Any diagnostic turns into a *ParseError.
func ParseStrict(text string) (*Document, error) {
	doc, diags := Parse(text)
	if len(diags) > 0 {
		return nil, &ParseError{Diagnostics: diags}
	}
	return doc, nil
}

// ParseSetLine parses a single set expression such as "225x5@8". Anything
// after the first line is reported.
func ParseSetLine(text string) (Set, []Diagnostic) {
	c := NewCursor(text)
	set := parseSet(c)
	skipBlankLines(c)
	if !c.AtEnd() {
		skipWhitespace(c)
		from := c.Pos()
		for !isLineEnd(c) {
			c.Advance(1)
		}
		c.Errorf(from, c.span(from), "unexpected content after set")
	}
	return set, c.Diagnostics()
}
