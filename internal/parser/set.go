package parser

import "strings"

// setParser holds the state for one set line.
type setParser struct {
	c   *Cursor
	lx  setLexer
	set Set
	// seen tracks fields already assigned on this line.
	seen map[string]bool
}

// parseSet parses a single set line, e.g. "225x10,8@9 {belt}", and consumes
// the line break that ends it.
func parseSet(c *Cursor) Set {
	p := &setParser{c: c, lx: setLexer{c}, seen: map[string]bool{}}
	for p.next() {
	}
	p.finish()
	return p.set
}

// next parses one value production. It returns false at the end of the line.
func (p *setParser) next() bool {
	tok := peek(p.c, p.lx)
	start := p.c.Checkpoint()
	switch tok.Kind {
	case EOFToken, NewLine, Comment:
		return false
	case Identifier:
		p.lx.Next()
		p.identifier(tok, start)
	case Operator:
		p.lx.Next()
		p.operator(tok, start)
	case TagStart:
		tags := parseTags(p.c)
		p.assign("tags", start, func(s *Set) { s.Tags = tags })
	case Number:
		p.number(start)
	default:
		p.unknown()
	}
	return true
}

// finish consumes an optional trailing comment and the line break.
func (p *setParser) finish() {
	tok := p.lx.Next()
	if tok.Kind == Comment {
		p.lx.Next()
	}
}

// assign stores a field unless it was already set on this line, in which
// case the first value is kept and the duplicate is reported over the span
// of the production that produced it.
func (p *setParser) assign(field string, start Checkpoint, apply func(*Set)) {
	if p.seen[field] {
		// The production may have started with whitespace.
		from := skipBlanks(p.c, start.pos)
		p.c.Errorf(from, p.c.span(from), "duplicate %s", field)
		return
	}
	p.seen[field] = true
	apply(&p.set)
}

// skipBlanks returns the position of the first non-blank rune at or after
// from on the same line, without moving the cursor.
func skipBlanks(c *Cursor, from Position) Position {
	cp := c.Checkpoint()
	defer c.Restore(cp)
	c.Restore(Checkpoint{pos: from})
	skipWhitespace(c)
	return c.Pos()
}

func (p *setParser) identifier(tok Token, start Checkpoint) {
	if r := tok.Value[0]; r == 'b' || r == 'B' {
		if !strings.EqualFold(tok.Value, "bw") {
			p.c.Errorf(tok.Pos, tok.Len(), "expected bw but got %s", tok.Value)
			return
		}
		p.assign("weight", start, func(s *Set) { w := Bodyweight; s.Weight = &w })
		return
	}
	p.c.Errorf(tok.Pos, tok.Len(), "unexpected identifier %s", tok.Value)
}

func (p *setParser) operator(tok Token, start Checkpoint) {
	switch tok.Value {
	case "x", "X":
		if reps := p.reps(); len(reps) > 0 {
			p.assign("reps", start, func(s *Set) { s.Reps = reps })
		}
	case "@":
		if rpe, ok := p.expectNumber(); ok {
			p.assign("rpe", start, func(s *Set) { s.RPE = &rpe })
		}
	default:
		p.c.Errorf(tok.Pos, tok.Len(), "unexpected operator %s", tok.Value)
	}
}

// reps parses a comma separated list of rep counts. Bad elements are
// reported and skipped.
func (p *setParser) reps() []int {
	var reps []int
	for {
		tok := peek(p.c, p.lx)
		switch tok.Kind {
		case Number:
			p.lx.Next()
			if n, ok := parseCount(tok.Value); ok {
				reps = append(reps, n)
			} else {
				p.c.Errorf(tok.Pos, tok.Len(), "invalid rep count %s", tok.Value)
			}
		case EOFToken, NewLine, Comment:
			p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got %s", tok.Describe())
			return reps
		case Operator:
			if tok.Value == "," {
				// Empty element; report it and let the comma below be consumed.
				p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got ,")
				break
			}
			p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got %s", tok.Value)
			return reps
		case Identifier, Unknown:
			p.lx.Next()
			p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got %q", tok.Value)
		default:
			p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got %s", tok.Value)
			return reps
		}
		if !p.consumeComma() {
			return reps
		}
	}
}

func (p *setParser) consumeComma() bool {
	tok := peek(p.c, p.lx)
	if tok.Kind == Operator && tok.Value == "," {
		p.lx.Next()
		return true
	}
	return false
}

// expectNumber consumes a numeric token and converts it.
func (p *setParser) expectNumber() (float64, bool) {
	tok := peek(p.c, p.lx)
	if tok.Kind != Number {
		p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got %s", tok.Describe())
		return 0, false
	}
	p.lx.Next()
	f, ok := parseNumber(tok.Value)
	if !ok {
		p.c.Errorf(tok.Pos, tok.Len(), "invalid number %s", tok.Value)
	}
	return f, ok
}

// number resolves the productions that start with a number: a time literal
// when a colon follows, a value with a unit when letters follow, and a bare
// weight otherwise.
func (p *setParser) number(start Checkpoint) {
	tok := p.lx.Next()
	value, ok := parseNumber(tok.Value)
	if !ok {
		p.invalidNumber(tok)
		return
	}

	next := peek(p.c, p.lx)
	switch {
	case next.Kind == Operator && next.Value == ":":
		p.c.Restore(start)
		if d, ok := p.time(); ok {
			p.assign("time", start, func(s *Set) { s.Time = &d })
		}
	case next.Kind == Identifier && !strings.EqualFold(next.Value, "bw"):
		p.lx.Next()
		p.unit(value, tok, next, start)
	default:
		p.assign("weight", start, func(s *Set) { s.Weight = &Weight{Value: value} })
	}
}

// invalidNumber reports a malformed number together with any malformed
// numbers directly after it, so a line like "---" yields one diagnostic.
func (p *setParser) invalidNumber(first Token) {
	text := first.Value
	length := first.Len()
	for {
		tok := peek(p.c, p.lx)
		if tok.Kind != Number || tok.Pos.Line != first.Pos.Line || tok.Pos.Column != first.Pos.Column+length {
			break
		}
		if _, ok := parseNumber(tok.Value); ok {
			break
		}
		p.lx.Next()
		text += tok.Value
		length += tok.Len()
	}
	p.c.Errorf(first.Pos, length, "invalid number %s", text)
}

func (p *setParser) unit(value float64, num, unit Token, start Checkpoint) {
	u := strings.ToLower(unit.Value)
	switch ClassifyUnit(u) {
	case UnitWeight:
		p.assign("weight", start, func(s *Set) { s.Weight = &Weight{Value: value, Unit: u} })
	case UnitDistance:
		p.assign("distance", start, func(s *Set) { s.Distance = &Distance{Value: value, Unit: u} })
	case UnitRepeatCount:
		n, ok := parseCount(num.Value)
		if !ok || n < 1 {
			p.c.Errorf(num.Pos, num.Len(), "set count must be a positive integer but got %s", num.Value)
			return
		}
		p.assign("sets", start, func(s *Set) { s.RepeatCount = n })
	default:
		p.c.Errorf(unit.Pos, unit.Len(), "expected a weight, distance, or sets unit but got %s", unit.Value)
		p.assign("weight", start, func(s *Set) { s.Weight = &Weight{Value: value} })
	}
}

// time parses h:m:s or m:s. Every component must be a non-negative integer.
func (p *setParser) time() (Duration, bool) {
	var parts []int
	valid := true
	for {
		tok := peek(p.c, p.lx)
		if tok.Kind != Number {
			p.c.Errorf(tok.Pos, tok.Len(), "expected a number but got %s", tok.Describe())
			return Duration{}, false
		}
		p.lx.Next()
		n, ok := parseCount(tok.Value)
		if !ok {
			p.c.Errorf(tok.Pos, tok.Len(), "invalid time component %s", tok.Value)
			valid = false
		}
		parts = append(parts, n)

		sep := peek(p.c, p.lx)
		if len(parts) == 3 || sep.Kind != Operator || sep.Value != ":" {
			break
		}
		p.lx.Next()
	}
	if !valid {
		return Duration{}, false
	}
	if len(parts) == 2 {
		return Duration{Minutes: parts[0], Seconds: parts[1]}, true
	}
	return Duration{Hours: parts[0], Minutes: parts[1], Seconds: parts[2]}, true
}

// unknown reports a run of characters no production accepts as a single
// diagnostic.
func (p *setParser) unknown() {
	first := p.lx.Next()
	length := first.Len()
	for {
		tok := peek(p.c, p.lx)
		if tok.Kind != Unknown || tok.Pos.Line != first.Pos.Line || tok.Pos.Column != first.Pos.Column+length {
			break
		}
		p.lx.Next()
		length += tok.Len()
	}
	p.c.Errorf(first.Pos, length, "unexpected character %q", p.c.input[first.Pos.Offset:p.c.Pos().Offset])
}
