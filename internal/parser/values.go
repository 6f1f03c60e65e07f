package parser

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Unit vocabularies. They are disjoint, so a unit string classifies into at
// most one of them.
var (
	WeightUnits      = []string{"lb", "kg"}
	DistanceUnits    = []string{"m", "km", "mi", "ft", "in", "cm"}
	RepeatCountUnits = []string{"sets", "set"}
)

// UnitClass is the result of classifying the letters after a number.
type UnitClass int

const (
	UnitUnknown UnitClass = iota
	UnitWeight
	UnitDistance
	UnitRepeatCount
)

// ClassifyUnit maps a unit string (any case) to its vocabulary.
func ClassifyUnit(unit string) UnitClass {
	u := strings.ToLower(unit)
	switch {
	case slices.Contains(WeightUnits, u):
		return UnitWeight
	case slices.Contains(DistanceUnits, u):
		return UnitDistance
	case slices.Contains(RepeatCountUnits, u):
		return UnitRepeatCount
	}
	return UnitUnknown
}

// numberRe is the numeric grammar shared by set lines, tags and implicit
// metadata values.
var numberRe = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// parseNumber validates and converts a numeric literal.
func parseNumber(s string) (float64, bool) {
	if !numberRe.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseCount converts a literal that must be a non-negative integer.
func parseCount(s string) (int, bool) {
	if s == "" || strings.ContainsAny(s, "-.") {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// unquote strips the surrounding quotes of a string token and resolves
// backslash escapes. A missing closing quote is tolerated.
func unquote(tok string) string {
	s := strings.TrimPrefix(tok, `"`)
	if isTerminated(tok) {
		s = tok[1 : len(tok)-1]
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i == len(s)-1 {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case 'f':
			sb.WriteByte('\f')
		case 'b':
			sb.WriteByte('\b')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// isTerminated reports whether a string token has its closing quote.
func isTerminated(tok string) bool {
	if len(tok) < 2 || !strings.HasSuffix(tok, `"`) {
		return false
	}
	backslashes := 0
	for i := len(tok) - 2; i > 0 && tok[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 0
}
