package parser

import (
	"fmt"
	"strings"
)

// FormatDiagnostic renders a diagnostic against the source it came from:
//
//	ERROR: expected a number but got "Eight"
//
//	1| 295xEight,8
//	       ^^^^^
func FormatDiagnostic(d Diagnostic, source string) string {
	prefix := fmt.Sprintf("%d| ", d.Line)
	length := max(d.Length, 1)
	indent := max(len(prefix)+d.Column-1, 0)

	var b strings.Builder
	fmt.Fprintf(&b, "ERROR: %s\n\n", d.Message)
	b.WriteString(prefix)
	b.WriteString(SourceLine(source, d.Line))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(strings.Repeat("^", length))
	b.WriteByte('\n')
	return b.String()
}

// FormatDiagnostics renders every diagnostic, separated by blank lines.
func FormatDiagnostics(diags []Diagnostic, source string) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, source)
	}
	return strings.Join(parts, "\n")
}

// SourceLine returns the 1-based line n of source, or "" when out of range.
// Line breaks are recognised the same way the cursor counts them.
func SourceLine(source string, n int) string {
	lines := SplitLines(source)
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// SplitLines splits on "\r\n", "\n" and lone "\r".
func SplitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	return strings.Split(source, "\n")
}
