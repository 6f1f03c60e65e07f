package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/claude/gymlog/internal/parser"
)

var (
	colorError = lipgloss.Color("#EF4444") // Red
	colorOK    = lipgloss.Color("#10B981") // Emerald
	colorMuted = lipgloss.Color("#6B7280") // Gray

	errorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	caretStyle  = lipgloss.NewStyle().Foreground(colorError)
	okStyle     = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// renderDiagnostic is parser.FormatDiagnostic with the file position in the
// header and colour on the message and carets.
func renderDiagnostic(fileName string, d parser.Diagnostic, source string) string {
	prefix := fmt.Sprintf("%d| ", d.Line)
	indent := max(len(prefix)+d.Column-1, 0)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n",
		headerStyle.Render(fmt.Sprintf("%s:%d:%d:", fileName, d.Line, d.Column)),
		errorStyle.Render("ERROR: ")+d.Message)
	b.WriteString(mutedStyle.Render(prefix))
	b.WriteString(parser.SourceLine(source, d.Line))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(caretStyle.Render(strings.Repeat("^", max(d.Length, 1))))
	b.WriteByte('\n')
	return b.String()
}

func renderDiagnostics(fileName string, diags []parser.Diagnostic, source string) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = renderDiagnostic(fileName, d, source)
	}
	return strings.Join(parts, "\n")
}
