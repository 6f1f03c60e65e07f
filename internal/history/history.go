// Package history renders past occurrences of an exercise as excerpts of
// the workout files they came from.
package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/parser"
)

// Excerpt returns lines lineStart through lineEnd (1-based, inclusive) of
// source. The range is clamped to the lines that exist.
func Excerpt(source string, lineStart, lineEnd int) string {
	lines := parser.SplitLines(source)
	lineStart = max(lineStart, 1)
	lineEnd = min(lineEnd, len(lines))
	if lineStart > lineEnd {
		return ""
	}
	return strings.Join(lines[lineStart-1:lineEnd], "\n")
}

// Fill sets the Excerpt of every entry that has a source.
func Fill(entries []models.HistoryEntry) {
	for i := range entries {
		if entries[i].Source != "" {
			entries[i].Excerpt = Excerpt(entries[i].Source, entries[i].LineStart, entries[i].LineEnd)
		}
	}
}

// Render writes each entry as a "file (date)" heading followed by the
// exercise block, separated by blank lines. Entries without a source use
// their Excerpt as is.
func Render(w io.Writer, entries []models.HistoryEntry) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		date := "undated"
		if e.Date != nil {
			date = e.Date.Format(time.DateOnly)
		}
		text := e.Excerpt
		if e.Source != "" {
			text = Excerpt(e.Source, e.LineStart, e.LineEnd)
		}
		if _, err := fmt.Fprintf(w, "%s (%s)\n%s\n", e.FileName, date, text); err != nil {
			return err
		}
	}
	return nil
}
