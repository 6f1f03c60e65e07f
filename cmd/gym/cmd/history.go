package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/gymlog/internal/history"
	"github.com/claude/gymlog/internal/ingest/gymfile"
	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/parser"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history EXERCISE",
	Short: "Show recent occurrences of an exercise",
	Long: `Show the most recent occurrences of an exercise, as written in the
workout files of the workout directory. Names match case-insensitively.`,
	Example: `  gym history "bench press" -n 5`,
	Args:    cobra.ExactArgs(1),
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of occurrences")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	files, err := workoutFiles(cfg.Workouts.Dir)
	if err != nil {
		return err
	}

	entries, skipped, err := collectHistory(files, args[0], historyLimit)
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("skipped %d file(s) with errors; run gym check", skipped)))
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No history for %s.\n", args[0])
		return nil
	}
	return history.Render(cmd.OutOrStdout(), entries)
}

// collectHistory scans files newest first and returns up to limit
// occurrences of the named exercise. Files with diagnostics are skipped and
// counted.
func collectHistory(files []string, name string, limit int) ([]models.HistoryEntry, int, error) {
	var entries []models.HistoryEntry
	var skipped int
	for _, path := range files {
		if limit > 0 && len(entries) >= limit {
			break
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, skipped, err
		}
		source := string(data)
		doc, diags := parser.Parse(source)
		if len(diags) > 0 {
			skipped++
			continue
		}
		fileName := filepath.Base(path)
		for _, ex := range doc.Exercises {
			if !strings.EqualFold(ex.Name, name) {
				continue
			}
			entries = append(entries, models.HistoryEntry{
				FileName:  fileName,
				Date:      gymfile.WorkoutDate(fileName, doc.Metadata),
				LineStart: ex.LineStart,
				LineEnd:   ex.LineEnd,
				Source:    source,
			})
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
	}
	return entries, skipped, nil
}
