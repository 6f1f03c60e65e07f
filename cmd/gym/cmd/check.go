package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/claude/gymlog/internal/importer"
	"github.com/claude/gymlog/internal/parser"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Report diagnostics for workout files",
	Long: `Check workout files for errors. Without arguments every
YYYY-MM-DD*.gym file in the workout directory is checked.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		files, err = workoutFiles(cfg.Workouts.Dir)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var failed, total int
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source := string(data)
		_, diags := parser.Parse(source)
		if len(diags) > 0 {
			failed++
			total += len(diags)
			fmt.Fprintln(out, renderDiagnostics(filepath.Base(path), diags, source))
		}
	}

	if failed > 0 {
		fmt.Fprintf(out, "%s %d error(s) in %d of %d file(s)\n",
			errorStyle.Render("FAIL"), total, failed, len(files))
		return errDiagnostics
	}
	fmt.Fprintf(out, "%s %d file(s)\n", okStyle.Render("OK"), len(files))
	return nil
}

// workoutFiles lists the workout files of dir, newest first.
func workoutFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading workout directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !importer.WorkoutFilePattern.MatchString(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}
