package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/gymlog/internal/parser"
)

func writeWorkouts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		formulaName, workoutDir, parseSetLine = "", "", false
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// TestWorkoutFiles verifies only dated .gym files are listed, newest first.
func TestWorkoutFiles(t *testing.T) {
	dir := writeWorkouts(t, map[string]string{
		"2024-01-01.gym":      "# Squat\n100x5\n",
		"2024-02-01-legs.gym": "# Squat\n110x5\n",
		"notes.gym":           "",
		"2024-03-01.txt":      "",
	})
	files, err := workoutFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2", files)
	}
	if got := filepath.Base(files[0]); got != "2024-02-01-legs.gym" {
		t.Errorf("first = %q, want 2024-02-01-legs.gym", got)
	}
}

// TestCollectHistory verifies case-insensitive matching, the limit and
// skipping of files with errors.
func TestCollectHistory(t *testing.T) {
	dir := writeWorkouts(t, map[string]string{
		"2024-01-01.gym": "# Squat\n100x5\n",
		"2024-01-08.gym": "# Bench Press\n80x5\n\n# squat\n105x5\n",
		"2024-01-15.gym": "# Squat\n110x5 x6\n",
	})
	files, err := workoutFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	entries, skipped, err := collectHistory(files, "SQUAT", 10)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].FileName != "2024-01-08.gym" || entries[0].LineStart != 4 {
		t.Errorf("entries[0] = %s line %d, want 2024-01-08.gym line 4", entries[0].FileName, entries[0].LineStart)
	}
	if entries[0].Date == nil || entries[0].Date.Day() != 8 {
		t.Errorf("entries[0].Date = %v, want 2024-01-08", entries[0].Date)
	}

	entries, _, err = collectHistory(files, "squat", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("limited entries = %d, want 1", len(entries))
	}
}

// TestRenderDiagnostic verifies the file position, message, source line
// and carets are all present.
func TestRenderDiagnostic(t *testing.T) {
	source := "# Squat\n295xEight,8\n"
	d := parser.Diagnostic{Message: `expected a number but got "Eight"`, Line: 2, Column: 5, Length: 5}
	got := renderDiagnostic("2024-01-01.gym", d, source)
	for _, want := range []string{"2024-01-01.gym:2:5:", d.Message, "295xEight,8", "^^^^^"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderDiagnostic missing %q in:\n%s", want, got)
		}
	}
}

// TestCheckCommand verifies check fails on a file with errors.
func TestCheckCommand(t *testing.T) {
	dir := writeWorkouts(t, map[string]string{
		"2024-01-01.gym": "# Squat\n100x5\n",
		"2024-01-02.gym": "# Squat\n250qq\n",
	})
	out, err := execute(t, "check", "--config", filepath.Join(dir, "missing.yaml"), "--dir", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want errDiagnostics", err)
	}
	if !strings.Contains(out, "1 of 2 file(s)") {
		t.Errorf("output = %q", out)
	}
}

// TestCalcE1RMCommand verifies the e1RM command with an explicit formula.
func TestCalcE1RMCommand(t *testing.T) {
	out, err := execute(t, "calc", "e1rm", "--formula", "epley", "100x1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "100") || !strings.Contains(out, "epley") {
		t.Errorf("output = %q", out)
	}
}

// TestCalcRPECommand verifies the RPE conversion prints the filled-in value.
func TestCalcRPECommand(t *testing.T) {
	out, err := execute(t, "calc", "rpe", "--formula", "brzycki", "100x5@8", "x5@8")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "weight") || !strings.Contains(out, "100") {
		t.Errorf("output = %q", out)
	}
}
