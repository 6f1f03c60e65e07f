package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/claude/gymlog/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	workoutDir string
)

// errDiagnostics is returned after diagnostics were already printed.
var errDiagnostics = errors.New("workout has errors")

var rootCmd = &cobra.Command{
	Use:   "gym",
	Short: "gym - plain-text workout log tools",
	Long: `gym reads workout logs written in the plain-text workout format:

  # Bench Press
  225x5@8
  200x8,8

Commands parse and check workout files, show the history of an exercise
and estimate one-rep maxes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints any error not already reported.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errDiagnostics) {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("error:"), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file (optional)")
	rootCmd.PersistentFlags().StringVarP(&workoutDir, "dir", "d", "", "workout directory (default: workouts.dir from config)")
}

// loadConfig reads the optional config file and applies the --dir override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(cfgFile)
	if err != nil {
		return nil, err
	}
	if workoutDir != "" {
		cfg.Workouts.Dir = workoutDir
	}
	return cfg, nil
}
