package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/claude/gymlog/internal/parser"
	"github.com/spf13/cobra"
)

var parseSetLine bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a workout file and print it as JSON",
	Long: `Parse a workout file (or standard input when no file or "-" is given)
and print the structured workout as JSON. Diagnostics are printed to
standard error and make the command fail.

With --set the input is a single set line such as "100x5@8".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseSetLine, "set", false, "parse the input as a single set line")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	name, source, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var out any
	var diags []parser.Diagnostic
	if parseSetLine {
		source = strings.TrimRight(source, "\r\n")
		out, diags = parser.ParseSetLine(source)
	} else {
		out, diags = parser.Parse(source)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if len(diags) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), renderDiagnostics(name, diags, source))
		return errDiagnostics
	}
	return nil
}

// readInput returns the display name and text of the file argument, or of
// standard input.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}
