package cmd

import (
	"fmt"

	"github.com/claude/gymlog/internal/calc"
	"github.com/spf13/cobra"
)

var formulaName string

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "One-rep max and RPE calculations",
}

var e1rmCmd = &cobra.Command{
	Use:   "e1rm SET",
	Short: "Estimate the one-rep max of a set",
	Long: `Estimate the one-rep max of a set written in workout syntax.
RPE counts reps in reserve, so 100x5@8 is treated as 7 reps to failure.`,
	Example: "  gym calc e1rm 100x5@8\n  gym calc e1rm --formula epley 225x3",
	Args:    cobra.ExactArgs(1),
	RunE:    runE1RM,
}

var rpeCmd = &cobra.Command{
	Use:   "rpe FROM TO",
	Short: "Fill in the missing value of a target set",
	Long: `Given a reference set with weight and reps, compute the value left
out of the target set: its reps ("90@9"), its weight ("x8@8") or its RPE
("90x6").`,
	Example: "  gym calc rpe 100x5@8 x8@8\n  gym calc rpe 100x5@8 90x6",
	Args:    cobra.ExactArgs(2),
	RunE:    runRPE,
}

func init() {
	calcCmd.PersistentFlags().StringVarP(&formulaName, "formula", "f", "", "brzycki or epley (default: workouts.e1rm_formula from config)")
	calcCmd.AddCommand(e1rmCmd, rpeCmd)
	rootCmd.AddCommand(calcCmd)
}

// formula returns the --formula flag, or the configured formula.
func formula() (calc.Formula, error) {
	if formulaName != "" {
		return calc.ParseFormula(formulaName)
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return calc.ParseFormula(cfg.Workouts.E1RMFormula)
}

func runE1RM(cmd *cobra.Command, args []string) error {
	f, err := formula()
	if err != nil {
		return err
	}
	e1rm, err := calc.E1RM(args[0], f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %v %s\n", headerStyle.Render("e1RM"), e1rm, mutedStyle.Render("("+string(f)+")"))
	return nil
}

func runRPE(cmd *cobra.Command, args []string) error {
	f, err := formula()
	if err != nil {
		return err
	}
	conv, err := calc.ConvertRPE(args[0], args[1], f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", headerStyle.Render(conv.Field), conv.Text, mutedStyle.Render("("+string(f)+")"))
	return nil
}
