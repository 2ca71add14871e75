// ABOUTME: CLI commands for logging hydration.
// ABOUTME: Adds or removes millilitres on a day and shows progress against the goal.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
)

var waterDate string

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Log hydration",
	Long: `Log water intake in millilitres.

Reaching the daily goal earns a hydration bonus.

Examples:
  dojo water add 500
  dojo water add 250 --date yesterday
  dojo water remove 250
  dojo water`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(waterDate)
		if err != nil {
			return err
		}
		day, err := jrnl.Day(date)
		if err != nil {
			return err
		}
		printHydration(cmd, day)
		return nil
	},
}

var waterAddCmd = &cobra.Command{
	Use:   "add <ml>",
	Short: "Add water",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjustWater(cmd, args[0], 1)
	},
}

var waterRemoveCmd = &cobra.Command{
	Use:     "remove <ml>",
	Aliases: []string{"rm"},
	Short:   "Remove water logged by mistake",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjustWater(cmd, args[0], -1)
	},
}

func adjustWater(cmd *cobra.Command, amount string, sign int) error {
	ml, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(amount), "ml"))
	if err != nil || ml <= 0 {
		return fmt.Errorf("invalid amount: %s (use a positive number of ml)", amount)
	}
	date, err := resolveDate(waterDate)
	if err != nil {
		return err
	}
	day, err := jrnl.AdjustHydration(date, sign*ml)
	if err != nil {
		return fmt.Errorf("failed to log water: %w", err)
	}
	if sign > 0 {
		color.Green("✓ Added %d ml", ml)
	} else {
		color.Yellow("✗ Removed %d ml", ml)
	}
	printHydration(cmd, day)
	return nil
}

func printHydration(cmd *cobra.Command, day *models.DailyLog) {
	goal := jrnl.Rules().HydrationGoalML
	out := cmd.OutOrStdout()
	if goal <= 0 {
		fmt.Fprintf(out, "  %s: %d ml\n", day.Date, day.Hydration)
		return
	}
	pct := day.Hydration * 100 / goal
	fmt.Fprintf(out, "  %s: %d/%d ml %s %d%%\n", day.Date, day.Hydration, goal, bar(pct, 20), pct)
}

// bar renders a percentage as a fixed-width progress bar.
func bar(pct, width int) string {
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	filled := pct * width / 100
	return strings.Repeat("█", filled) + faint.Sprint(strings.Repeat("░", width-filled))
}

func init() {
	waterCmd.PersistentFlags().StringVarP(&waterDate, "date", "d", "", "day to log (YYYY-MM-DD, yesterday, -N)")

	waterCmd.AddCommand(waterAddCmd)
	waterCmd.AddCommand(waterRemoveCmd)
	rootCmd.AddCommand(waterCmd)
}
