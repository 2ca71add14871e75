// ABOUTME: CLI commands for managing supplements and daily intake.
// ABOUTME: Supports add, list, edit, delete, and take (toggle) with a date flag.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
)

var (
	supDosage string
	supTime   string
	supNotes  string
	supName   string
	supDate   string
	supYes    bool
)

var supplementCmd = &cobra.Command{
	Use:     "supplement",
	Aliases: []string{"sup", "s"},
	Short:   "Manage supplements",
	Long: `Manage your supplement checklist.

Taking every supplement on a day earns a supplement bonus.

COMMANDS:

  add      Add a supplement
  list     List supplements and today's intake
  edit     Change a supplement
  delete   Delete a supplement and its intake history
  take     Toggle whether a supplement was taken`,
}

var supplementAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a supplement",
	Long: `Add a supplement.

Examples:
  dojo supplement add creatine --dosage 5g --time Morning
  dojo supplement add "Vitamin D" --dosage "2000 IU" --notes "with food"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sup := models.NewSupplement(args[0], supDosage, supTime)
		if supNotes != "" {
			sup.WithNotes(supNotes)
		}
		if err := jrnl.AddSupplement(sup); err != nil {
			return fmt.Errorf("failed to add supplement: %w", err)
		}
		color.Green("✓ Added %s (%s)", sup.Name, sup.Dosage)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", faint.Sprint(sup.ID.String()[:8]))
		return nil
	},
}

var supplementListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List supplements",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sups, err := jrnl.Supplements()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sups) == 0 {
			fmt.Fprintln(out, "No supplements found.")
			return nil
		}
		date, err := resolveDate(supDate)
		if err != nil {
			return err
		}
		day, err := jrnl.Day(date)
		if err != nil {
			return err
		}

		for _, s := range sups {
			mark := faint.Sprint("○")
			if day.SupplementLog[s.Key()] {
				mark = color.GreenString("●")
			}
			extra := ""
			if s.Notes != nil {
				extra = faint.Sprintf(" %s", *s.Notes)
			}
			fmt.Fprintf(out, "%s %s %s %s %s%s\n",
				mark,
				faint.Sprint(s.ID.String()[:8]),
				padRight(truncate(s.Name, 20), 20),
				padRight(s.Dosage, 10),
				s.Time,
				extra)
		}
		return nil
	},
}

var supplementEditCmd = &cobra.Command{
	Use:   "edit <id|name>",
	Short: "Edit a supplement",
	Long: `Change a supplement's name, dosage, time, or notes.

Only the flags you pass are changed.

Examples:
  dojo supplement edit creatine --dosage 3g
  dojo supplement edit a1b2c3 --name "Vitamin D3"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sup, err := jrnl.Supplement(args[0])
		if err != nil {
			return fmt.Errorf("supplement not found: %s", args[0])
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			sup.Name = supName
		}
		if flags.Changed("dosage") {
			sup.Dosage = supDosage
		}
		if flags.Changed("time") {
			sup.Time = supTime
		}
		if flags.Changed("notes") {
			if supNotes == "" {
				sup.Notes = nil
			} else {
				sup.WithNotes(supNotes)
			}
		}
		if err := jrnl.UpdateSupplement(sup); err != nil {
			return fmt.Errorf("failed to update supplement: %w", err)
		}
		color.Green("✓ Updated %s", sup.Name)
		return nil
	},
}

var supplementDeleteCmd = &cobra.Command{
	Use:     "delete <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete a supplement",
	Long: `Delete a supplement. Its intake is removed from every day.

Examples:
  dojo supplement delete creatine
  dojo supplement delete a1b2c3 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sup, err := jrnl.Supplement(args[0])
		if err != nil {
			return fmt.Errorf("supplement not found: %s", args[0])
		}
		if !supYes && !confirm(cmd.InOrStdin(), os.Stderr, fmt.Sprintf("Delete %s and its intake history? [y/N] ", sup.Name), "y", "yes") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		deleted, days, err := jrnl.DeleteSupplement(sup.ID.String())
		if err != nil {
			return fmt.Errorf("failed to delete supplement: %w", err)
		}
		color.Yellow("✗ Deleted %s", deleted.Name)
		if days > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  removed from %d days\n", days)
		}
		return nil
	},
}

var supplementTakeCmd = &cobra.Command{
	Use:   "take <id|name>",
	Short: "Toggle whether a supplement was taken",
	Long: `Toggle a supplement on the day's checklist.

Examples:
  dojo supplement take creatine
  dojo supplement take creatine --date yesterday`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(supDate)
		if err != nil {
			return err
		}
		sup, err := jrnl.Supplement(args[0])
		if err != nil {
			return fmt.Errorf("supplement not found: %s", args[0])
		}
		day, err := jrnl.ToggleSupplement(date, sup.ID.String())
		if err != nil {
			return fmt.Errorf("failed to toggle supplement: %w", err)
		}
		if day.SupplementLog[sup.Key()] {
			color.Green("✓ Took %s on %s", sup.Name, date)
		} else {
			color.Yellow("○ Unmarked %s on %s", sup.Name, date)
		}
		return nil
	},
}

func init() {
	supplementAddCmd.Flags().StringVar(&supDosage, "dosage", "", "dosage, e.g. 5g (required)")
	supplementAddCmd.Flags().StringVar(&supTime, "time", "", "when you take it, e.g. Morning")
	supplementAddCmd.Flags().StringVar(&supNotes, "notes", "", "optional notes")
	_ = supplementAddCmd.MarkFlagRequired("dosage")

	supplementEditCmd.Flags().StringVar(&supName, "name", "", "new name")
	supplementEditCmd.Flags().StringVar(&supDosage, "dosage", "", "new dosage")
	supplementEditCmd.Flags().StringVar(&supTime, "time", "", "new time label")
	supplementEditCmd.Flags().StringVar(&supNotes, "notes", "", "new notes (empty clears)")

	supplementDeleteCmd.Flags().BoolVarP(&supYes, "yes", "y", false, "skip confirmation")

	supplementListCmd.Flags().StringVarP(&supDate, "date", "d", "", "day to show intake for")
	supplementTakeCmd.Flags().StringVarP(&supDate, "date", "d", "", "day to log (YYYY-MM-DD, yesterday, -N)")

	supplementCmd.AddCommand(supplementAddCmd)
	supplementCmd.AddCommand(supplementListCmd)
	supplementCmd.AddCommand(supplementEditCmd)
	supplementCmd.AddCommand(supplementDeleteCmd)
	supplementCmd.AddCommand(supplementTakeCmd)
	rootCmd.AddCommand(supplementCmd)
}
