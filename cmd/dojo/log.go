// ABOUTME: CLI commands for browsing and editing the daily log.
// ABOUTME: Supports list, show, edit, delete (day), rm-session, and reset.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/progression"
)

var (
	logLimit       int
	logYes         bool
	logHydration   int
	logSupplements []string
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"l"},
	Short:   "Browse the daily log",
	Long: `Browse and edit the daily log.

COMMANDS:

  list        List recent days
  show        Show one day in detail
  edit        Set a day's hydration and supplement checks
  delete      Delete a whole day
  rm-session  Delete one session from a day
  reset       Delete the whole history (programs and supplements are kept)`,
}

var logListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent days",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := jrnl.Days()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintln(out, "No days logged yet.")
			return nil
		}
		sups, err := supplementValues()
		if err != nil {
			return err
		}

		sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
		if logLimit > 0 && len(days) > logLimit {
			days = days[:logLimit]
		}
		for _, d := range days {
			xp := progression.DayXP(jrnl.Rules(), d, sups).Total()
			taken := 0
			for _, s := range sups {
				if d.SupplementLog[s.Key()] {
					taken++
				}
			}
			fmt.Fprintf(out, "%s  %d sessions  %5d ml  %d/%d supplements  %s\n",
				d.Date, len(d.Sessions), d.Hydration, taken, len(sups),
				color.CyanString("+%d XP", xp))
		}
		return nil
	},
}

var logShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show one day",
	Long: `Show one day's sessions, hydration, and supplements.

The date defaults to today and accepts YYYY-MM-DD, yesterday, or -N.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		date, err := resolveDate(ref)
		if err != nil {
			return err
		}
		day, err := jrnl.Day(date)
		if err != nil {
			return err
		}
		breakdown, err := jrnl.Breakdown(date)
		if err != nil {
			return err
		}
		sups, err := jrnl.Supplements()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.Bold).Fprintf(out, "%s\n", day.Date)

		fmt.Fprintln(out, "\nSessions:")
		if len(day.Sessions) == 0 {
			fmt.Fprintln(out, faint.Sprint("  none"))
		}
		for _, s := range day.Sessions {
			fmt.Fprintf(out, "  %s %s %s +%d XP%s\n",
				faint.Sprint(sessionTail(s.ID)),
				s.Date.Format("15:04"),
				padRight(s.ProgramName, 20),
				s.XPGained,
				effort(s))
		}

		fmt.Fprintln(out, "\nHydration:")
		printHydration(cmd, day)

		fmt.Fprintln(out, "\nSupplements:")
		if len(sups) == 0 {
			fmt.Fprintln(out, faint.Sprint("  none"))
		}
		for _, s := range sups {
			mark := faint.Sprint("○")
			if day.SupplementLog[s.Key()] {
				mark = color.GreenString("●")
			}
			fmt.Fprintf(out, "  %s %s %s\n", mark, s.Name, faint.Sprint(s.Dosage))
		}

		fmt.Fprintf(out, "\nXP: %d (sessions %d, hydration %d, supplements %d)\n",
			breakdown.Total(), breakdown.SessionXP, breakdown.HydrationXP, breakdown.SupplementXP)
		return nil
	},
}

var logEditCmd = &cobra.Command{
	Use:   "edit <date>",
	Short: "Edit a day's hydration and supplement checks",
	Long: `Set hydration and supplement checks for one day. Sessions are kept.

Supplements are named by ID, ID prefix, or name, with an optional
=true or =false (default true). A day left with nothing logged is removed.

EXAMPLES:

  dojo log edit yesterday --hydration 2500
  dojo log edit 2025-01-31 --supplement creatine=false --supplement "vitamin d"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(args[0])
		if err != nil {
			return err
		}
		if logHydration < -1 {
			return fmt.Errorf("hydration must not be negative")
		}
		if logHydration == -1 && len(logSupplements) == 0 {
			return fmt.Errorf("nothing to change (use --hydration or --supplement)")
		}

		day, err := jrnl.Day(date)
		if err != nil {
			return err
		}
		edited := day.Clone()
		if logHydration >= 0 {
			edited.Hydration = logHydration
		}
		for _, arg := range logSupplements {
			ref, value, hasValue := strings.Cut(arg, "=")
			taken := true
			if hasValue {
				taken, err = strconv.ParseBool(strings.TrimSpace(value))
				if err != nil {
					return fmt.Errorf("invalid --supplement %q (use name=true or name=false)", arg)
				}
			}
			sup, err := jrnl.Supplement(strings.TrimSpace(ref))
			if err != nil {
				return err
			}
			edited.SupplementLog[sup.Key()] = taken
		}

		saved, err := jrnl.SaveDay(edited)
		if err != nil {
			return fmt.Errorf("failed to save day: %w", err)
		}
		if saved.IsEmpty() {
			color.Yellow("✗ %s has nothing logged and was removed", date)
			return nil
		}
		color.Green("✓ Saved %s", date)
		printHydration(cmd, saved)
		return nil
	},
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Delete a whole day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(args[0])
		if err != nil {
			return err
		}
		if !logYes && !confirm(cmd.InOrStdin(), os.Stderr, fmt.Sprintf("Delete everything logged on %s? [y/N] ", date), "y", "yes") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		if err := jrnl.DeleteDay(date); err != nil {
			return fmt.Errorf("failed to delete day: %w", err)
		}
		color.Yellow("✗ Deleted %s", date)
		return nil
	},
}

var logRmSessionCmd = &cobra.Command{
	Use:   "rm-session <date> <session-id>",
	Short: "Delete one session",
	Long: `Delete one session from a day by ID or ID prefix.

Find session IDs with 'dojo log show <date>'.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(args[0])
		if err != nil {
			return err
		}
		ref := strings.ToUpper(args[1])
		day, err := jrnl.Day(date)
		if err != nil {
			return err
		}
		for _, s := range day.Sessions {
			if strings.HasSuffix(s.ID, ref) && !strings.HasPrefix(s.ID, ref) {
				ref = s.ID
				break
			}
		}
		if _, err := jrnl.DeleteSession(date, ref); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		color.Yellow("✗ Deleted session on %s", date)
		return nil
	},
}

var logResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the whole history",
	Long: `Delete every logged day. Programs and supplements are kept.

This resets your level to 1.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !logYes {
			color.Red("This deletes every session, hydration entry, and supplement check.")
			if !confirm(cmd.InOrStdin(), os.Stderr, "Type 'reset' to confirm: ", "reset") {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}
		n, err := jrnl.Reset()
		if err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
		color.Yellow("✗ Deleted %d days", n)
		return nil
	},
}

// sessionTail returns the random tail of a session ULID, which tells
// sessions on the same day apart better than the timestamp prefix.
func sessionTail(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func effort(s models.Session) string {
	switch {
	case s.DistanceKm != nil:
		return faint.Sprintf("  %.1f km", *s.DistanceKm)
	case s.TotalVolumeKg != nil:
		return faint.Sprintf("  %.0f kg", *s.TotalVolumeKg)
	}
	return ""
}

func supplementValues() ([]models.Supplement, error) {
	list, err := jrnl.Supplements()
	if err != nil {
		return nil, err
	}
	out := make([]models.Supplement, 0, len(list))
	for _, s := range list {
		out = append(out, *s)
	}
	return out, nil
}

func init() {
	logListCmd.Flags().IntVarP(&logLimit, "limit", "n", 14, "number of days to show")
	logEditCmd.Flags().IntVar(&logHydration, "hydration", -1, "hydration in ml (-1 keeps the current value)")
	logEditCmd.Flags().StringArrayVar(&logSupplements, "supplement", nil, "supplement check as name[=true|false] (repeatable)")
	logDeleteCmd.Flags().BoolVarP(&logYes, "yes", "y", false, "skip confirmation")
	logResetCmd.Flags().BoolVarP(&logYes, "yes", "y", false, "skip confirmation")

	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logEditCmd)
	logCmd.AddCommand(logDeleteCmd)
	logCmd.AddCommand(logRmSessionCmd)
	logCmd.AddCommand(logResetCmd)
	rootCmd.AddCommand(logCmd)
}
