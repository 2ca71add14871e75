// ABOUTME: CLI commands for progression and statistics.
// ABOUTME: Shows the current level, today's summary, and the weekly chart.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
)

var statsJSON bool

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show your level and XP",
	Long: `Show your level and XP progress.

XP comes from:
  every finished workout session
  reaching the daily hydration goal
  taking every supplement on a day`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := jrnl.Level()
		if err != nil {
			return err
		}
		today, err := jrnl.Breakdown(jrnl.Today())
		if err != nil {
			return err
		}
		if statsJSON {
			return writeJSON(cmd, map[string]any{
				"level":             info.Level,
				"current_level_xp":  info.CurrentLevelXP,
				"xp_for_next_level": info.XPForNextLevel,
				"total_xp":          info.TotalXP,
				"progress_percent":  info.Progress(),
				"today":             today,
			})
		}

		out := cmd.OutOrStdout()
		color.New(color.Bold, color.FgYellow).Fprintf(out, "Level %d\n", info.Level)
		fmt.Fprintf(out, "  %s %d/%d XP\n", bar(int(info.Progress()), 20), info.CurrentLevelXP, info.XPForNextLevel)
		fmt.Fprintf(out, "  Total: %d XP\n", info.TotalXP)
		fmt.Fprintf(out, "  Today: +%d XP %s\n", today.Total(),
			faint.Sprintf("(sessions %d, hydration %d, supplements %d)", today.SessionXP, today.HydrationXP, today.SupplementXP))
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := jrnl.Summary(jrnl.Now())
		if err != nil {
			return err
		}
		if statsJSON {
			return writeJSON(cmd, sum)
		}

		out := cmd.OutOrStdout()
		color.New(color.Bold).Fprintf(out, "%s\n", sum.Date)
		fmt.Fprintf(out, "  Level %d, %d/%d XP\n", sum.Level.Level, sum.Level.CurrentLevelXP, sum.Level.XPForNextLevel)
		fmt.Fprintf(out, "  Sessions today: %d %s\n", len(sum.TodaySessions), faint.Sprintf("(%d all time)", sum.TotalSessions))
		fmt.Fprintf(out, "  Hydration: %d/%d ml %s %d%%\n", sum.HydrationML, sum.HydrationGoalML, bar(sum.HydrationPercent, 20), sum.HydrationPercent)
		fmt.Fprintf(out, "  Supplements: %d/%d\n", sum.SupplementsTaken, sum.SupplementsTotal)
		fmt.Fprintf(out, "  Programs: %d\n", sum.Programs)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"week"},
	Short:   "Show the last seven days",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		week, err := jrnl.Week(jrnl.Now())
		if err != nil {
			return err
		}
		if statsJSON {
			return writeJSON(cmd, map[string]any{"days": week})
		}

		maxXP := 0
		for _, d := range week {
			if d.XP > maxXP {
				maxXP = d.XP
			}
		}

		out := cmd.OutOrStdout()
		var sessions, xp int
		var volume, distance float64
		for _, d := range week {
			pct := 0
			if maxXP > 0 {
				pct = d.XP * 100 / maxXP
			}
			day, _ := models.ParseDateKey(d.Date)
			fmt.Fprintf(out, "%s %s %s %4d XP  %d sessions  %5d ml\n",
				day.Format("Mon"), faint.Sprint(d.Date[5:]), bar(pct, 15), d.XP, d.Sessions, d.Hydration)
			sessions += d.Sessions
			xp += d.XP
			volume += d.VolumeKg
			distance += d.DistanceKm
		}
		fmt.Fprintf(out, "\nTotal: %d sessions, %d XP", sessions, xp)
		if volume > 0 {
			fmt.Fprintf(out, ", %.0f kg lifted", volume)
		}
		if distance > 0 {
			fmt.Fprintf(out, ", %.1f km run", distance)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{levelCmd, todayCmd, statsCmd} {
		c.Flags().BoolVar(&statsJSON, "json", false, "output JSON")
		rootCmd.AddCommand(c)
	}
}
