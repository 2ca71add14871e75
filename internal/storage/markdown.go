// ABOUTME: Markdown journal export for dojo data.
// ABOUTME: Renders programs, supplements, day logs, and diary notes as readable sections.
package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dojo/internal/models"
)

// ExportMarkdown renders the journal as Markdown. A non-nil since limits the
// day section to days on or after that date.
//
//nolint:gocognit,gocyclo // Linear rendering despite complexity metrics.
func ExportMarkdown(r Repository, since *time.Time) (string, error) {
	data, err := r.GetAllData()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Dojo Journal - %s\n\n", now.Format(models.DateFormat)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(data.Programs) > 0 {
		sb.WriteString("## Programs\n\n")
		sb.WriteString("| Name | Mode | Exercises | Rounds | Category |\n")
		sb.WriteString("|------|------|-----------|--------|----------|\n")
		for _, p := range data.Programs {
			rounds := "-"
			if p.Mode == models.ModeSets {
				rounds = fmt.Sprintf("%d", p.RoundCount())
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
				p.Name, p.Mode, len(p.Exercises), rounds, strings.Join(p.Category, ", ")))
		}
		sb.WriteString("\n")
	}

	names := make(map[string]string, len(data.Supplements))
	if len(data.Supplements) > 0 {
		sb.WriteString("## Supplements\n\n")
		sb.WriteString("| Name | Dosage | Time |\n")
		sb.WriteString("|------|--------|------|\n")
		for _, s := range data.Supplements {
			names[s.Key()] = s.Name
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", s.Name, s.Dosage, s.Time))
		}
		sb.WriteString("\n")
	}

	days := data.Days
	notes := data.Notes
	if since != nil {
		cutoff := models.DateKey(*since)
		var filtered []*models.DailyLog
		for _, d := range days {
			if d.Date >= cutoff {
				filtered = append(filtered, d)
			}
		}
		days = filtered
		var recent []*models.Note
		for _, n := range notes {
			if n.Date >= cutoff {
				recent = append(recent, n)
			}
		}
		notes = recent
	}
	writeNotes(&sb, notes)
	if len(days) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("## Days\n\n")
	// Most recent first, like a journal.
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		sb.WriteString(fmt.Sprintf("### %s\n\n", d.Date))
		sb.WriteString(fmt.Sprintf("- Hydration: %d ml\n", d.Hydration))

		var taken []string
		for id, ok := range d.SupplementLog {
			if name, known := names[id]; ok && known {
				taken = append(taken, name)
			}
		}
		if len(taken) > 0 {
			sort.Strings(taken)
			sb.WriteString(fmt.Sprintf("- Supplements: %s\n", strings.Join(taken, ", ")))
		}
		sb.WriteString("\n")

		if len(d.Sessions) == 0 {
			continue
		}
		sb.WriteString("| Time | Program | XP | Volume | Distance |\n")
		sb.WriteString("|------|---------|----|--------|----------|\n")
		for _, s := range d.Sessions {
			volume, distance := "", ""
			if s.TotalVolumeKg != nil {
				volume = fmt.Sprintf("%.1f kg", *s.TotalVolumeKg)
			}
			if s.DistanceKm != nil {
				distance = fmt.Sprintf("%.2f km", *s.DistanceKm)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
				s.Date.Local().Format("15:04"), s.ProgramName, s.XPGained, volume, distance))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// writeNotes renders the diary, newest first as ListNotes returns it.
func writeNotes(sb *strings.Builder, notes []*models.Note) {
	if len(notes) == 0 {
		return
	}
	sb.WriteString("## Notes\n\n")
	for _, n := range notes {
		meta := fmt.Sprintf("%s, %s", n.Date, n.Category)
		if n.Mood != nil {
			meta += fmt.Sprintf(", mood %d/%d", *n.Mood, models.MaxMood)
		}
		sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", n.DisplayTitle(), meta))
		if n.Text != "" {
			sb.WriteString(n.Text + "\n\n")
		}
		if len(n.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("Tags: %s\n\n", strings.Join(n.Tags, ", ")))
		}
	}
}
