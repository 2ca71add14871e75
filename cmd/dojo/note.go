// ABOUTME: CLI commands for the training diary.
// ABOUTME: Supports add, list, search, and delete for dated notes with tags and mood.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
)

var (
	noteTitle    string
	noteCategory string
	noteTags     string
	noteMood     int
	noteDate     string
	noteLimit    int
	noteJSON     bool
	noteYes      bool
)

var noteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"n"},
	Short:   "Keep a training diary",
	Long: `Keep dated notes about training or reflections.

COMMANDS:

  add      Write a note
  list     List notes, newest first
  search   Find notes by title, text, or tag
  delete   Delete a note`,
}

var noteAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Write a note",
	Long: `Write a note. The text is every argument joined; a title alone is enough.

Categories are training (default) and philosophy. Mood is 1 to 5.

Examples:
  dojo note add "Squats felt smooth, breathe out on the way up" --tags legs,breathing
  dojo note add --title "Patience" -c philosophy --mood 4 "Progress is slow, keep showing up"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(noteDate)
		if err != nil {
			return err
		}
		category, err := models.ParseNoteCategory(noteCategory)
		if err != nil {
			return err
		}
		n := models.NewNote(date, category, noteTitle, strings.Join(args, " ")).
			WithTags(models.ParseTags(noteTags)...)
		if noteMood != 0 {
			n.WithMood(noteMood)
		}
		if err := jrnl.AddNote(n); err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
		color.Green("✓ Noted %s on %s", n.DisplayTitle(), n.Date)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", faint.Sprint(n.ID.String()[:8]))
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var category models.NoteCategory
		if noteCategory != "" {
			c, err := models.ParseNoteCategory(noteCategory)
			if err != nil {
				return err
			}
			category = c
		}
		notes, err := jrnl.Notes(category)
		if err != nil {
			return err
		}
		if noteLimit > 0 && len(notes) > noteLimit {
			notes = notes[:noteLimit]
		}
		return printNotes(cmd, notes)
	},
}

var noteSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes",
	Long:  `Find notes whose title, text, or tags contain the query, ignoring case.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := jrnl.SearchNotes(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printNotes(cmd, notes)
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := jrnl.Note(args[0])
		if err != nil {
			return err
		}
		if !noteYes && !confirm(cmd.InOrStdin(), os.Stderr, fmt.Sprintf("Delete note %q? [y/N] ", n.DisplayTitle()), "y", "yes") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		if _, err := jrnl.DeleteNote(n.ID.String()); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		color.Yellow("✗ Deleted note %s", n.DisplayTitle())
		return nil
	},
}

func printNotes(cmd *cobra.Command, notes []*models.Note) error {
	if noteJSON {
		if notes == nil {
			notes = []*models.Note{}
		}
		return writeJSON(cmd, notes)
	}
	out := cmd.OutOrStdout()
	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes found.")
		return nil
	}
	for _, n := range notes {
		printNote(out, n)
	}
	return nil
}

func printNote(out io.Writer, n *models.Note) {
	meta := fmt.Sprintf("%s • %s", n.Date, n.Category)
	if n.Mood != nil {
		meta += fmt.Sprintf(" • mood %d/%d", *n.Mood, models.MaxMood)
	}
	fmt.Fprintf(out, "%s %s  %s\n",
		faint.Sprint(n.ID.String()[:8]),
		color.New(color.Bold).Sprint(n.DisplayTitle()),
		faint.Sprint(meta))
	if n.Text != "" {
		fmt.Fprintf(out, "  %s\n", n.Text)
	}
	if len(n.Tags) > 0 {
		fmt.Fprintf(out, "  %s\n", color.CyanString("#%s", strings.Join(n.Tags, " #")))
	}
}

func init() {
	noteAddCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
	noteAddCmd.Flags().StringVarP(&noteCategory, "category", "c", "", "training or philosophy (default training)")
	noteAddCmd.Flags().StringVar(&noteTags, "tags", "", "comma-separated tags")
	noteAddCmd.Flags().IntVar(&noteMood, "mood", 0, "mood from 1 to 5")
	noteAddCmd.Flags().StringVarP(&noteDate, "date", "d", "", "date (YYYY-MM-DD, yesterday, -N; default today)")

	noteListCmd.Flags().StringVarP(&noteCategory, "category", "c", "", "only show this category")
	noteListCmd.Flags().IntVarP(&noteLimit, "limit", "n", 20, "number of notes to show")
	for _, c := range []*cobra.Command{noteListCmd, noteSearchCmd} {
		c.Flags().BoolVar(&noteJSON, "json", false, "output JSON")
	}
	noteDeleteCmd.Flags().BoolVarP(&noteYes, "yes", "y", false, "skip confirmation")

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteSearchCmd)
	noteCmd.AddCommand(noteDeleteCmd)
	rootCmd.AddCommand(noteCmd)
}
