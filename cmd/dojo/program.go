// ABOUTME: CLI commands for managing workout programs.
// ABOUTME: Supports add (from JSON/YAML files), list, show, delete, and the exercise catalog.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/dojo/internal/models"
)

var programFile string

var programCmd = &cobra.Command{
	Use:     "program",
	Aliases: []string{"p"},
	Short:   "Manage workout programs",
	Long: `Manage workout programs.

A program is an ordered list of exercises run in one of two modes:

  series   each exercise is done for all of its sets before the next one
  sets     the whole list is one round, repeated for the given rounds

PROGRAM FILE (YAML or JSON):

  name: Tabata legs
  mode: sets
  rounds: 4
  rest_between_rounds_sec: 30
  category: [HIIT]
  exercises:
    - exercise_id: ex-squat
      target: {time_sec: 20}
      rest_sec: 10
    - exercise_id: ex-lunge
      target: {reps: 12}

A file may also hold a list of programs.

COMMANDS:

  add        Add programs from a file
  list       List programs
  show       Show a program's exercises
  delete     Delete a program
  exercises  List the exercise catalog`,
}

var programAddCmd = &cobra.Command{
	Use:   "add -f <file>",
	Short: "Add programs from a YAML or JSON file",
	Long: `Add one or more programs from a YAML or JSON file.

Examples:
  dojo program add -f legs.yaml
  dojo program add -f programs.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if programFile == "" {
			return fmt.Errorf("--file is required")
		}
		data, err := os.ReadFile(programFile)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		programs, err := parsePrograms(programFile, data)
		if err != nil {
			return err
		}

		for _, p := range programs {
			if err := jrnl.AddProgram(p, catalog); err != nil {
				return fmt.Errorf("failed to add %q: %w", p.Name, err)
			}
			color.Green("✓ Added program %s", p.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s, %d exercises\n",
				faint.Sprint(p.ID.String()[:8]), p.Mode, len(p.Exercises))
		}
		return nil
	},
}

var programListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List programs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		programs, err := jrnl.Programs()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(programs) == 0 {
			fmt.Fprintln(out, "No programs found.")
			return nil
		}
		for _, p := range programs {
			extra := ""
			if p.EstDurationMin > 0 {
				extra = faint.Sprintf(" ~%d min", p.EstDurationMin)
			}
			if len(p.Category) > 0 {
				extra += faint.Sprintf(" [%s]", strings.Join(p.Category, ", "))
			}
			fmt.Fprintf(out, "%s %s %-6s %2d exercises%s\n",
				faint.Sprint(p.ID.String()[:8]),
				padRight(truncate(p.Name, 24), 24),
				p.Mode,
				len(p.Exercises),
				extra)
		}
		return nil
	},
}

var programShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := jrnl.Program(args[0])
		if err != nil {
			return fmt.Errorf("program not found: %s", args[0])
		}
		printProgram(cmd, p)
		return nil
	},
}

var programDeleteCmd = &cobra.Command{
	Use:     "delete <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete a program",
	Long: `Delete a program by ID prefix or name.

Sessions already logged with this program are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := jrnl.DeleteProgram(args[0])
		if err != nil {
			return fmt.Errorf("failed to delete program: %w", err)
		}
		color.Yellow("✗ Deleted program %s", p.Name)
		return nil
	},
}

var programExercisesCmd = &cobra.Command{
	Use:         "exercises",
	Short:       "List the exercise catalog",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, e := range catalog.Sorted() {
			fmt.Fprintf(out, "%s %s %s\n",
				padRight(e.ID, 22),
				padRight(e.Name, 18),
				faint.Sprint(strings.Join(e.Equipment, ", ")))
		}
		return nil
	},
}

func printProgram(cmd *cobra.Command, p *models.Program) {
	out := cmd.OutOrStdout()
	tbl := jrnl.Rules()

	color.New(color.Bold).Fprintf(out, "%s", p.Name)
	fmt.Fprintf(out, " %s\n", faint.Sprint(p.ID.String()[:8]))
	fmt.Fprintf(out, "  Mode: %s\n", p.Mode)
	if p.Mode == models.ModeSets {
		fmt.Fprintf(out, "  Rounds: %d, rest between rounds %s\n", p.RoundCount(), formatSeconds(p.RoundRest(tbl.DefaultRoundRestSec)))
	}
	if len(p.Category) > 0 {
		fmt.Fprintf(out, "  Category: %s\n", strings.Join(p.Category, ", "))
	}
	if len(p.Equipment) > 0 {
		fmt.Fprintf(out, "  Equipment: %s\n", strings.Join(p.Equipment, ", "))
	}
	if p.EstDurationMin > 0 {
		fmt.Fprintf(out, "  Duration: ~%d min\n", p.EstDurationMin)
	}
	if p.Intensity > 0 {
		fmt.Fprintf(out, "  Intensity: %s\n", strings.Repeat("●", p.Intensity)+strings.Repeat("○", 5-p.Intensity))
	}
	fmt.Fprintln(out)

	for i, e := range p.Exercises {
		sets := ""
		if p.Mode == models.ModeSeries {
			sets = fmt.Sprintf("%d x ", e.SetCount())
		}
		fmt.Fprintf(out, "  %d. %s %s%s, rest %s\n",
			i+1,
			padRight(catalog.Name(e.ExerciseID), 18),
			sets,
			describeTarget(e),
			formatSeconds(e.Rest(tbl.DefaultExerciseRestSec)))
	}
}

// parsePrograms decodes a single program or a list of programs.
// Files ending in .json are decoded as JSON, everything else as YAML.
func parsePrograms(name string, data []byte) ([]*models.Program, error) {
	var programs []*models.Program

	if strings.EqualFold(filepath.Ext(name), ".json") {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &programs); err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
		} else {
			var p models.Program
			if err := json.Unmarshal(trimmed, &p); err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			programs = append(programs, &p)
		}
	} else {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("parse %s: empty document", name)
		}
		root := doc.Content[0]
		if root.Kind == yaml.SequenceNode {
			if err := root.Decode(&programs); err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
		} else {
			var p models.Program
			if err := root.Decode(&p); err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			programs = append(programs, &p)
		}
	}

	if len(programs) == 0 {
		return nil, fmt.Errorf("parse %s: no programs", name)
	}
	for _, p := range programs {
		if p == nil {
			return nil, fmt.Errorf("parse %s: empty program entry", name)
		}
		p.Mode = models.Mode(strings.ToLower(string(p.Mode)))
		if p.Mode == "" {
			p.Mode = models.ModeSeries
		}
	}
	return programs, nil
}

func init() {
	programAddCmd.Flags().StringVarP(&programFile, "file", "f", "", "program file (YAML or JSON)")

	programCmd.AddCommand(programAddCmd)
	programCmd.AddCommand(programListCmd)
	programCmd.AddCommand(programShowCmd)
	programCmd.AddCommand(programDeleteCmd)
	programCmd.AddCommand(programExercisesCmd)
	rootCmd.AddCommand(programCmd)
}
