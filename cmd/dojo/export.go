// ABOUTME: CLI commands for exporting and importing dojo data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON/YAML import.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/storage"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export dojo data",
	Long: `Export dojo data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable, also importable)
  markdown   Markdown journal (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include days since this date (markdown only)

EXAMPLES:

  dojo export json                        # Export all data as JSON
  dojo export json -o backup.json         # Save to file
  dojo export yaml                        # Export as YAML
  dojo export markdown --since 2025-01-01 # Journal from 2025 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml", "yml":
			data, err = storage.ExportYAML(repo)
		case "markdown", "md":
			var since *time.Time
			if exportSince != "" {
				t, perr := models.ParseDateKey(exportSince)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = storage.ExportMarkdown(repo, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import dojo data from JSON or YAML",
	Long: `Import dojo data from a JSON or YAML export.

Programs, supplements, and notes with the same ID are overwritten. Days are
replaced wholesale. Intake for unknown supplements is dropped and days left
empty are skipped. A file with invalid sessions or notes is rejected before
anything is written.

EXAMPLES:

  dojo import backup.json
  dojo import backup.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		data, err := storage.Import(repo, raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		fmt.Fprintf(cmd.OutOrStdout(), "  %d programs, %d supplements, %d days, %d notes\n",
			len(data.Programs), len(data.Supplements), len(data.Days), len(data.Notes))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include days since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
