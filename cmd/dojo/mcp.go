// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server so AI assistants can read and log workouts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "dojo": {
        "command": "dojo",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_level           Current level and today's XP
  log_water           Add or remove hydration
  toggle_supplement   Tick a supplement on or off
  list_supplements    Supplements with today's intake
  add_supplement      Create a supplement
  delete_supplement   Delete a supplement and its intake
  list_programs       Workout programs
  get_program         One program with its exercises
  create_program      Create a program
  delete_program      Delete a program
  list_days           Recent days with XP
  get_day             One day in detail
  weekly_stats        The last seven days
  list_exercises      The exercise catalog

AVAILABLE RESOURCES:

  dojo://today      Today's summary
  dojo://level      Level and XP progress
  dojo://programs   Every program`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(jrnl, catalog, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
