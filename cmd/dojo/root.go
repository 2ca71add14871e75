// ABOUTME: Root Cobra command for the dojo CLI.
// ABOUTME: Loads config, builds the logger, and manages the store via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/charm"
	"github.com/harperreed/dojo/internal/config"
	"github.com/harperreed/dojo/internal/journal"
	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/storage"
)

// skipStore marks commands that manage storage themselves or need none.
const skipStore = "dojo/skip-store"

var version = "dev"

var (
	cfg         *config.Config
	logger      *log.Logger
	repo        storage.Repository
	jrnl        *journal.Service
	charmClient *charm.Client
	catalog     = models.DefaultCatalog()

	debugFlag   bool
	backendFlag string
)

var rootCmd = &cobra.Command{
	Use:     "dojo",
	Short:   "Workout timer, daily log, and XP tracker",
	Version: version,
	Long: `Dojo runs your workout programs, keeps a daily log, and turns consistency into XP.

WHAT IT TRACKS:

  Programs      series (sets per exercise) or sets (rounds) workouts
  Sessions      every completed run with XP, volume, or distance
  Hydration     daily water intake against a goal
  Supplements   a daily checklist of what you take

QUICK START:

  $ dojo program add -f legs.yaml       # Import a program
  $ dojo workout run legs               # Run it with a live countdown
  $ dojo water add 500                  # Log a glass of water
  $ dojo supplement take creatine       # Tick a supplement off
  $ dojo level                          # See your level and XP

STORAGE:

  SQLite by default at ~/.local/share/dojo/dojo.db. Switch backends in
  ~/.config/dojo/config.json ("sqlite", "badger", or "charm").

SYNC:

  With the charm backend, data syncs across devices through Charm Cloud.

  $ dojo sync link      # Link device to your Charm account
  $ dojo sync status    # Check sync status

MCP INTEGRATION:

  Run 'dojo mcp' to start the Model Context Protocol server for AI assistants:

  {
    "mcpServers": {
      "dojo": { "command": "dojo", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		if cmd.Annotations[skipStore] != "" || cmd.Name() == "help" {
			return nil
		}
		return openStore()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

// Execute runs the root command. The store is closed even when a command fails,
// since cobra skips PersistentPostRunE on error.
func Execute() error {
	err := rootCmd.Execute()
	if closeErr := closeStore(); err == nil {
		err = closeErr
	}
	return err
}

// setup loads config and builds the logger.
func setup() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}

	level, err := cfg.GetLogLevel()
	if err != nil {
		return err
	}
	if debugFlag {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "dojo",
		Level:           level,
		ReportTimestamp: debugFlag,
	})
	return nil
}

// openStore opens the configured backend and the journal over it.
func openStore() error {
	if err := closeStore(); err != nil {
		logger.Warn("closing previous store failed", "err", err)
	}
	tbl, err := cfg.RulesTable()
	if err != nil {
		return err
	}

	if cfg.GetBackend() == config.BackendCharm {
		store, client, err := charm.OpenStore(charm.Options{
			Host:     cfg.GetCharmHost(),
			AutoSync: cfg.GetAutoSync(),
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("failed to open charm store: %w", err)
		}
		repo, charmClient = store, client
	} else {
		repo, err = cfg.OpenStorage(logger)
		if err != nil {
			return err
		}
	}

	logger.Debug("store opened", "backend", cfg.GetBackend())
	jrnl = journal.New(repo, journal.WithRules(tbl), journal.WithLogger(logger))
	return nil
}

func closeStore() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo, jrnl, charmClient = nil, nil, nil
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend override (sqlite, badger, charm)")
}
