// ABOUTME: Dojo configuration management with backend selection.
// ABOUTME: Handles settings, rules overrides, log level, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dojo/internal/charm"
	"github.com/harperreed/dojo/internal/rules"
	"github.com/harperreed/dojo/internal/storage"
)

// Supported storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"
)

// Config stores dojo configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "badger", or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts dojo.db here, Badger uses a badger/ subdirectory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/dojo.
	DataDir string `json:"data_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty"`

	// CharmHost overrides the Charm Cloud server for the charm backend.
	CharmHost string `json:"charm_host,omitempty"`

	// AutoSync controls syncing after every write on the charm backend. Defaults to true.
	AutoSync *bool `json:"auto_sync,omitempty"`

	// Rules overrides individual gameplay constants.
	Rules *rules.Overrides `json:"rules,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetCharmHost returns the Charm Cloud host.
func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return charm.DefaultHost
	}
	return c.CharmHost
}

// GetAutoSync reports whether charm writes sync immediately.
func (c *Config) GetAutoSync() bool {
	return c.AutoSync == nil || *c.AutoSync
}

// GetLogLevel parses LogLevel, defaulting to warn.
func (c *Config) GetLogLevel() (log.Level, error) {
	if c.LogLevel == "" {
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// RulesTable returns the default rules with any configured overrides applied.
func (c *Config) RulesTable() (rules.Table, error) {
	return rules.Default().Apply(c.Rules)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(logger *log.Logger) (storage.Repository, error) {
	return c.OpenBackend(c.GetBackend(), logger)
}

// OpenBackend opens the named backend using this config's data directory.
func (c *Config) OpenBackend(backend string, logger *log.Logger) (storage.Repository, error) {
	dataDir := c.GetDataDir()

	var (
		repo storage.Repository
		err  error
	)
	switch backend {
	case BackendSQLite:
		repo, err = storage.Open(filepath.Join(dataDir, "dojo.db"))
	case BackendBadger:
		repo, err = storage.OpenBadgerStore(filepath.Join(dataDir, "badger"), logger)
	case BackendCharm:
		repo, _, err = charm.OpenStore(charm.Options{
			Host:     c.GetCharmHost(),
			AutoSync: c.GetAutoSync(),
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backend, err)
	}
	return repo, nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "dojo", "config.json")
}

// Load reads config from disk. Invalid rules overrides are rejected here.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.RulesTable(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
