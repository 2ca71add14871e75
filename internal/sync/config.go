// ABOUTME: Sync state for the Charm Cloud backend.
// ABOUTME: Stores host, linked account, device ID, and the last successful sync.
package sync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// Config stores sync settings.
type Config struct {
	Host      string    `json:"host"`
	UserID    string    `json:"user_id"`
	DeviceID  string    `json:"device_id"`
	LinkedAt  time.Time `json:"linked_at"`
	LastSync  time.Time `json:"last_sync"`
	SyncCount int       `json:"sync_count,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// ConfigDir returns the XDG config directory for dojo.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dojo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dojo")
}

// ConfigPath returns the path to the sync config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "sync.json")
}

// LoadConfig loads sync config from disk. A missing file yields a fresh
// config with a new device ID.
func LoadConfig() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{DeviceID: GenerateDeviceID()}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = GenerateDeviceID()
	}
	return &cfg, nil
}

// SaveConfig persists sync config to disk.
func SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(), 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0600)
}

// IsConfigured returns true once this device has been linked to an account.
func (c *Config) IsConfigured() bool {
	return c.Host != "" && c.UserID != ""
}

// GenerateDeviceID creates a new unique device ID.
func GenerateDeviceID() string {
	return ulid.Make().String()
}

// ClearConfig removes sync config file.
func ClearConfig() error {
	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}
