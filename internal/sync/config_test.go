// ABOUTME: Tests for sync configuration management.
// ABOUTME: Verifies LoadConfig, SaveConfig, IsConfigured, and device ID generation.

package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setConfigHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origXDGConfig := os.Getenv("XDG_CONFIG_HOME")
	t.Cleanup(func() {
		if origXDGConfig != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDGConfig)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	return tmpDir
}

func TestLoadConfigNoFile(t *testing.T) {
	setConfigHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, "", cfg.UserID)
	assert.Len(t, cfg.DeviceID, 26, "fresh config gets a device ID")
	assert.False(t, cfg.IsConfigured())
}

func TestSaveAndLoadConfig(t *testing.T) {
	setConfigHome(t)

	cfg := &Config{
		Host:      "charm.example.com",
		UserID:    "test-user-123",
		DeviceID:  "device-123",
		LinkedAt:  time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		LastSync:  time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		SyncCount: 4,
	}
	require.NoError(t, SaveConfig(cfg))
	assert.FileExists(t, ConfigPath())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.Host, loaded.Host)
	assert.Equal(t, cfg.UserID, loaded.UserID)
	assert.Equal(t, cfg.DeviceID, loaded.DeviceID)
	assert.True(t, cfg.LinkedAt.Equal(loaded.LinkedAt))
	assert.True(t, cfg.LastSync.Equal(loaded.LastSync))
	assert.Equal(t, 4, loaded.SyncCount)
}

func TestLoadConfigFillsDeviceID(t *testing.T) {
	setConfigHome(t)

	require.NoError(t, os.MkdirAll(ConfigDir(), 0750))
	data := `{"host":"charm.example.com","user_id":"test-user"}`
	require.NoError(t, os.WriteFile(ConfigPath(), []byte(data), 0600))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.DeviceID)
	assert.True(t, loaded.IsConfigured())
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	setConfigHome(t)

	require.NoError(t, os.MkdirAll(ConfigDir(), 0750))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("{"), 0600))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigDirXDG(t *testing.T) {
	tmpDir := setConfigHome(t)
	assert.Equal(t, filepath.Join(tmpDir, "dojo"), ConfigDir())
	assert.Equal(t, filepath.Join(tmpDir, "dojo", "sync.json"), ConfigPath())
}

func TestConfigDirFallback(t *testing.T) {
	origXDGConfig := os.Getenv("XDG_CONFIG_HOME")
	t.Cleanup(func() {
		if origXDGConfig != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDGConfig)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	_ = os.Unsetenv("XDG_CONFIG_HOME")

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "dojo"), ConfigDir())
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"linked", Config{Host: "charm.example.com", UserID: "u"}, true},
		{"missing host", Config{UserID: "u"}, false},
		{"missing user", Config{Host: "charm.example.com"}, false},
		{"empty", Config{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsConfigured())
		})
	}
}

func TestGenerateDeviceID(t *testing.T) {
	deviceID1 := GenerateDeviceID()
	deviceID2 := GenerateDeviceID()

	assert.NotEqual(t, deviceID1, deviceID2)
	// ULID format
	assert.Len(t, deviceID1, 26)
	assert.Len(t, deviceID2, 26)
}

func TestClearConfig(t *testing.T) {
	setConfigHome(t)

	require.NoError(t, SaveConfig(&Config{Host: "charm.example.com", UserID: "test-user"}))
	assert.FileExists(t, ConfigPath())

	require.NoError(t, ClearConfig())
	assert.NoFileExists(t, ConfigPath())
}

func TestClearConfigNoFile(t *testing.T) {
	setConfigHome(t)
	require.NoError(t, ClearConfig())
}
