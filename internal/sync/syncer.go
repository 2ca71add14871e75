// ABOUTME: Syncer drives Charm Cloud sync for the charm storage backend.
// ABOUTME: Records link state and sync history in the sync config file.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNotLinked is returned when an operation needs a linked account.
var ErrNotLinked = errors.New("device not linked - run 'dojo sync link'")

// Remote is the cloud side of a sync. charm.Client implements it.
type Remote interface {
	ID() (string, error)
	Sync() error
	Reset() error
	IsReadOnly() bool
}

// Status summarises the sync state of this device.
type Status struct {
	Linked    bool      `json:"linked"`
	Host      string    `json:"host"`
	UserID    string    `json:"user_id,omitempty"`
	DeviceID  string    `json:"device_id"`
	ReadOnly  bool      `json:"read_only"`
	LinkedAt  time.Time `json:"linked_at"`
	LastSync  time.Time `json:"last_sync"`
	SyncCount int       `json:"sync_count"`
	LastError string    `json:"last_error,omitempty"`
}

// Syncer manages sync operations for dojo data.
type Syncer struct {
	config *Config
	remote Remote
	host   string
	logger *log.Logger
	save   func(*Config) error
	now    func() time.Time
}

// NewSyncer creates a Syncer for remote at host.
func NewSyncer(cfg *Config, remote Remote, host string, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = GenerateDeviceID()
	}
	return &Syncer{
		config: cfg,
		remote: remote,
		host:   host,
		logger: logger,
		save:   SaveConfig,
		now:    time.Now,
	}
}

// Config returns the sync config the Syncer updates.
func (s *Syncer) Config() *Config {
	return s.config
}

// Link records the Charm account this device is linked to and syncs once.
func (s *Syncer) Link(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := s.remote.ID()
	if err != nil {
		return "", fmt.Errorf("get charm id: %w", err)
	}
	s.config.Host = s.host
	s.config.UserID = id
	s.config.LinkedAt = s.now()
	if err := s.save(s.config); err != nil {
		return "", fmt.Errorf("save sync config: %w", err)
	}
	s.logger.Info("device linked", "user", id, "device", s.config.DeviceID)
	return id, s.Sync(ctx)
}

// Unlink forgets the linked account. Local data is untouched.
func (s *Syncer) Unlink() error {
	s.config.UserID = ""
	s.config.LinkedAt = time.Time{}
	s.config.LastSync = time.Time{}
	s.config.SyncCount = 0
	s.config.LastError = ""
	return s.save(s.config)
}

// Sync pushes local changes and pulls remote updates.
func (s *Syncer) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.config.IsConfigured() {
		return ErrNotLinked
	}
	if s.remote.IsReadOnly() {
		s.logger.Warn("skipping sync: database is read-only")
		return nil
	}

	if err := s.remote.Sync(); err != nil {
		s.config.LastError = err.Error()
		if saveErr := s.save(s.config); saveErr != nil {
			s.logger.Warn("save sync config failed", "err", saveErr)
		}
		return fmt.Errorf("sync: %w", err)
	}

	s.config.LastSync = s.now()
	s.config.SyncCount++
	s.config.LastError = ""
	if err := s.save(s.config); err != nil {
		return fmt.Errorf("save sync config: %w", err)
	}
	s.logger.Debug("sync complete", "count", s.config.SyncCount)
	return nil
}

// Reset discards local data and rebuilds it from the cloud.
func (s *Syncer) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.config.IsConfigured() {
		return ErrNotLinked
	}
	if err := s.remote.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.config.LastSync = s.now()
	return s.save(s.config)
}

// Status returns the current sync status.
func (s *Syncer) Status() Status {
	return Status{
		Linked:    s.config.IsConfigured(),
		Host:      s.host,
		UserID:    s.config.UserID,
		DeviceID:  s.config.DeviceID,
		ReadOnly:  s.remote.IsReadOnly(),
		LinkedAt:  s.config.LinkedAt,
		LastSync:  s.config.LastSync,
		SyncCount: s.config.SyncCount,
		LastError: s.config.LastError,
	}
}
