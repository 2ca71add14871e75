// ABOUTME: Charm KV client wrapper used as the key-value layer of the charm backend.
// ABOUTME: Provides read-only protection and automatic cloud sync after writes.
package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/dojo/internal/storage"
)

const (
	// DefaultDBName is the Charm KV database holding dojo data.
	DefaultDBName = "dojo"
	// DefaultHost is the Charm Cloud server used when none is configured.
	DefaultHost = "charm.2389.dev"
)

// ErrReadOnly is returned for writes while another process holds the database lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// Client wraps a Charm KV database. It implements storage.KV.
type Client struct {
	kv       *kv.KV
	autoSync bool
	logger   *log.Logger
	mu       sync.RWMutex
}

// Compile-time check that Client implements storage.KV.
var _ storage.KV = (*Client)(nil)

// Options configures Open.
type Options struct {
	DBName   string
	Host     string
	AutoSync bool
	Logger   *log.Logger
}

// Open opens the Charm KV database and pulls remote data.
func Open(opts Options) (*Client, error) {
	if opts.DBName == "" {
		opts.DBName = DefaultDBName
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", opts.Host); err != nil {
		return nil, fmt.Errorf("set charm host: %w", err)
	}

	db, err := kv.OpenWithDefaultsFallback(opts.DBName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	c := &Client{kv: db, autoSync: opts.AutoSync, logger: opts.Logger}

	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		if err := db.Sync(); err != nil {
			c.logger.Warn("initial charm sync failed", "err", err)
		}
	}
	return c, nil
}

// OpenStore opens the charm backend as a storage.Repository.
func OpenStore(opts Options) (*storage.KVStore, *Client, error) {
	c, err := Open(opts)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewKVStore(c), c, nil
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// Get returns the value stored under key.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return val, err
}

// Set stores a value with the given key.
func (c *Client) Set(key, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Set(key, data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// Delete removes a key.
func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Delete(key); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// Keys returns all keys starting with prefix in sorted order.
func (c *Client) Keys(prefix []byte) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}
	return filterKeys(keys, prefix), nil
}

// syncIfEnabled calls Sync if autoSync is enabled. Callers hold the write lock.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		if err := c.kv.Sync(); err != nil {
			c.logger.Warn("charm sync failed", "err", err)
		}
	}
}

// filterKeys keeps keys starting with prefix and sorts them.
func filterKeys(keys [][]byte, prefix []byte) [][]byte {
	var out [][]byte
	for _, key := range keys {
		if bytes.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}
