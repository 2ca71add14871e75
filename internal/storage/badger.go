// ABOUTME: Embedded Badger key-value store backing the badger backend.
// ABOUTME: Runs on disk under the data directory, or fully in memory for tests.
package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
)

// BadgerKV implements KV on a local Badger database.
type BadgerKV struct {
	db *badger.DB
}

// Compile-time check that BadgerKV implements KV.
var _ KV = (*BadgerKV)(nil)

// OpenBadger opens a Badger database in dir. An empty dir opens an in-memory store.
// Badger's internal logging is routed to logger at debug level; nil silences it.
func OpenBadger(dir string, logger *log.Logger) (*BadgerKV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.WithPrefix("badger")})
	}
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

// OpenBadgerStore opens a Badger-backed Repository.
func OpenBadgerStore(dir string, logger *log.Logger) (*KVStore, error) {
	kv, err := OpenBadger(dir, logger)
	if err != nil {
		return nil, err
	}
	return NewKVStore(kv), nil
}

// Get returns the value stored under key.
func (b *BadgerKV) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(string(key))
	}
	return val, err
}

// Set stores value under key.
func (b *BadgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes key.
func (b *BadgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Keys returns every key starting with prefix in sorted order.
func (b *BadgerKV) Keys(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Close closes the database.
func (b *BadgerKV) Close() error {
	return b.db.Close()
}

// badgerLogger adapts a charm logger to badger.Logger. Badger is chatty, so
// everything below errors is demoted to debug.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.l.Debugf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.l.Debugf(format, args...) }
