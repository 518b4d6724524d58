package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const maxConflictRetries = 10

// BadgerSeenCache is an on-disk SeenCache for single-process runs without
// Redis.
type BadgerSeenCache struct {
	db     *badger.DB
	prefix string
	ttl    time.Duration
}

// OpenBadgerSeenCache opens (or creates) a cache under dir. An empty dir keeps
// the cache in memory. A zero ttl keeps keys forever.
func OpenBadgerSeenCache(dir, prefix string, ttl time.Duration, logger *zap.Logger) (*BadgerSeenCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{logger.Named("badger").Sugar()}).
		WithNumVersionsToKeep(1)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create seen cache dir %s: %w", dir, err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open seen cache: %w", err)
	}
	return &BadgerSeenCache{db: db, prefix: prefix, ttl: ttl}, nil
}

// Seen reports whether path was marked and has not expired.
func (c *BadgerSeenCache) Seen(_ context.Context, path string) (bool, error) {
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Mark records path, returning false when it was already present.
func (c *BadgerSeenCache) Mark(_ context.Context, path string) (bool, error) {
	key := c.key(path)
	for range maxConflictRetries {
		added := false
		err := c.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			entry := badger.NewEntry(key, []byte{1})
			if c.ttl > 0 {
				entry = entry.WithTTL(c.ttl)
			}
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
			added = true
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return added, err
	}
	return false, fmt.Errorf("mark %s: transaction conflict not resolved after %d retries", path, maxConflictRetries)
}

// Close releases the database.
func (c *BadgerSeenCache) Close() error {
	return c.db.Close()
}

func (c *BadgerSeenCache) key(path string) []byte {
	return []byte(c.prefix + path)
}

// badgerLogger routes badger's printf logging into zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
