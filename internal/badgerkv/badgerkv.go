// ABOUTME: Local badger-backed key-value storage for the note store.
// ABOUTME: Read-modify-write runs in a badger transaction and retries on conflicts.

package badgerkv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
)

// maxConflictRetries bounds Update retries when another writer commits first.
const maxConflictRetries = 16

// Storage is a store.Storage and store.Updater over a badger database.
type Storage struct {
	db     *badger.DB
	logger *log.Logger
}

// Open opens (or creates) a badger database in dir.
func Open(dir string, logger *log.Logger) (*Storage, error) {
	return open(badger.DefaultOptions(dir), logger)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(logger *log.Logger) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *log.Logger) (*Storage, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	db, err := badger.Open(opts.WithLogger(badgerLogger{logger}))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Storage{db: db, logger: logger}, nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		val   []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		val, found, err = read(txn, key)
		return err
	})
	if err != nil {
		return "", false, err
	}
	return string(val), found, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Update runs fn inside a read-write transaction. fn may run again after a conflict.
func (s *Storage) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			val, found, err := read(txn, key)
			if err != nil {
				return err
			}
			next, err := fn(string(val), found)
			if err != nil {
				return err
			}
			return txn.Set([]byte(key), []byte(next))
		})
		if !errors.Is(err, badger.ErrConflict) || attempt == maxConflictRetries {
			return err
		}
		s.logger.Debug("badger transaction conflict, retrying", "key", key, "attempt", attempt)
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func read(txn *badger.Txn, key string) ([]byte, bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// badgerLogger routes badger's internal logging through charmbracelet/log.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.l.Debugf(format, args...) }
