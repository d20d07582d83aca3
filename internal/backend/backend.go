// ABOUTME: Opens the configured storage backend for the note store.
// ABOUTME: Maps config.Backend to charm, badger, sqlite, postgres or in-memory storage.

package backend

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/inote/internal/badgerkv"
	"github.com/harper/inote/internal/charm"
	"github.com/harper/inote/internal/config"
	"github.com/harper/inote/internal/db"
	"github.com/harper/inote/internal/postgres"
	"github.com/harper/inote/internal/store"
	"github.com/harper/inote/internal/watch"
)

// Backend is an open storage backend.
type Backend struct {
	Name    string
	Storage store.Storage

	// Charm is set only for the charm backend; sync commands need it.
	Charm *charm.Client

	// Watch describes how to observe changes made by other processes.
	Watch watch.Config

	closer func() error
}

// Open connects the backend named by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Backend, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &Backend{Name: cfg.Backend, Watch: watch.Config{Logger: logger}}

	switch cfg.Backend {
	case config.BackendCharm:
		client, err := charm.NewClient(cfg.Charm, charm.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to init charm: %w", err)
		}
		b.Storage = client
		b.Charm = client
		b.closer = client.Close

	case config.BackendBadger:
		s, err := badgerkv.Open(cfg.BadgerDir(), logger)
		if err != nil {
			return nil, err
		}
		b.Storage = s
		b.closer = s.Close

	case config.BackendSQLite:
		path := cfg.ResolvedSQLitePath()
		kv, err := db.OpenKV(path)
		if err != nil {
			return nil, err
		}
		b.Storage = kv
		b.closer = kv.Close
		base := filepath.Base(path)
		b.Watch.Paths = []string{filepath.Dir(path)}
		b.Watch.Match = func(p string) bool {
			return strings.HasPrefix(filepath.Base(p), base)
		}

	case config.BackendPostgres:
		s, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b.Storage = s
		b.closer = s.Close

	case config.BackendMemory:
		s, err := badgerkv.OpenInMemory(logger)
		if err != nil {
			return nil, err
		}
		b.Storage = s
		b.closer = s.Close

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}

	logger.Debug("storage backend opened", "backend", cfg.Backend)
	return b, nil
}

// StoreOptions returns the store options implied by cfg.
func StoreOptions(cfg *config.Config, logger *log.Logger) []store.Option {
	return []store.Option{
		store.WithKey(cfg.StorageKey),
		store.WithLogger(logger),
		store.WithFontSizeRange(cfg.FontSizeMin, cfg.FontSizeMax),
	}
}

// NewStore builds a note store over the backend.
func (b *Backend) NewStore(cfg *config.Config, logger *log.Logger) *store.Store {
	return store.New(b.Storage, StoreOptions(cfg, logger)...)
}

// Close releases the backend. It is safe to call more than once.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer()
	b.closer = nil
	return err
}
