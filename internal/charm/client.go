// ABOUTME: Charm KV storage backend using the transactional Do API.
// ABOUTME: Short-lived connections avoid lock contention with other inote processes.

package charm

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	charmproto "github.com/charmbracelet/charm/proto"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
	"github.com/harper/inote/internal/config"
)

// DefaultDBName is the charm kv database used when none is configured.
const DefaultDBName = "inote"

// Client is a store.Storage and store.Updater backed by charm kv.
// It does NOT hold a persistent connection: each operation opens the database,
// performs the operation, and closes it.
type Client struct {
	dbName         string
	autoSync       bool
	staleThreshold time.Duration
	logger         *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDBName sets the database name.
func WithDBName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.dbName = name
		}
	}
}

// WithAutoSync enables or disables auto-sync after writes.
func WithAutoSync(enabled bool) Option {
	return func(c *Client) {
		c.autoSync = enabled
	}
}

// WithStaleThreshold sets how old the last sync may be before reads pull first.
func WithStaleThreshold(d time.Duration) Option {
	return func(c *Client) {
		c.staleThreshold = d
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client from the charm section of the config.
func NewClient(cfg config.CharmConfig, opts ...Option) (*Client, error) {
	if cfg.Host != "" {
		if err := os.Setenv("CHARM_HOST", cfg.Host); err != nil {
			return nil, err
		}
	}

	c := &Client{
		dbName:         DefaultDBName,
		autoSync:       cfg.AutoSync,
		staleThreshold: cfg.StaleThreshold,
		logger:         log.New(io.Discard),
	}
	WithDBName(cfg.DBName)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DBName returns the charm kv database name.
func (c *Client) DBName() string {
	return c.dbName
}

// Get retrieves a value by key (read-only, no lock contention).
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := c.SyncIfStale(); err != nil {
		return "", false, err
	}
	var (
		val   []byte
		found bool
	)
	err := kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		var err error
		val, found, err = read(k, key)
		return err
	})
	return string(val), found, err
}

// Set stores a value with the given key.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.do(func(k *kv.KV) error {
		return k.Set([]byte(key), []byte(value))
	})
}

// Update runs a read-modify-write of key while holding the kv write lock.
func (c *Client) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.SyncIfStale(); err != nil {
		return err
	}
	return c.do(func(k *kv.KV) error {
		val, found, err := read(k, key)
		if err != nil {
			return err
		}
		next, err := fn(string(val), found)
		if err != nil {
			return err
		}
		return k.Set([]byte(key), []byte(next))
	})
}

// do executes fn with write access and syncs afterwards when auto-sync is on.
func (c *Client) do(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

func read(k *kv.KV, key string) ([]byte, bool, error) {
	val, err := k.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Sync triggers a manual sync with the charm server.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// LastSyncTime returns the timestamp of the last sync operation.
func (c *Client) LastSyncTime() time.Time {
	var lastSync time.Time
	_ = kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		lastSync = k.LastSyncTime()
		return nil
	})
	return lastSync
}

// IsStale checks if the data is stale based on the configured threshold.
func (c *Client) IsStale() bool {
	if c.staleThreshold == 0 {
		return false
	}
	var isStale bool
	_ = kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		isStale = k.IsStale(c.staleThreshold)
		return nil
	})
	return isStale
}

// SyncIfStale syncs with the charm server if data is stale.
func (c *Client) SyncIfStale() error {
	if !c.IsStale() {
		return nil
	}
	c.logger.Info("data stale, syncing", "threshold", c.staleThreshold)
	return c.Sync()
}

// Reset clears all local data (nuclear option).
func (c *Client) Reset() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Reset()
	})
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", err
	}
	return cc.ID()
}

// User returns the current charm user information.
func (c *Client) User() (*charmproto.User, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return nil, err
	}
	return cc.Bio()
}

// Link initiates the charm linking process for this device.
func (c *Client) Link() error {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return err
	}
	_, err = cc.Bio()
	return err
}

// Unlink removes the charm account association from this device.
func (c *Client) Unlink() error {
	return c.Reset()
}

// ResetLocal drops local sync state; cloud data is re-pulled on next use.
func (c *Client) ResetLocal() error {
	return kv.Reset(c.dbName)
}

// Close is a no-op: with the Do API connections are closed after each operation.
func (c *Client) Close() error {
	return nil
}
