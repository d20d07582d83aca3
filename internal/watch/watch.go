// ABOUTME: Change notification for live views over a storage backend.
// ABOUTME: Uses fsnotify on file-backed stores and falls back to polling otherwise.

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce = 100 * time.Millisecond
	DefaultInterval = 2 * time.Second
)

// Config selects what to watch. With no Paths the watcher polls every Interval.
type Config struct {
	Paths    []string
	Match    func(path string) bool // nil matches every event
	Debounce time.Duration
	Interval time.Duration
	Logger   *log.Logger
}

func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// Run calls onChange once immediately and again after every settled burst of changes,
// until ctx is cancelled (nil) or onChange returns an error.
func Run(ctx context.Context, cfg Config, onChange func(context.Context) error) error {
	cfg.applyDefaults()
	if err := onChange(ctx); err != nil {
		return err
	}
	if len(cfg.Paths) == 0 {
		return poll(ctx, cfg, onChange)
	}
	return notify(ctx, cfg, onChange)
}

func poll(ctx context.Context, cfg Config, onChange func(context.Context) error) error {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := onChange(ctx); err != nil {
				return err
			}
		}
	}
}

func notify(ctx context.Context, cfg Config, onChange func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range cfg.Paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	timer := time.NewTimer(cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			if !relevant(event, cfg.Match) {
				continue
			}
			cfg.Logger.Debug("storage changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(cfg.Debounce)

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				return err
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			cfg.Logger.Warn("fsnotify error", "err", wErr)
		}
	}
}

func relevant(event fsnotify.Event, match func(string) bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return match == nil || match(event.Name)
}
