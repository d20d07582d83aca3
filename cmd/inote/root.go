// ABOUTME: Root command wiring configuration, logging and the storage backend.
// ABOUTME: Every subcommand runs against the note store opened here.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/inote/internal/backend"
	"github.com/harper/inote/internal/config"
	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/store"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	backendName string
	storageKey  string

	cfg       *config.Config
	logger    *log.Logger
	conn      *backend.Backend
	noteStore *store.Store
)

// openBackend is replaced in tests.
var openBackend = backend.Open

var rootCmd = &cobra.Command{
	Use:   "inote",
	Short: "Styled notes from the terminal",
	Long: `inote keeps short styled notes: a title, markdown content, a category,
a priority, tags, colors, a font size and image references.

Notes live in a single collection in the configured backend (charm cloud,
badger, sqlite, postgres or memory).`,
	Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		_ = teardown()
	}
	return err
}

func setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if backendName != "" {
		loaded.Backend = backendName
	}
	if storageKey != "" {
		loaded.StorageKey = storageKey
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(cfg.LogLevel)

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	conn = b
	noteStore = b.NewStore(cfg, logger)
	return nil
}

func teardown() error {
	if conn == nil {
		return nil
	}
	err := conn.Close()
	conn = nil
	noteStore = nil
	return err
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: "inote"})
	switch strings.ToLower(level) {
	case "debug":
		l.SetLevel(log.DebugLevel)
	case "info":
		l.SetLevel(log.InfoLevel)
	case "error":
		l.SetLevel(log.ErrorLevel)
	default:
		l.SetLevel(log.WarnLevel)
	}
	return l
}

// findNote resolves an exact id first, then a prefix of at least six characters.
func findNote(ctx context.Context, id string) (models.Note, error) {
	note, err := noteStore.Get(ctx, id)
	if errors.Is(err, store.ErrNoteNotFound) && len(id) >= 6 {
		note, err = noteStore.GetByPrefix(ctx, id)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "storage backend (charm|badger|sqlite|postgres|memory)")
	rootCmd.PersistentFlags().StringVar(&storageKey, "key", "", "storage slot holding the notes")
}
