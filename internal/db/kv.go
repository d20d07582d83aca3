// ABOUTME: Key-value storage over the SQLite kv table.
// ABOUTME: Implements the note store's Storage and Updater contracts.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type KV struct {
	db  *sql.DB
	now func() time.Time
}

// NewKV wraps an open database. The schema must already exist (see Open).
func NewKV(db *sql.DB) *KV {
	return &KV{db: db, now: time.Now}
}

// OpenKV opens the database at path and wraps it.
func OpenKV(path string) (*KV, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewKV(db), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, k.db, key)
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return k.set(ctx, k.db, key, value)
}

// Update runs fn and the write inside one transaction holding the write lock.
func (k *KV) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, found, err := get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if err := k.set(ctx, tx, key, next); err != nil {
		return err
	}
	return tx.Commit()
}

func (k *KV) Close() error {
	return k.db.Close()
}

func get(ctx context.Context, q queryer, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %q: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) set(ctx context.Context, q queryer, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, k.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}
