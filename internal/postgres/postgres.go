// ABOUTME: Postgres-backed key-value storage for the note store.
// ABOUTME: Queries are built with squirrel; updates hold a per-key advisory lock.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table holds one row per storage slot.
const Table = "inote_kv"

const schema = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Executor is the subset of pgx shared by pools and transactions.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type Querier interface {
	Executor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Storage is a store.Storage and store.Updater over a Postgres table.
type Storage struct {
	q     Querier
	close func()
}

// New wraps an existing querier. Call EnsureSchema before first use.
func New(q Querier) *Storage {
	return &Storage{q: q, close: func() {}}
}

// Connect opens a pool for dsn and creates the table if needed.
func Connect(ctx context.Context, dsn string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Storage{q: pool, close: pool.Close}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", Table, err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, s.q, key)
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	return set(ctx, s.q, key, value)
}

// Update serializes writers of key with a transaction-scoped advisory lock, so the
// first write of a missing key is covered as well as later ones.
func (s *Storage) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := update(ctx, tx, key, fn); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.close()
	return nil
}

func update(ctx context.Context, tx Executor, key string, fn func(string, bool) (string, error)) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock %q: %w", key, err)
	}
	current, found, err := get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	return set(ctx, tx, key, next)
}

func get(ctx context.Context, q Executor, key string) (string, bool, error) {
	query, args, err := psql.Select("value").From(Table).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}
	var value string
	err = q.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %q: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, q Executor, key, value string) error {
	query, args, err := psql.Insert(Table).
		Columns("key", "value", "updated_at").
		Values(key, value, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}
