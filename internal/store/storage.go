// ABOUTME: Key-value storage contract the note store persists through.
// ABOUTME: Includes an in-memory implementation with fault injection for tests.

package store

import (
	"context"
	"errors"
	"sync"
)

// Storage is a fallible text key-value slot store.
type Storage interface {
	// Get returns found=false (and no error) when the key has never been set.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Updater is implemented by backends that can run a read-modify-write of one key
// inside a single transaction. fn may be called more than once if the backend retries.
type Updater interface {
	Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error
}

// ErrInjected is returned by MemoryStorage when a failure has been armed.
var ErrInjected = errors.New("injected storage failure")

// MemoryStorage keeps values in a map. It deliberately does not implement Updater.
type MemoryStorage struct {
	mu       sync.Mutex
	values   map[string]string
	failGet  error
	failSet  error
	getCalls int
	setCalls int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failSet != nil {
		return m.failSet
	}
	m.values[key] = value
	return nil
}

// FailGets makes every Get return err until cleared with nil.
func (m *MemoryStorage) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet = err
}

// FailSets makes every Set return err until cleared with nil.
func (m *MemoryStorage) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}

// Raw returns the stored text for key, bypassing fault injection.
func (m *MemoryStorage) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Put stores text for key, bypassing fault injection.
func (m *MemoryStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Calls reports how many Get and Set calls have been made.
func (m *MemoryStorage) Calls() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls, m.setCalls
}
