// ABOUTME: Tests for the badger storage backend.
// ABOUTME: Uses in-memory badger and drives it through the note store.

package badgerkv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTest(t)

	_, found, err := s.Get(context.Background(), "notes")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.Set(ctx, "notes", `{"version":1,"notes":[]}`))
	v, found, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"version":1,"notes":[]}`, v)
}

func TestUpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.Set(ctx, "k", "before"))

	boom := errors.New("boom")
	err := s.Update(ctx, "k", func(current string, found bool) (string, error) {
		assert.True(t, found)
		assert.Equal(t, "before", current)
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "before", v)
}

func TestStoresSharingBadgerKeepAllWrites(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.New(s).Save(ctx, *models.NewNote(fmt.Sprintf("note %d", i), ""))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	notes, err := store.New(s).LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, writers)
}

func TestCanceledContext(t *testing.T) {
	s := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
}
