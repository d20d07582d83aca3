// ABOUTME: Tests for note store persistence behaviour.
// ABOUTME: Covers upsert rules, validation, delete, favorites and write serialization.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/harper/inote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *MemoryStorage, *fakeClock) {
	t.Helper()
	mem := NewMemoryStorage()
	clock := newFakeClock()
	return New(mem, WithClock(clock.Now)), mem, clock
}

func draft(title, content string) models.Note {
	return *models.NewNote(title, content)
}

func TestLoadAllEmpty(t *testing.T) {
	s, _, _ := newTestStore(t)

	notes, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NotNil(t, notes)
}

func TestLoadAllCorruptPayload(t *testing.T) {
	s, mem, _ := newTestStore(t)
	mem.Put(DefaultKey, "{not json")

	_, err := s.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageRead)
}

func TestLoadAllUnreadableMedium(t *testing.T) {
	s, mem, _ := newTestStore(t)
	mem.FailGets(ErrInjected)

	_, err := s.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrStorageRead)
	assert.ErrorIs(t, err, ErrInjected)
}

func TestLoadOrEmptyDegrades(t *testing.T) {
	s, mem, _ := newTestStore(t)
	mem.Put(DefaultKey, "garbage")

	notes := s.LoadOrEmpty(context.Background())
	assert.Empty(t, notes)
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	n := draft("Groceries", "milk, eggs")
	n.Category = "personal"
	n.Priority = "high"
	n.Tags = []string{"todo"}
	n.Images = []string{"file:///a.jpg", "file:///b.jpg"}
	n.BackgroundColor = "#E0F5E9"
	n.FontSize = 20
	n.IsFavorite = true

	before := clock.Now()
	saved, err := s.Save(ctx, n)
	require.NoError(t, err)
	assert.False(t, saved.IsNew())

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	got := notes[0]
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, n.Title, got.Title)
	assert.Equal(t, n.Content, got.Content)
	assert.Equal(t, n.Category, got.Category)
	assert.Equal(t, n.Priority, got.Priority)
	assert.Equal(t, n.Tags, got.Tags)
	assert.Equal(t, n.Images, got.Images)
	assert.Equal(t, n.BackgroundColor, got.BackgroundColor)
	assert.Equal(t, n.TextColor, got.TextColor)
	assert.Equal(t, 20, got.FontSize)
	assert.True(t, got.IsFavorite)
	assert.False(t, got.LastEdited.Before(before))
	assert.True(t, got.CreatedAt.Equal(saved.CreatedAt))

	// Saving the stored note again is an update: every field but LastEdited survives.
	clock.Advance(time.Minute)
	got.Content = "milk, eggs, bread"
	resaved, err := s.Save(ctx, got)
	require.NoError(t, err)

	notes, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	again := notes[0]
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, "milk, eggs, bread", again.Content)
	assert.True(t, again.IsFavorite)
	assert.True(t, again.CreatedAt.Equal(saved.CreatedAt))
	assert.True(t, again.LastEdited.Equal(clock.Now()))
	assert.True(t, resaved.CreatedAt.Equal(saved.CreatedAt))
}

func TestSaveRequiresTitle(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)

	_, err := s.Save(ctx, draft("Keep", "x"))
	require.NoError(t, err)
	before, err := s.LoadAll(ctx)
	require.NoError(t, err)
	_, setsBefore := mem.Calls()

	for _, title := range []string{"", "   ", "\n\t"} {
		_, err := s.Save(ctx, draft(title, "x"))
		assert.ErrorIs(t, err, ErrValidation)
	}

	after, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, setsAfter := mem.Calls()
	assert.Equal(t, setsBefore, setsAfter, "validation failures must not write")
}

func TestSaveNewIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		saved, err := s.Save(ctx, draft(fmt.Sprintf("note %d", i), ""))
		require.NoError(t, err)
		assert.False(t, seen[saved.ID], "duplicate id %s", saved.ID)
		seen[saved.ID] = true
	}

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 50)
}

func TestSaveRedrawsCollidingIDs(t *testing.T) {
	ctx := context.Background()
	ids := []string{"fixed", "fixed", "new", "second"}
	var mu sync.Mutex
	gen := func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		ids = ids[1:]
		return id
	}
	s := New(NewMemoryStorage(), WithIDGenerator(gen))

	first, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)
	second, err := s.Save(ctx, draft("b", ""))
	require.NoError(t, err)

	assert.Equal(t, "fixed", first.ID)
	assert.Equal(t, "second", second.ID)
}

func TestSaveNewNotesGoToFront(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, err := s.Save(ctx, draft("b", ""))
	require.NoError(t, err)

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, b.ID, notes[0].ID)
	assert.Equal(t, a.ID, notes[1].ID)
}

func TestSaveUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = s.Save(ctx, draft("b", ""))
	require.NoError(t, err)
	clock.Advance(time.Minute)

	a.Title = "a edited"
	a.CreatedAt = clock.Now().Add(time.Hour) // callers cannot rewrite createdAt
	updated, err := s.Save(ctx, a)
	require.NoError(t, err)

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, a.ID, notes[1].ID, "update keeps storage position")
	assert.Equal(t, "a edited", notes[1].Title)
	assert.True(t, notes[1].CreatedAt.Equal(newFakeClock().Now()))
	assert.True(t, updated.LastEdited.Equal(clock.Now()))
	assert.False(t, notes[1].LastEdited.Before(notes[1].CreatedAt))
}

func TestSaveUnknownIDInsertsWithCallerID(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	_, err := s.Save(ctx, draft("existing", ""))
	require.NoError(t, err)

	stale := draft("stale", "")
	stale.ID = "note-1700000000000-abc1234"
	stale.CreatedAt = clock.Now().Add(-time.Hour)
	saved, err := s.Save(ctx, stale)
	require.NoError(t, err)

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "note-1700000000000-abc1234", notes[0].ID)
	assert.Equal(t, saved.ID, notes[0].ID)
	assert.True(t, notes[0].CreatedAt.Equal(stale.CreatedAt))
}

func TestSaveClampsFontSize(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStorage(), WithFontSizeRange(10, 24))

	n := draft("big", "")
	n.FontSize = 99
	saved, err := s.Save(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, 24, saved.FontSize)

	n.FontSize = 2
	saved, err = s.Save(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, 10, saved.FontSize)
}

func TestSaveWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	mem.FailSets(ErrInjected)

	_, err := s.Save(ctx, draft("a", ""))
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, ErrInjected)

	mem.FailSets(nil)
	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestSaveRefusesToOverwriteCorruptPayload(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	mem.Put(DefaultKey, "[{broken")

	_, err := s.Save(ctx, draft("a", ""))
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, ErrStorageRead)

	raw, _ := mem.Raw(DefaultKey)
	assert.Equal(t, "[{broken", raw)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)
	_, err = s.Save(ctx, draft("b", ""))
	require.NoError(t, err)

	before, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "does-not-exist"))
	after, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, s.Delete(ctx, a.ID))
	after, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "b", after[0].Title)

	mem.FailSets(ErrInjected)
	err = s.Delete(ctx, after[0].ID)
	assert.ErrorIs(t, err, ErrStorageWrite)
}

func TestSetFavoriteOnlyChangesFavorite(t *testing.T) {
	ctx := context.Background()
	s, mem, clock := newTestStore(t)

	a, err := s.Save(ctx, draft("a", "body"))
	require.NoError(t, err)
	b, err := s.Save(ctx, draft("b", ""))
	require.NoError(t, err)
	clock.Advance(time.Hour)

	require.NoError(t, s.SetFavorite(ctx, a.ID, true))
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.True(t, got.LastEdited.Equal(a.LastEdited), "favoriting is not an edit")

	expected := a
	expected.IsFavorite = true
	assert.Equal(t, FromModel(expected), FromModel(got))

	other, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, other.IsFavorite)

	_, setsBefore := mem.Calls()
	require.NoError(t, s.SetFavorite(ctx, a.ID, true))
	_, setsAfter := mem.Calls()
	assert.Equal(t, setsBefore, setsAfter, "repeat favorite is a no-op")

	again, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, FromModel(got), FromModel(again))
}

func TestSetFavoriteWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)
	mem.FailSets(ErrInjected)

	err = s.SetFavorite(ctx, a.ID, true)
	assert.ErrorIs(t, err, ErrStorageWrite)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)

	fav, err := s.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, fav)
	fav, err = s.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, fav)

	_, err = s.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)

	got, err := s.GetByPrefix(ctx, a.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.GetByPrefix(ctx, "abc")
	assert.ErrorIs(t, err, ErrPrefixTooShort)

	_, err = s.GetByPrefix(ctx, "zzzzzzzz")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestGetByPrefixAmbiguous(t *testing.T) {
	ctx := context.Background()
	ids := []string{"abcdef-1", "abcdef-2"}
	s := New(NewMemoryStorage(), WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	_, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)
	_, err = s.Save(ctx, draft("b", ""))
	require.NoError(t, err)

	_, err = s.GetByPrefix(ctx, "abcdef")
	assert.ErrorIs(t, err, ErrAmbiguousPrefix)

	got, err := s.GetByPrefix(ctx, "abcdef-2")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
}

func TestWithKeyIsolatesSlots(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	dev := New(mem, WithKey("@inote-storage-dev"))
	prod := New(mem)

	_, err := dev.Save(ctx, draft("dev only", ""))
	require.NoError(t, err)

	notes, err := prod.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
	_, ok := mem.Raw("@inote-storage-dev")
	assert.True(t, ok)
}

func TestConcurrentSavesThroughOneStoreAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStorage())

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Save(ctx, draft(fmt.Sprintf("note %d", i), ""))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, writers)
}

// barrierStorage holds every Get until two readers have arrived, forcing both
// writers to read the same snapshot.
type barrierStorage struct {
	*MemoryStorage
	reads sync.WaitGroup
}

func (b *barrierStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := b.MemoryStorage.Get(ctx, key)
	b.reads.Done()
	b.reads.Wait()
	return v, ok, err
}

func TestIndependentStoresLoseUpdatesWithoutUpdater(t *testing.T) {
	ctx := context.Background()
	shared := &barrierStorage{MemoryStorage: NewMemoryStorage()}
	shared.reads.Add(2)

	first := New(shared)
	second := New(shared)

	var wg sync.WaitGroup
	for i, s := range []*Store{first, second} {
		wg.Add(1)
		go func(i int, s *Store) {
			defer wg.Done()
			_, err := s.Save(ctx, draft(fmt.Sprintf("writer %d", i), ""))
			assert.NoError(t, err)
		}(i, s)
	}
	wg.Wait()

	raw, ok := shared.Raw(DefaultKey)
	require.True(t, ok)
	notes, err := decodeCollection(raw)
	require.NoError(t, err)
	assert.Len(t, notes, 1, "plain Get/Set storage has a lost-update race across stores")
}

// lockingStorage implements Updater with a mutex, like a transactional backend.
type lockingStorage struct {
	*MemoryStorage
	mu sync.Mutex
}

func (l *lockingStorage) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, found, err := l.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	return l.Set(ctx, key, next)
}

func TestIndependentStoresWithUpdaterKeepAllWrites(t *testing.T) {
	ctx := context.Background()
	shared := &lockingStorage{MemoryStorage: NewMemoryStorage()}

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := New(shared).Save(ctx, draft(fmt.Sprintf("writer %d", i), ""))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	notes, err := New(shared).LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, writers)
}

func TestUpdaterErrorsAreClassified(t *testing.T) {
	ctx := context.Background()
	shared := &lockingStorage{MemoryStorage: NewMemoryStorage()}
	s := New(shared)

	a, err := s.Save(ctx, draft("a", ""))
	require.NoError(t, err)

	_, err = s.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)

	require.NoError(t, s.Delete(ctx, "missing"))

	shared.FailSets(ErrInjected)
	err = s.SetFavorite(ctx, a.ID, true)
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.True(t, errors.Is(err, ErrInjected))
}

func TestImportKeepsOrderAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s, mem, clock := newTestStore(t)

	created := clock.Now().Add(-48 * time.Hour)
	a := draft("Alpha", "a")
	a.ID, a.CreatedAt, a.LastEdited = "id-a", created, created.Add(time.Hour)
	b := draft("Beta", "b")
	b.ID, b.CreatedAt, b.LastEdited = "id-b", created, created.Add(2*time.Hour)

	imported, skipped, err := s.Import(ctx, []models.Note{a, b})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, imported, 2)

	_, sets := mem.Calls()
	assert.Equal(t, 1, sets)

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "id-a", notes[0].ID)
	assert.Equal(t, "id-b", notes[1].ID)
	assert.True(t, notes[0].LastEdited.Equal(a.LastEdited))
	assert.True(t, notes[1].CreatedAt.Equal(created))
}

func TestImportUpdatesKnownIDs(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	existing, err := s.Save(ctx, draft("Old", "x"))
	require.NoError(t, err)
	clock.Advance(time.Hour)

	update := existing
	update.Title = "New"
	update.CreatedAt = clock.Now()
	update.LastEdited = clock.Now()
	fresh := draft("Fresh", "y")

	imported, _, err := s.Import(ctx, []models.Note{update, fresh})
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.False(t, imported[1].IsNew())

	notes, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Fresh", notes[0].Title)
	assert.Equal(t, existing.ID, notes[1].ID)
	assert.Equal(t, "New", notes[1].Title)
	assert.True(t, notes[1].CreatedAt.Equal(existing.CreatedAt))
}

func TestImportSkipsInvalidNotes(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	imported, skipped, err := s.Import(ctx, []models.Note{draft("  ", "x"), draft("Kept", "y")})
	require.NoError(t, err)
	assert.Len(t, imported, 1)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0].Err, ErrValidation)
}

func TestImportFixesImplausibleTimestamps(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	n := draft("Future", "x")
	n.ID = "id-future"
	n.CreatedAt = clock.Now().Add(time.Hour)
	n.LastEdited = time.Time{}

	imported, _, err := s.Import(ctx, []models.Note{n})
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.True(t, imported[0].CreatedAt.Equal(clock.Now()))
	assert.True(t, imported[0].LastEdited.Equal(clock.Now()))
}

func TestImportWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	mem.FailSets(ErrInjected)

	_, _, err := s.Import(ctx, []models.Note{draft("One", "x")})
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, ErrInjected)
}
