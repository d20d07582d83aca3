// ABOUTME: Note store owning the persisted note collection.
// ABOUTME: Every mutation is a serialized whole-collection read-modify-write.

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/inote/internal/models"
)

// DefaultKey is the storage slot holding the collection.
const DefaultKey = "notes"

var errNoChange = errors.New("collection unchanged")

// Store is the sole reader and writer of the note collection in its storage slot.
// Mutations through one Store are serialized; separate Stores sharing a backend are
// only serialized if the backend implements Updater.
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
	fontMin int
	fontMax int
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage slot name.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for degraded reads.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator replaces the uuid generator for new notes.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithFontSizeRange bounds the font size accepted on save.
func WithFontSizeRange(lo, hi int) Option {
	return func(s *Store) {
		if lo > 0 && hi >= lo {
			s.fontMin, s.fontMax = lo, hi
		}
	}
}

// New creates a store over the given storage.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		logger:  log.New(io.Discard),
		now:     time.Now,
		newID:   uuid.NewString,
		fontMin: models.FontSizeMin,
		fontMax: models.FontSizeMax,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage slot name.
func (s *Store) Key() string {
	return s.key
}

// LoadAll reads the whole collection in storage order. A missing slot is an empty collection.
func (s *Store) LoadAll(ctx context.Context) ([]models.Note, error) {
	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return nil, readError(s.key, err)
	}
	if !found {
		return []models.Note{}, nil
	}
	notes, err := decodeCollection(raw)
	if err != nil {
		return nil, readError(s.key, err)
	}
	return notes, nil
}

// LoadOrEmpty is LoadAll with read failures logged and replaced by an empty collection.
func (s *Store) LoadOrEmpty(ctx context.Context) []models.Note {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("could not load notes, continuing with none", "key", s.key, "err", err)
		return []models.Note{}
	}
	return notes
}

// Save validates and upserts a note, returning the persisted version.
func (s *Store) Save(ctx context.Context, note models.Note) (models.Note, error) {
	if strings.TrimSpace(note.Title) == "" {
		return models.Note{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	candidate := note.Clone()
	candidate.ApplyDefaults()
	candidate.FontSize = s.clampFontSize(candidate.FontSize)

	var saved models.Note
	err := s.mutate(ctx, func(notes []models.Note) ([]models.Note, bool, error) {
		n := candidate.Clone()
		now := s.now()

		if n.IsNew() {
			n.ID = s.uniqueID(idSet(notes))
			n.CreatedAt = now
			n.LastEdited = now
			saved = n
			return prepend(notes, n), true, nil
		}

		n.LastEdited = now
		for i := range notes {
			if notes[i].ID == n.ID {
				n.CreatedAt = notes[i].CreatedAt
				if n.LastEdited.Before(n.CreatedAt) {
					n.LastEdited = n.CreatedAt
				}
				notes[i] = n
				saved = n
				return notes, true, nil
			}
		}

		// Unknown id: keep the caller's id and insert as if new.
		if n.CreatedAt.IsZero() || n.CreatedAt.After(now) {
			n.CreatedAt = now
		}
		saved = n
		return prepend(notes, n), true, nil
	})
	if err != nil {
		return models.Note{}, err
	}
	return saved.Clone(), nil
}

// Delete removes the note with id. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(notes []models.Note) ([]models.Note, bool, error) {
		kept := make([]models.Note, 0, len(notes))
		for _, n := range notes {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		return kept, len(kept) != len(notes), nil
	})
}

// SetFavorite sets IsFavorite on the matching note without touching LastEdited.
func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.mutate(ctx, func(notes []models.Note) ([]models.Note, bool, error) {
		for i := range notes {
			if notes[i].ID == id {
				if notes[i].IsFavorite == favorite {
					return notes, false, nil
				}
				notes[i].IsFavorite = favorite
				return notes, true, nil
			}
		}
		return notes, false, nil
	})
}

// ToggleFavorite flips IsFavorite and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var favorite bool
	err := s.mutate(ctx, func(notes []models.Note) ([]models.Note, bool, error) {
		for i := range notes {
			if notes[i].ID == id {
				notes[i].IsFavorite = !notes[i].IsFavorite
				favorite = notes[i].IsFavorite
				return notes, true, nil
			}
		}
		return nil, false, ErrNoteNotFound
	})
	return favorite, err
}

// Skipped is a note Import left out and the reason.
type Skipped struct {
	Note models.Note
	Err  error
}

// Import upserts a batch of notes with a single write. Notes with a known id replace the
// stored note in place and keep its CreatedAt; the rest go to the front of the collection
// in input order. Plausible imported timestamps are kept. Untitled notes are returned as
// skipped and do not abort the batch.
func (s *Store) Import(ctx context.Context, notes []models.Note) ([]models.Note, []Skipped, error) {
	var (
		valid   []models.Note
		skipped []Skipped
	)
	for _, n := range notes {
		if strings.TrimSpace(n.Title) == "" {
			skipped = append(skipped, Skipped{Note: n, Err: fmt.Errorf("%w: title is required", ErrValidation)})
			continue
		}
		c := n.Clone()
		c.ApplyDefaults()
		c.FontSize = s.clampFontSize(c.FontSize)
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil, skipped, nil
	}

	var imported []models.Note
	err := s.mutate(ctx, func(current []models.Note) ([]models.Note, bool, error) {
		now := s.now()
		taken := idSet(current)
		existing := make(map[string]int, len(current))
		for i, n := range current {
			existing[n.ID] = i
		}
		var fresh []models.Note
		added := make(map[string]int)
		imported = make([]models.Note, 0, len(valid))

		for _, c := range valid {
			n := c.Clone()
			if n.IsNew() {
				n.ID = s.uniqueID(taken)
				n.CreatedAt, n.LastEdited = now, now
			}
			taken[n.ID] = true

			if i, ok := existing[n.ID]; ok {
				n.CreatedAt = current[i].CreatedAt
				importedTimes(&n, now)
				current[i] = n
			} else if i, ok := added[n.ID]; ok {
				n.CreatedAt = fresh[i].CreatedAt
				importedTimes(&n, now)
				fresh[i] = n
			} else {
				importedTimes(&n, now)
				added[n.ID] = len(fresh)
				fresh = append(fresh, n)
			}
			imported = append(imported, n.Clone())
		}
		return append(fresh, current...), true, nil
	})
	if err != nil {
		return nil, skipped, err
	}
	return imported, skipped, nil
}

// importedTimes replaces missing or future timestamps with now and keeps CreatedAt <= LastEdited.
func importedTimes(n *models.Note, now time.Time) {
	if n.CreatedAt.IsZero() || n.CreatedAt.After(now) {
		n.CreatedAt = now
	}
	if n.LastEdited.IsZero() || n.LastEdited.After(now) {
		n.LastEdited = now
	}
	if n.LastEdited.Before(n.CreatedAt) {
		n.LastEdited = n.CreatedAt
	}
}

// Get returns the note with exactly this id.
func (s *Store) Get(ctx context.Context, id string) (models.Note, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return models.Note{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Note{}, ErrNoteNotFound
}

// GetByPrefix finds a note by id prefix (minimum 6 chars). An exact id always wins.
func (s *Store) GetByPrefix(ctx context.Context, prefix string) (models.Note, error) {
	if len(prefix) < 6 {
		return models.Note{}, ErrPrefixTooShort
	}
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return models.Note{}, err
	}

	var matches []models.Note
	for _, n := range notes {
		if n.ID == prefix {
			return n, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return models.Note{}, ErrNoteNotFound
	}
	if len(matches) > 1 {
		return models.Note{}, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(matches))
	}
	return matches[0], nil
}

// mutate runs fn over the current collection and persists the result when fn reports
// a change. Errors returned by fn pass through untouched.
func (s *Store) mutate(ctx context.Context, fn func([]models.Note) ([]models.Note, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fnErr error
	apply := func(current string, found bool) (string, bool) {
		notes := []models.Note{}
		if found {
			decoded, err := decodeCollection(current)
			if err != nil {
				fnErr = fmt.Errorf("%w: %w", ErrStorageWrite, readError(s.key, err))
				return "", false
			}
			notes = decoded
		}
		updated, changed, err := fn(notes)
		if err != nil {
			fnErr = err
			return "", false
		}
		if !changed {
			return "", false
		}
		encoded, err := encodeCollection(updated)
		if err != nil {
			fnErr = writeError(s.key, err)
			return "", false
		}
		return encoded, true
	}

	if u, ok := s.storage.(Updater); ok {
		err := u.Update(ctx, s.key, func(current string, found bool) (string, error) {
			fnErr = nil
			encoded, changed := apply(current, found)
			if fnErr != nil {
				return "", fnErr
			}
			if !changed {
				return "", errNoChange
			}
			return encoded, nil
		})
		switch {
		case fnErr != nil:
			return fnErr
		case errors.Is(err, errNoChange):
			return nil
		case err != nil:
			return writeError(s.key, err)
		}
		return nil
	}

	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, readError(s.key, err))
	}
	encoded, changed := apply(raw, found)
	if fnErr != nil {
		return fnErr
	}
	if !changed {
		return nil
	}
	if err := s.storage.Set(ctx, s.key, encoded); err != nil {
		return writeError(s.key, err)
	}
	return nil
}

func (s *Store) uniqueID(taken map[string]bool) string {
	for {
		id := s.newID()
		if id != "" && id != models.NewNoteID && !taken[id] {
			return id
		}
	}
}

func idSet(notes []models.Note) map[string]bool {
	ids := make(map[string]bool, len(notes))
	for _, n := range notes {
		ids[n.ID] = true
	}
	return ids
}

func (s *Store) clampFontSize(size int) int {
	switch {
	case size == 0:
		return max(s.fontMin, min(models.DefaultFontSize, s.fontMax))
	case size < s.fontMin:
		return s.fontMin
	case size > s.fontMax:
		return s.fontMax
	}
	return size
}

func prepend(notes []models.Note, n models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes)+1)
	out = append(out, n)
	return append(out, notes...)
}
