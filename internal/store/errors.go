// ABOUTME: Error kinds returned by the note store.
// ABOUTME: Storage failures always wrap one of the storage kinds plus the cause.

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation means the caller's note failed a precondition; nothing was written.
	ErrValidation = errors.New("invalid note")
	// ErrStorageRead means the persisted collection is unreadable or corrupt.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageWrite means the updated collection could not be persisted.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrNoteNotFound means no stored note has the requested id or prefix.
	ErrNoteNotFound = errors.New("note not found")
	// ErrPrefixTooShort means an id prefix is under the 6-character minimum.
	ErrPrefixTooShort = errors.New("prefix must be at least 6 characters")
	// ErrAmbiguousPrefix means an id prefix matches more than one note.
	ErrAmbiguousPrefix = errors.New("prefix matches multiple notes")
)

func readError(key string, err error) error {
	return fmt.Errorf("%w: key %q: %w", ErrStorageRead, key, err)
}

func writeError(key string, err error) error {
	if errors.Is(err, ErrStorageWrite) {
		return err
	}
	return fmt.Errorf("%w: key %q: %w", ErrStorageWrite, key, err)
}
