// ABOUTME: Edit session over a single note with in-memory undo and redo.
// ABOUTME: Changes stay local until Save hands the draft to the store.

package session

import (
	"context"
	"fmt"

	"github.com/harper/inote/internal/models"
)

// Saver persists a note and returns the stored version. *store.Store satisfies it.
type Saver interface {
	Save(ctx context.Context, note models.Note) (models.Note, error)
}

// Draft is a note being edited. It is not safe for concurrent use.
type Draft struct {
	current models.Note
	undo    []models.Note
	redo    []models.Note
	dirty   bool
}

// New starts a session on a copy of note.
func New(note models.Note) *Draft {
	return &Draft{current: note.Clone()}
}

// Note returns a copy of the current state.
func (d *Draft) Note() models.Note {
	return d.current.Clone()
}

// Dirty reports whether anything changed since the session started or last saved.
func (d *Draft) Dirty() bool {
	return d.dirty
}

func (d *Draft) CanUndo() bool { return len(d.undo) > 0 }
func (d *Draft) CanRedo() bool { return len(d.redo) > 0 }

// Apply records the current state for undo, then runs fn on the draft.
// Any pending redo history is discarded.
func (d *Draft) Apply(fn func(n *models.Note)) {
	d.undo = append(d.undo, d.current.Clone())
	d.redo = d.redo[:0]
	fn(&d.current)
	d.dirty = true
}

// Undo restores the previous state. Returns false when there is nothing to undo.
func (d *Draft) Undo() bool {
	if len(d.undo) == 0 {
		return false
	}
	last := len(d.undo) - 1
	d.redo = append(d.redo, d.current)
	d.current = d.undo[last]
	d.undo = d.undo[:last]
	d.dirty = true
	return true
}

// Redo re-applies the last undone state. Returns false when there is nothing to redo.
func (d *Draft) Redo() bool {
	if len(d.redo) == 0 {
		return false
	}
	last := len(d.redo) - 1
	d.undo = append(d.undo, d.current)
	d.current = d.redo[last]
	d.redo = d.redo[:last]
	d.dirty = true
	return true
}

// ToggleFavorite flips the favorite flag as an undoable change.
func (d *Draft) ToggleFavorite() {
	d.Apply(func(n *models.Note) { n.IsFavorite = !n.IsFavorite })
}

// Format appends a markdown snippet for the given style to the content.
func (d *Draft) Format(style Style) error {
	snippet, ok := snippets[style]
	if !ok {
		return fmt.Errorf("unknown format %q", style)
	}
	d.Apply(func(n *models.Note) { n.Content += snippet })
	return nil
}

// Save persists the draft and rebases the session on the stored note.
// History survives a save so the editor can keep undoing.
func (d *Draft) Save(ctx context.Context, saver Saver) (models.Note, error) {
	saved, err := saver.Save(ctx, d.current)
	if err != nil {
		return models.Note{}, err
	}
	d.current = saved.Clone()
	d.dirty = false
	return saved, nil
}
