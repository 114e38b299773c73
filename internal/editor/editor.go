// Package editor holds the single pending-editor state machine: at most
// one segment is in create or edit mode at any time.
package editor

import (
	"errors"
	"strings"

	"marginalia/internal/selection"
)

var (
	ErrEmptyContent = errors.New("note content must not be empty")
	ErrNotOpen      = errors.New("no editor is open")
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeCreating
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	}
	return "unknown"
}

// Editor is the pending note editor. The zero value is idle.
type Editor struct {
	Mode      Mode
	SegmentID string
	Draft     string
	Selection *selection.Info
}

// BeginCreate opens a create editor for a selection. Any prior uncommitted
// draft is discarded silently.
func (e *Editor) BeginCreate(sel selection.Info) {
	*e = Editor{
		Mode:      ModeCreating,
		SegmentID: sel.SegmentID,
		Selection: &sel,
	}
}

// BeginEdit opens an edit editor seeded with the note's current content.
// Any prior uncommitted draft is discarded silently.
func (e *Editor) BeginEdit(segmentID, content string) {
	*e = Editor{
		Mode:      ModeEditing,
		SegmentID: segmentID,
		Draft:     content,
	}
}

// Save validates the draft and closes the editor, returning the committed
// content. A whitespace-only draft is rejected and the editor stays open.
func (e *Editor) Save(draft string) (string, error) {
	switch e.Mode {
	case ModeIdle:
		return "", ErrNotOpen
	case ModeCreating, ModeEditing:
		if strings.TrimSpace(draft) == "" {
			e.Draft = draft
			return "", ErrEmptyContent
		}
		*e = Editor{}
		return draft, nil
	}
	return "", ErrNotOpen
}

// Cancel discards the draft and returns to idle.
func (e *Editor) Cancel() {
	*e = Editor{}
}

// Reset unconditionally discards any pending editor. Called on wholesale
// body replacement.
func (e *Editor) Reset() {
	*e = Editor{}
}

func (e Editor) Open() bool {
	return e.Mode != ModeIdle
}
