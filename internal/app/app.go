// Package app owns the application state. Handlers never touch the
// document directly: every mutation goes through an App method, which
// mutates under one lock and persists before returning.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"marginalia/internal/document"
	"marginalia/internal/editor"
	"marginalia/internal/selection"
	"marginalia/internal/store"
)

var ErrEmptyTitle = errors.New("title must not be empty")

type App struct {
	mu     sync.Mutex
	store  store.Store
	doc    *document.Document
	active string
	editor editor.Editor
	now    func() time.Time
}

// Load builds the app from saved state. A missing or undecodable payload
// falls back to the built-in default document; load never fails.
func Load(ctx context.Context, st store.Store) *App {
	doc, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		doc = document.Default()
	case err != nil:
		slog.Warn("load state failed, using default document", "err", err)
		doc = document.Default()
	}
	return &App{store: st, doc: doc, now: time.Now}
}

// Snapshot is a consistent copy of the state for rendering.
type Snapshot struct {
	Doc    *document.Document
	Active string
	Editor editor.Editor
}

func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := Snapshot{Doc: a.doc.Clone(), Active: a.active, Editor: a.editor}
	if a.editor.Selection != nil {
		sel := *a.editor.Selection
		snap.Editor.Selection = &sel
	}
	return snap
}

// Document returns a copy of the persisted subset, for export.
func (a *App) Document() *document.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc.Clone()
}

// ReplaceBody swaps the segment set wholesale: all notes are dropped, the
// active marker is cleared and any pending editor is discarded.
func (a *App) ReplaceBody(ctx context.Context, body string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.doc.ReplaceBody(body); err != nil {
		return err
	}
	a.active = ""
	a.editor.Reset()
	a.persist(ctx)
	return nil
}

func (a *App) SetTitle(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc.Title = title
	a.persist(ctx)
	return nil
}

// Select resolves a selection against the named segment's rendered runs
// and opens the editor: create when the segment has no note, edit when it
// does. The selection itself is transient and not persisted.
func (a *App) Select(ctx context.Context, start, end selection.Boundary) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if start.SegmentID != end.SegmentID {
		return selection.ErrCrossSegment
	}
	seg, ok := a.doc.SegmentByID(start.SegmentID)
	if !ok {
		return document.ErrNoSegment
	}
	note, hasNote := a.doc.NoteFor(seg.ID)
	var runs []selection.Run
	if hasNote {
		runs = selection.Split(seg.Text, selection.Span{Start: note.StartOffset, End: note.EndOffset})
	} else {
		runs = selection.Split(seg.Text)
	}
	info, err := selection.Resolve(runs, start, end)
	if err != nil {
		return err
	}
	a.active = seg.ID
	if hasNote {
		a.editor.BeginEdit(seg.ID, note.Content)
	} else {
		a.editor.BeginCreate(info)
	}
	return nil
}

// EditNote opens the editor on a segment's existing note without a
// selection.
func (a *App) EditNote(segmentID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	note, ok := a.doc.NoteFor(segmentID)
	if !ok {
		return document.ErrNoNote
	}
	a.active = segmentID
	a.editor.BeginEdit(segmentID, note.Content)
	return nil
}

// SaveEditor validates the draft, commits it as a note create or update,
// closes the editor and persists. A whitespace-only draft is rejected and
// the editor stays open.
func (a *App) SaveEditor(ctx context.Context, draft string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	mode := a.editor.Mode
	segmentID := a.editor.SegmentID
	sel := a.editor.Selection

	content, err := a.editor.Save(draft)
	if err != nil {
		return err
	}

	now := a.now()
	switch mode {
	case editor.ModeCreating:
		start, end := 0, 0
		if sel != nil {
			start, end = sel.StartOffset, sel.EndOffset
		}
		_, err = a.doc.CreateNote(segmentID, content, start, end, now)
		if errors.Is(err, document.ErrNoteExists) {
			// A note appeared for this segment since the editor opened:
			// creation routes to update semantics.
			_, err = a.doc.UpdateNote(segmentID, content, now)
		}
	case editor.ModeEditing:
		_, err = a.doc.UpdateNote(segmentID, content, now)
	}
	if err != nil {
		return err
	}
	a.active = segmentID
	a.persist(ctx)
	return nil
}

// DeleteNote removes a segment's note. Deleting where none exists is a
// complete no-op: no state change, no persist.
func (a *App) DeleteNote(ctx context.Context, segmentID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.doc.DeleteNote(segmentID) {
		return false
	}
	if a.active == segmentID {
		a.active = ""
	}
	a.persist(ctx)
	return true
}

func (a *App) CancelEditor() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.Cancel()
}

// persist writes the document out. Failures are logged and swallowed: the
// in-memory state is kept and may diverge from the stored copy until the
// next successful write.
func (a *App) persist(ctx context.Context) {
	if err := a.store.Save(ctx, a.doc); err != nil {
		slog.Error("persist state", "err", err)
	}
}
