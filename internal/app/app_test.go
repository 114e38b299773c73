package app

import (
	"context"
	"errors"
	"testing"

	"marginalia/internal/document"
	"marginalia/internal/editor"
	"marginalia/internal/selection"
	"marginalia/internal/store"
)

type fakeStore struct {
	doc     *document.Document
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeStore) Load(context.Context) (*document.Document, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.doc == nil {
		return nil, store.ErrNotFound
	}
	return f.doc.Clone(), nil
}

func (f *fakeStore) Save(_ context.Context, doc *document.Document) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.doc = doc.Clone()
	return nil
}

func (f *fakeStore) Close() error { return nil }

func newTestApp(t *testing.T, body string) (*App, *fakeStore) {
	t.Helper()
	st := &fakeStore{}
	a := Load(context.Background(), st)
	if body != "" {
		if err := a.ReplaceBody(context.Background(), body); err != nil {
			t.Fatalf("ReplaceBody: %v", err)
		}
	}
	return a, st
}

func boundary(segID string, run, offset int) selection.Boundary {
	return selection.Boundary{SegmentID: segID, Run: run, Offset: offset}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	for name, st := range map[string]*fakeStore{
		"missing": {},
		"corrupt": {loadErr: errors.New("decode state: unexpected end of JSON input")},
	} {
		t.Run(name, func(t *testing.T) {
			a := Load(context.Background(), st)
			snap := a.Snapshot()
			if len(snap.Doc.Segments) != 5 {
				t.Fatalf("expected the five-line default document, got %d segments", len(snap.Doc.Segments))
			}
			if len(snap.Doc.Notes) != 0 {
				t.Fatal("default document must have zero notes")
			}
		})
	}
}

func TestAnnotateScenario(t *testing.T) {
	// body = "Line A\nLine B", select "A" in segment 0, save "remember this".
	a, _ := newTestApp(t, "Line A\nLine B")
	ctx := context.Background()
	snap := a.Snapshot()
	seg0 := snap.Doc.Segments[0]
	seg1 := snap.Doc.Segments[1]

	if err := a.Select(ctx, boundary(seg0.ID, 0, 5), boundary(seg0.ID, 0, 6)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	snap = a.Snapshot()
	if snap.Editor.Mode != editor.ModeCreating || snap.Editor.SegmentID != seg0.ID {
		t.Fatalf("editor = %+v", snap.Editor)
	}
	if snap.Editor.Selection == nil || snap.Editor.Selection.Text != "A" {
		t.Fatalf("selection = %+v", snap.Editor.Selection)
	}
	if snap.Active != seg0.ID {
		t.Fatalf("active = %q", snap.Active)
	}

	if err := a.SaveEditor(ctx, "remember this"); err != nil {
		t.Fatalf("SaveEditor: %v", err)
	}
	snap = a.Snapshot()
	note, ok := snap.Doc.NoteFor(seg0.ID)
	if !ok || note.Content != "remember this" {
		t.Fatalf("note = %+v, ok = %v", note, ok)
	}
	if note.StartOffset != 5 || note.EndOffset != 6 {
		t.Fatalf("offsets = %d..%d", note.StartOffset, note.EndOffset)
	}
	if _, ok := snap.Doc.NoteFor(seg1.ID); ok {
		t.Fatal("segment 1 must have no note")
	}
	if snap.Editor.Open() {
		t.Fatal("editor must close after save")
	}
}

func TestSelectCrossSegment(t *testing.T) {
	a, _ := newTestApp(t, "Line A\nLine B")
	snap := a.Snapshot()
	err := a.Select(context.Background(),
		boundary(snap.Doc.Segments[0].ID, 0, 0),
		boundary(snap.Doc.Segments[1].ID, 0, 3))
	if !errors.Is(err, selection.ErrCrossSegment) {
		t.Fatalf("err = %v, want ErrCrossSegment", err)
	}
	if a.Snapshot().Editor.Open() {
		t.Fatal("rejected selection must not open an editor")
	}
}

func TestSelectOnNotedSegmentOpensEdit(t *testing.T) {
	a, _ := newTestApp(t, "The quick brown fox")
	ctx := context.Background()
	seg := a.Snapshot().Doc.Segments[0]

	if err := a.Select(ctx, boundary(seg.ID, 0, 4), boundary(seg.ID, 0, 9)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := a.SaveEditor(ctx, "first note"); err != nil {
		t.Fatalf("SaveEditor: %v", err)
	}

	// The noted segment now renders as three runs; select inside the last.
	if err := a.Select(ctx, boundary(seg.ID, 2, 1), boundary(seg.ID, 2, 6)); err != nil {
		t.Fatalf("second Select: %v", err)
	}
	snap := a.Snapshot()
	if snap.Editor.Mode != editor.ModeEditing {
		t.Fatalf("mode = %v, want editing", snap.Editor.Mode)
	}
	if snap.Editor.Draft != "first note" {
		t.Fatalf("draft = %q, want existing content", snap.Editor.Draft)
	}

	if err := a.SaveEditor(ctx, "second note"); err != nil {
		t.Fatalf("save update: %v", err)
	}
	note, _ := a.Snapshot().Doc.NoteFor(seg.ID)
	if note.Content != "second note" {
		t.Fatalf("content = %q", note.Content)
	}
	if note.StartOffset != 4 || note.EndOffset != 9 {
		t.Fatalf("update must keep original offsets, got %d..%d", note.StartOffset, note.EndOffset)
	}
	if !note.UpdatedAt.After(note.CreatedAt) && !note.UpdatedAt.Equal(note.CreatedAt) {
		t.Fatalf("timestamps = %v / %v", note.CreatedAt, note.UpdatedAt)
	}
}

func TestSaveEmptyDraftKeepsEditorOpen(t *testing.T) {
	a, st := newTestApp(t, "Line A")
	ctx := context.Background()
	seg := a.Snapshot().Doc.Segments[0]
	if err := a.Select(ctx, boundary(seg.ID, 0, 0), boundary(seg.ID, 0, 4)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	saves := st.saves
	if err := a.SaveEditor(ctx, "   "); !errors.Is(err, editor.ErrEmptyContent) {
		t.Fatalf("err = %v, want ErrEmptyContent", err)
	}
	snap := a.Snapshot()
	if !snap.Editor.Open() {
		t.Fatal("editor must remain open after rejected save")
	}
	if len(snap.Doc.Notes) != 0 {
		t.Fatal("no note may be created from an empty draft")
	}
	if st.saves != saves {
		t.Fatal("rejected save must not persist")
	}
}

func TestDeleteMissingNoteIsNoOp(t *testing.T) {
	a, st := newTestApp(t, "Line A")
	seg := a.Snapshot().Doc.Segments[0]
	saves := st.saves
	if a.DeleteNote(context.Background(), seg.ID) {
		t.Fatal("delete of a missing note must report false")
	}
	if st.saves != saves {
		t.Fatal("no-op delete must not persist")
	}
}

func TestDeleteClearsActiveMarker(t *testing.T) {
	a, _ := newTestApp(t, "Line A")
	ctx := context.Background()
	seg := a.Snapshot().Doc.Segments[0]
	if err := a.Select(ctx, boundary(seg.ID, 0, 0), boundary(seg.ID, 0, 4)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := a.SaveEditor(ctx, "note"); err != nil {
		t.Fatalf("SaveEditor: %v", err)
	}
	if !a.DeleteNote(ctx, seg.ID) {
		t.Fatal("expected delete to remove the note")
	}
	snap := a.Snapshot()
	if snap.Active != "" {
		t.Fatalf("active = %q, want cleared", snap.Active)
	}
	if len(snap.Doc.Notes) != 0 {
		t.Fatal("note still present")
	}
}

func TestReplaceBodyDiscardsEverything(t *testing.T) {
	a, st := newTestApp(t, "Line A\nLine B")
	ctx := context.Background()
	seg := a.Snapshot().Doc.Segments[0]
	if err := a.Select(ctx, boundary(seg.ID, 0, 0), boundary(seg.ID, 0, 4)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := a.SaveEditor(ctx, "will not survive"); err != nil {
		t.Fatalf("SaveEditor: %v", err)
	}
	if err := a.EditNote(seg.ID); err != nil {
		t.Fatalf("EditNote: %v", err)
	}

	if err := a.ReplaceBody(ctx, "New line 1\nNew line 2"); err != nil {
		t.Fatalf("ReplaceBody: %v", err)
	}
	snap := a.Snapshot()
	if len(snap.Doc.Notes) != 0 {
		t.Fatal("no note survives a body replacement")
	}
	if snap.Editor.Open() {
		t.Fatal("body replacement must discard the pending editor")
	}
	if snap.Active != "" {
		t.Fatal("body replacement must clear the active marker")
	}
	if st.doc == nil || len(st.doc.Segments) != 2 {
		t.Fatalf("persisted copy = %+v", st.doc)
	}
}

func TestReplaceBodyEmptyRejected(t *testing.T) {
	a, st := newTestApp(t, "Line A")
	saves := st.saves
	if err := a.ReplaceBody(context.Background(), " \n "); !errors.Is(err, document.ErrEmptyBody) {
		t.Fatalf("err = %v, want ErrEmptyBody", err)
	}
	if st.saves != saves {
		t.Fatal("rejected replacement must not persist")
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	a, st := newTestApp(t, "Line A")
	st.saveErr = errors.New("quota exceeded")
	if err := a.ReplaceBody(context.Background(), "Line B"); err != nil {
		t.Fatalf("ReplaceBody must swallow storage errors, got %v", err)
	}
	snap := a.Snapshot()
	if snap.Doc.Segments[0].Text != "Line B" {
		t.Fatal("in-memory state must be kept when persistence fails")
	}
}

func TestSetTitle(t *testing.T) {
	a, st := newTestApp(t, "Line A")
	ctx := context.Background()
	if err := a.SetTitle(ctx, "  Chemistry  "); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if got := a.Snapshot().Doc.Title; got != "Chemistry" {
		t.Fatalf("title = %q", got)
	}
	saves := st.saves
	if err := a.SetTitle(ctx, "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}
	if st.saves != saves {
		t.Fatal("rejected title must not persist")
	}
}

func TestEditNoteWithoutNote(t *testing.T) {
	a, _ := newTestApp(t, "Line A")
	seg := a.Snapshot().Doc.Segments[0]
	if err := a.EditNote(seg.ID); !errors.Is(err, document.ErrNoNote) {
		t.Fatalf("err = %v, want ErrNoNote", err)
	}
}
