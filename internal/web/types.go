package web

import (
	"html/template"
	"strings"

	"marginalia/internal/app"
	"marginalia/internal/editor"
	"marginalia/internal/selection"
)

type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	DocTitle        string
	BodyText        string
	Segments        []SegmentView
	Editor          EditorView
	Toasts          []Toast
}

// RunView is one inline text node of a rendered segment. The client maps
// selection boundaries back to these nodes by index, so the template must
// emit exactly one node per run, in order.
type RunView struct {
	Text   string
	Marked bool
}

type SegmentView struct {
	ID          string
	Runs        []RunView
	Active      bool
	HasNote     bool
	NoteContent string
	NoteHTML    template.HTML
	NoteUpdated string
}

type EditorView struct {
	Open          bool
	Mode          string
	SegmentID     string
	Draft         string
	SelectionText string
}

func buildViewData(snap app.Snapshot, toasts []Toast) ViewData {
	data := ViewData{
		Title:           snap.Doc.Title,
		ContentTemplate: "app",
		DocTitle:        snap.Doc.Title,
		Toasts:          toasts,
	}

	var body strings.Builder
	for i, seg := range snap.Doc.Segments {
		if i > 0 {
			body.WriteByte('\n')
		}
		body.WriteString(seg.Text)
	}
	data.BodyText = body.String()

	for _, seg := range snap.Doc.Segments {
		view := SegmentView{ID: seg.ID, Active: seg.ID == snap.Active}
		note, hasNote := snap.Doc.NoteFor(seg.ID)
		var runs []selection.Run
		if hasNote {
			runs = selection.Split(seg.Text, selection.Span{Start: note.StartOffset, End: note.EndOffset})
			view.HasNote = true
			view.NoteContent = note.Content
			view.NoteHTML = renderNoteHTML(note.Content)
			view.NoteUpdated = note.UpdatedAt.Format("2006-01-02 15:04")
		} else {
			runs = selection.Split(seg.Text)
		}
		cum := 0
		for _, run := range runs {
			length := len([]rune(run.Text))
			marked := hasNote && cum == note.StartOffset && cum+length == note.EndOffset
			view.Runs = append(view.Runs, RunView{Text: run.Text, Marked: marked})
			cum += length
		}
		data.Segments = append(data.Segments, view)
	}

	data.Editor = EditorView{
		Open:      snap.Editor.Open(),
		Mode:      snap.Editor.Mode.String(),
		SegmentID: snap.Editor.SegmentID,
		Draft:     snap.Editor.Draft,
	}
	if snap.Editor.Mode == editor.ModeCreating && snap.Editor.Selection != nil {
		data.Editor.SelectionText = snap.Editor.Selection.Text
	}
	return data
}
