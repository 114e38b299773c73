package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marginalia/internal/app"
	"marginalia/internal/document"
	"marginalia/internal/editor"
	"marginalia/internal/selection"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.app.Snapshot()
	data := buildViewData(snap, s.toasts.Drain(toastKey(r)))
	s.views.RenderPage(w, data)
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err := s.app.SetTitle(r.Context(), r.Form.Get("title"))
	switch {
	case errors.Is(err, app.ErrEmptyTitle):
		s.addToast(r, toastError, "Title must not be empty.")
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	default:
		s.addToast(r, toastSuccess, "Title updated.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err := s.app.ReplaceBody(r.Context(), r.Form.Get("body"))
	switch {
	case errors.Is(err, document.ErrEmptyBody):
		s.addToast(r, toastError, "Study text must not be empty.")
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	default:
		s.addToast(r, toastSuccess, "Study text replaced. All previous notes were cleared.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	startSegment := chi.URLParam(r, "segmentID")
	endSegment := r.Form.Get("end_segment")
	if endSegment == "" {
		endSegment = startSegment
	}
	start := selection.Boundary{
		SegmentID: startSegment,
		Run:       formInt(r, "start_run"),
		Offset:    formInt(r, "start_offset"),
	}
	end := selection.Boundary{
		SegmentID: endSegment,
		Run:       formInt(r, "end_run"),
		Offset:    formInt(r, "end_offset"),
	}

	err := s.app.Select(r.Context(), start, end)
	switch {
	case errors.Is(err, selection.ErrCrossSegment):
		s.addToast(r, toastError, "A note must stay within a single segment.")
	case errors.Is(err, selection.ErrEmptySelection):
		// Collapsed or whitespace-only: treated as no selection at all.
	case errors.Is(err, selection.ErrOutOfRange), errors.Is(err, document.ErrNoSegment):
		s.addToast(r, toastError, "That selection no longer matches the text.")
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err := s.app.SaveEditor(r.Context(), r.Form.Get("content"))
	switch {
	case errors.Is(err, editor.ErrEmptyContent):
		s.addToast(r, toastError, "Note content must not be empty.")
	case errors.Is(err, editor.ErrNotOpen):
		s.addToast(r, toastError, "No note editor is open.")
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	default:
		s.addToast(r, toastSuccess, "Note saved.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditNote(w http.ResponseWriter, r *http.Request) {
	segmentID := chi.URLParam(r, "segmentID")
	if err := s.app.EditNote(segmentID); errors.Is(err, document.ErrNoNote) {
		s.addToast(r, toastError, "This segment has no note to edit.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	segmentID := chi.URLParam(r, "segmentID")
	if s.app.DeleteNote(r.Context(), segmentID) {
		s.addToast(r, toastSuccess, "Note deleted.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCancelEditor(w http.ResponseWriter, r *http.Request) {
	s.app.CancelEditor()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc := s.app.Document()
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="marginalia.json"`)
	_, _ = w.Write(raw)
}

// formInt returns -1 for missing or malformed values; the selection mapper
// rejects it as out of range.
func formInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.Form.Get(key))
	if err != nil {
		return -1
	}
	return v
}
