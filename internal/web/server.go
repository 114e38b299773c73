package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"marginalia/internal/app"
	"marginalia/internal/config"
)

type Server struct {
	cfg    config.Config
	app    *app.App
	router chi.Router
	views  *Templates
	toasts *toastStore
	auth   *Auth
}

func NewServer(cfg config.Config, application *app.App) (*Server, error) {
	auth, err := newAuth(cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:    cfg,
		app:    application,
		views:  MustParseTemplates(),
		toasts: newToastStore(),
		auth:   auth,
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger())
	if s.auth != nil {
		r.Use(s.auth.Middleware)
	}
	r.Use(s.sessionCookie)

	r.Get("/", s.handleHome)
	r.Post("/title", s.handleTitle)
	r.Post("/body", s.handleBody)
	r.Post("/segments/{segmentID}/select", s.handleSelect)
	r.Post("/segments/{segmentID}/notes", s.handleSaveNote)
	r.Post("/segments/{segmentID}/notes/edit", s.handleEditNote)
	r.Post("/segments/{segmentID}/notes/delete", s.handleDeleteNote)
	r.Post("/editor/cancel", s.handleCancelEditor)
	r.Get("/export", s.handleExport)
	r.Get("/static/*", s.handleStatic)

	s.router = r
}
