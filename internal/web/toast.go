package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	toastSuccess = "success"
	toastError   = "error"
)

type Toast struct {
	ID        string
	Message   string
	Kind      string
	CreatedAt time.Time
}

const toastTTL = 10 * time.Second

// toastStore holds transient messages per browser session. Toasts are
// consumed on first listing and expire unread after toastTTL.
type toastStore struct {
	mu    sync.Mutex
	byKey map[string][]Toast
}

func newToastStore() *toastStore {
	return &toastStore{byKey: make(map[string][]Toast)}
}

func (s *toastStore) Add(key string, toast Toast) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[key] = append(s.byKey[key], toast)
}

// Drain returns the live toasts for a session and removes them.
func (s *toastStore) Drain(key string) []Toast {
	if key == "" {
		return nil
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	toasts := s.byKey[key]
	if len(toasts) == 0 {
		return nil
	}
	delete(s.byKey, key)
	out := make([]Toast, 0, len(toasts))
	for _, toast := range toasts {
		if now.After(toast.CreatedAt.Add(toastTTL)) {
			continue
		}
		out = append(out, toast)
	}
	return out
}

func toastKey(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return "session:" + cookie.Value
	}
	return ""
}

func (s *Server) addToast(r *http.Request, kind, message string) {
	s.toasts.Add(toastKey(r), Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	})
}
