package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

var ErrUnsafePath = errors.New("unsafe path")

var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".ico":   "image/x-icon",
	".txt":   "text/plain; charset=utf-8",
	".woff2": "font/woff2",
}

// normalizeAssetPath rejects anything that could resolve outside the asset
// root before the path ever touches the filesystem.
func normalizeAssetPath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", ErrUnsafePath
	}
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return "", ErrUnsafePath
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrUnsafePath
	}
	return clean, nil
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	// The wildcard still carries percent-encoding when the raw path differs
	// from the decoded one.
	if decoded, err := url.PathUnescape(rel); err == nil {
		rel = decoded
	}
	if rel == "" || rel == "/" {
		rel = "index.html"
	}
	clean, err := normalizeAssetPath(rel)
	if err != nil || clean == "." {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	root := s.cfg.StaticDir
	full := filepath.Join(root, filepath.FromSlash(clean))
	if back, err := filepath.Rel(root, full); err != nil || strings.HasPrefix(back, "..") {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(full)
	if err != nil {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	ctype, ok := contentTypes[strings.ToLower(filepath.Ext(full))]
	if !ok {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := io.Copy(w, f); err != nil {
		// The status line is already out; all that is left is to log.
		slog.Warn("stream asset", "path", clean, "err", err)
	}
}
