package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"marginalia/internal/app"
	"marginalia/internal/config"
	"marginalia/internal/store"
	"marginalia/internal/web"
)

func main() {
	level := parseLogLevel(os.Getenv("MARGIN_DEBUG_LEVEL"))
	pretty := strings.EqualFold(os.Getenv("MARGIN_LOG_PRETTY"), "1") || strings.EqualFold(os.Getenv("MARGIN_LOG_PRETTY"), "true")
	var handler slog.Handler
	if pretty {
		handler = newPrettyHandler(os.Stdout, level)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	cfg := config.Load()
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		slog.Error("create data dir", "path", cfg.DataPath, "err", err)
		os.Exit(1)
	}

	st, err := openStore(cfg)
	if err != nil {
		slog.Error("open store", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	application := app.Load(context.Background(), st)

	srv, err := web.NewServer(cfg, application)
	if err != nil {
		slog.Error("server init", "err", err)
		os.Exit(1)
	}

	slog.Info("listening", "addr", cfg.ListenAddr, "store", cfg.StoreBackend)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreBackend)) {
	case "sqlite":
		return store.OpenSQLite(filepath.Join(cfg.DataPath, "marginalia.sqlite"))
	default:
		return store.OpenDisk(filepath.Join(cfg.DataPath, "store")), nil
	}
}

func parseLogLevel(raw string) slog.Leveler {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}
	return level
}
