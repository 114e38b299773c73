package web

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	setupTestLogger()
	os.Exit(m.Run())
}

func setupTestLogger() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MARGIN_LOG_LEVEL"))) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "error":
		level.Set(slog.LevelError)
	}
	var writer io.Writer = os.Stdout
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
