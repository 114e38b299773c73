package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr   string
	DataPath     string
	StoreBackend string
	StaticDir    string
	AuthUser     string
	AuthPass     string
	AuthFile     string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		ListenAddr:   envOr("MARGIN_LISTEN_ADDR", "127.0.0.1:8080"),
		DataPath:     envOr("MARGIN_DATA_PATH", ".marginalia"),
		StoreBackend: envOr("MARGIN_STORE", "disk"),
		StaticDir:    envOr("MARGIN_STATIC_DIR", "assets"),
		AuthUser:     os.Getenv("MARGIN_AUTH_USER"),
		AuthPass:     os.Getenv("MARGIN_AUTH_PASS"),
		AuthFile:     os.Getenv("MARGIN_AUTH_FILE"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
