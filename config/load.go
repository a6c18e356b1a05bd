package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func Load() App {
	_ = godotenv.Load()

	cfg := App{
		Port:    getenv("APP_PORT", "8080"),
		Storage: getenv("STORAGE", "postgres"),
		Env:     getenv("APP_ENV", "dev"),
	}
	if cfg.Storage == "postgres" {
		cfg.DatabaseURL = must("DATABASE_URL")
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
