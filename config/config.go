// Package config loads server configuration from a .env file and the
// process environment. Flags in cmd/server override these values.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port     int    // HTTP listen port
	Store    string // "memory" or "sqlite"
	DBPath   string // SQLite database path (":memory:" allowed)
	TrendURL string // trend analysis endpoint; empty selects the local analyzer
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() Config {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	return Config{
		Port:     envInt("PORT", 8080),
		Store:    envStr("STORE", "sqlite"),
		DBPath:   envStr("DB_PATH", "profitpro.db"),
		TrendURL: envStr("TREND_URL", ""),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
