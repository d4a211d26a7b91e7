// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Types reflect how the
// values are used: strings for identifiers and secrets, durations for
// timeouts and TTLs.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	JWTSecret      string        // secret used to verify operator JWTs
	BackendBaseURL string        // base URL of the remote commerce backend
	BackendTimeout time.Duration // per-call timeout for backend requests
	CatalogTTL     time.Duration // max snapshot age before a refresh on read
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		JWTSecret:      must("JWT_SECRET"),
		BackendBaseURL: must("BACKEND_BASE_URL"),
		BackendTimeout: envDur("BACKEND_TIMEOUT", 15*time.Second),
		CatalogTTL:     envDur("CATALOG_TTL", 5*time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// Helper functions shared with ratelimit.go and cache.go.
func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
