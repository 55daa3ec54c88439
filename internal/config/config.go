package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"almostArchiveAPI/internal/docstore"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendPebble    = "pebble"
	BackendMemory    = "memory"

	SessionCookie     = "cookie"
	SessionFilesystem = "filesystem"
)

type Config struct {
	Port         string
	StoreBackend string

	FirebaseProjectID       string
	FirebaseCredentialsJSON string
	FirebaseCredentialsFile string

	DatabaseURL string
	PebblePath  string

	SessionSecret string
	SessionStore  string
	SessionDir    string

	StaticDir      string
	// AllowedOrigins are the cross-origin front ends that may call the API
	// with the session cookie. Empty means the front end is same-origin.
	AllowedOrigins []string

	MetricsUser string
	MetricsPass string

	RateLimitRPS   float64
	RateLimitBurst int

	// StatsRefresh is how often the server republishes site-stats/current.
	// Zero disables the refresher.
	StatsRefresh time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads .env into the environment. A missing file is not an
// error; the returned bool reports whether one was found.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load reads the configuration from the environment and validates the
// settings the selected backend needs.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getenv("PORT", "3333"),
		StoreBackend:            strings.ToLower(getenv("STORE_BACKEND", BackendFirestore)),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsJSON: os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		PebblePath:              getenv("PEBBLE_PATH", "./data/archive"),
		SessionSecret:           os.Getenv("SESSION_SECRET"),
		SessionStore:            strings.ToLower(getenv("SESSION_STORE", SessionFilesystem)),
		SessionDir:              getenv("SESSION_DIR", "./data/sessions"),
		StaticDir:               os.Getenv("STATIC_DIR"),
		AllowedOrigins:          splitList(os.Getenv("ALLOWED_ORIGINS")),
		MetricsUser:             os.Getenv("METRICS_USER"),
		MetricsPass:             os.Getenv("METRICS_PASS"),
		LogLevel:                getenv("LOG_LEVEL", "info"),
		LogFormat:               getenv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "30")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.StatsRefresh, err = time.ParseDuration(getenv("STATS_REFRESH_INTERVAL", "15m")); err != nil {
		return nil, fmt.Errorf("STATS_REFRESH_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID environment variable is not set")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case BackendPebble, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("ALLOWED_ORIGINS cannot be * because requests carry the session cookie")
		}
	}
	if c.StatsRefresh < 0 {
		return fmt.Errorf("STATS_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

// ValidateSessions checks the settings only the HTTP server needs.
func (c *Config) ValidateSessions() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is not set")
	}

	switch c.SessionStore {
	case SessionCookie:
	case SessionFilesystem:
		if c.SessionDir == "" {
			return fmt.Errorf("SESSION_DIR environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// OpenStore connects to the configured document store.
func (c *Config) OpenStore(ctx context.Context) (docstore.Store, error) {
	var (
		store docstore.Store
		err   error
	)
	switch c.StoreBackend {
	case BackendFirestore:
		store, err = docstore.NewFirestoreStore(ctx, docstore.FirestoreConfig{
			ProjectID:       c.FirebaseProjectID,
			CredentialsJSON: c.FirebaseCredentialsJSON,
			CredentialsFile: c.FirebaseCredentialsFile,
		})
	case BackendPostgres:
		store, err = docstore.NewPostgresStore(ctx, c.DatabaseURL)
	case BackendPebble:
		store, err = docstore.NewPebbleStore(c.PebblePath)
	case BackendMemory:
		store = docstore.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
