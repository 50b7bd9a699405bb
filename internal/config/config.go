// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, storage, search limits, authentication, rate limiting, and
// observability settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// AuthConfig defines bearer-token authentication for the API group.
type AuthConfig struct {
	Enabled bool   // AUTH_ENABLED
	Secret  string // AUTH_SECRET, HS256 signing key
	Issuer  string // AUTH_ISSUER, checked when non-empty
}

// SeedConfig names the markdown file loaded into an index at startup.
type SeedConfig struct {
	Path  string // SEED_PATH
	MD    string // SEED_MD, overrides Path when set
	Index string // SEED_INDEX
}

// File returns the markdown path to seed from: MD when set, else Path.
func (s SeedConfig) File() string {
	if s.MD != "" {
		return s.MD
	}
	return s.Path
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-search-server")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath string // SQLite path
	Seed   SeedConfig

	// Search / documents
	Threshold     float64 // minimum similarity of a hit [0,1]
	MaxBatch      int     // documents per POST
	MaxDocRunes   int     // runes per document
	MaxSearchDocs int     // documents ranked per query (0 = all)
	MaxBodyBytes  int64   // request body cap

	// Authentication
	Auth AuthConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// minSecretLen is the shortest accepted HS256 key.
const minSecretLen = 32

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath: getenv("DB_PATH", "search.db"),
		Seed: SeedConfig{
			Path:  getenv("SEED_PATH", "data/seed.md"),
			MD:    getenv("SEED_MD", ""),
			Index: getenv("SEED_INDEX", "default"),
		},

		// Search / documents
		Threshold:     getfloat("THRESHOLD", 0.1),
		MaxBatch:      getint("MAX_BATCH", 100),
		MaxDocRunes:   getint("MAX_DOC_RUNES", 10000),
		MaxSearchDocs: getint("MAX_SEARCH_DOCS", 5000),
		MaxBodyBytes:  int64(getint("MAX_BODY_BYTES", 1<<20)),

		// Authentication
		Auth: AuthConfig{
			Enabled: getbool("AUTH_ENABLED", false),
			Secret:  getenv("AUTH_SECRET", ""),
			Issuer:  getenv("AUTH_ISSUER", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-search-server"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.Seed.Index) == "" {
		return cfg, errors.New("SEED_INDEX must not be empty")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return cfg, errors.New("THRESHOLD must be between 0 and 1")
	}
	if cfg.MaxBatch < 1 {
		return cfg, errors.New("MAX_BATCH must be >= 1")
	}
	if cfg.MaxDocRunes < 1 {
		return cfg, errors.New("MAX_DOC_RUNES must be >= 1")
	}
	if cfg.MaxSearchDocs < 0 {
		return cfg, errors.New("MAX_SEARCH_DOCS must be >= 0")
	}
	if cfg.MaxBodyBytes < 1 {
		return cfg, errors.New("MAX_BODY_BYTES must be >= 1")
	}
	if cfg.Auth.Enabled && len(cfg.Auth.Secret) < minSecretLen {
		return cfg, fmt.Errorf("AUTH_SECRET must be at least %d bytes when AUTH_ENABLED", minSecretLen)
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
