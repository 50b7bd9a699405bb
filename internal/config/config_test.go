package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Clear all env that might affect defaults. t.Setenv isolates per test.
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// Storage / search
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("SEED_PATH", "seed.md")
	t.Setenv("SEED_MD", "override.md")
	t.Setenv("SEED_INDEX", "kb")
	t.Setenv("THRESHOLD", "0.5")
	t.Setenv("MAX_BATCH", "10")
	t.Setenv("MAX_DOC_RUNES", "500")
	t.Setenv("MAX_SEARCH_DOCS", "0")
	t.Setenv("MAX_BODY_BYTES", "4096")

	// Auth
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_SECRET", strings.Repeat("s", 32))
	t.Setenv("AUTH_ISSUER", "search-auth")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Idempotency
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// Storage / search
	if cfg.DBPath != "db.sqlite" || cfg.Seed.Path != "seed.md" || cfg.Seed.MD != "override.md" || cfg.Seed.Index != "kb" {
		t.Fatalf("storage fields unexpected: %+v", cfg)
	}
	if cfg.Seed.File() != "override.md" {
		t.Fatalf("SEED_MD should override SEED_PATH, got %q", cfg.Seed.File())
	}
	if cfg.Threshold != 0.5 || cfg.MaxBatch != 10 || cfg.MaxDocRunes != 500 || cfg.MaxSearchDocs != 0 || cfg.MaxBodyBytes != 4096 {
		t.Fatalf("search fields unexpected: %+v", cfg)
	}

	// Auth
	if !cfg.Auth.Enabled || len(cfg.Auth.Secret) != 32 || cfg.Auth.Issuer != "search-auth" {
		t.Fatalf("auth unexpected: %+v", cfg.Auth)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// Idempotency
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("idempotency ttl unexpected: %v", cfg.IdempotencyTTL)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case trips exactly one rule) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL must be one of"},
		{"blank port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"blank db path", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"blank seed index", map[string]string{"SEED_INDEX": " "}, "SEED_INDEX must not be empty"},
		{"threshold above 1", map[string]string{"THRESHOLD": "1.5"}, "THRESHOLD"},
		{"threshold negative", map[string]string{"THRESHOLD": "-0.1"}, "THRESHOLD"},
		{"empty batch", map[string]string{"MAX_BATCH": "0"}, "MAX_BATCH"},
		{"doc runes", map[string]string{"MAX_DOC_RUNES": "-3"}, "MAX_DOC_RUNES"},
		{"search docs", map[string]string{"MAX_SEARCH_DOCS": "-1"}, "MAX_SEARCH_DOCS"},
		{"body bytes", map[string]string{"MAX_BODY_BYTES": "0"}, "MAX_BODY_BYTES"},
		{"short secret", map[string]string{"AUTH_ENABLED": "1", "AUTH_SECRET": "short"}, "AUTH_SECRET must be at least 32 bytes"},
		{"rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts age", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"idempotency ttl", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); !containsErr(err, tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

// A short secret is fine while auth is off.
func TestLoad_SecretIgnoredWhenAuthDisabled(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("AUTH_SECRET", "short")
	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestSeedConfig_File(t *testing.T) {
	for _, tc := range []struct {
		seed SeedConfig
		want string
	}{
		{SeedConfig{Path: "data/seed.md"}, "data/seed.md"},
		{SeedConfig{Path: "data/seed.md", MD: "faq.md"}, "faq.md"},
		{SeedConfig{}, ""},
	} {
		if got := tc.seed.File(); got != tc.want {
			t.Fatalf("%+v.File()=%q want %q", tc.seed, got, tc.want)
		}
	}
}

// --- helpers ---

func TestEnvParsers(t *testing.T) {
	t.Setenv("CFG_STR", "val")
	t.Setenv("CFG_EMPTY", "")
	t.Setenv("CFG_FLOAT", "0.35")
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_DUR", "150ms")
	t.Setenv("CFG_BAD", "nope")

	if got := getenv("CFG_STR", "d"); got != "val" {
		t.Fatalf("getenv set=%q", got)
	}
	if got := getenv("CFG_EMPTY", "d"); got != "d" {
		t.Fatalf("getenv empty=%q", got)
	}
	if got := getfloat("CFG_FLOAT", 0); got != 0.35 {
		t.Fatalf("getfloat=%v", got)
	}
	if got := getint("CFG_INT", 0); got != 42 {
		t.Fatalf("getint=%v", got)
	}
	if got := getdur("CFG_DUR", time.Second); got != 150*time.Millisecond {
		t.Fatalf("getdur=%v", got)
	}
	// Unparseable values fall back to the default.
	if getfloat("CFG_BAD", 1.5) != 1.5 || getint("CFG_BAD", 7) != 7 || getdur("CFG_BAD", time.Minute) != time.Minute {
		t.Fatal("bad values should fall back")
	}
	if getfloat("CFG_UNSET", 2) != 2 || getint("CFG_UNSET", 3) != 3 {
		t.Fatal("unset values should fall back")
	}
}

func TestGetbool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "TRUE": true, " yes ": true, "Y": true, "on": true,
		"0": false, "false": false, "FALSE": false, " no ": false, "N": false, "off": false,
	}
	for v, want := range cases {
		t.Setenv("CFG_BOOL", v)
		if got := getbool("CFG_BOOL", !want); got != want {
			t.Fatalf("getbool(%q)=%v want %v", v, got, want)
		}
	}
	for _, v := range []string{"", "maybe"} {
		t.Setenv("CFG_BOOL", v)
		if !getbool("CFG_BOOL", true) || getbool("CFG_BOOL", false) {
			t.Fatalf("getbool(%q) should return the default", v)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV(\"\")=%#v", out)
	}
	got := splitCSV(" https://a.example, ,http://b.example ,")
	want := []string{"https://a.example", "http://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "/",
		" / ":      "/",
		"v1":       "/v1",
		"/api/v1/": "/api/v1",
		"search//": "/search",
		"/api/v2":  "/api/v2",
	} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q)=%q want %q", in, got, want)
		}
	}
}

// Ensure tests don't inherit PORT from the environment.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}

func TestLoad_Defaults_APIBasePathDefault_And_SeedMDOptional(t *testing.T) {
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("SEED_PATH", "seed.md")
	// Intentionally leave SEED_MD and API_BASE_PATH unset

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	// default per code is "/api/v1"
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.APIBasePath)
	}
	if cfg.Seed.MD != "" || cfg.Seed.File() != "seed.md" {
		t.Fatalf("expected SEED_PATH to be used when SEED_MD unset, got %+v", cfg.Seed)
	}
	if cfg.Seed.Index != "default" || cfg.Auth.Enabled || cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	// No special env needed; defaults are valid.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}
