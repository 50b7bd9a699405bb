package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-search-server/internal/http/reply"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if GetRequestID(c) == "" {
			t.Errorf("requestID not set in context")
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated %s header", requestIDHeader)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req2.Header.Set(strings.ToLower(requestIDHeader), "abc-123")
	r.ServeHTTP(w2, req2)
	if got := w2.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	for _, bad := range []string{"has space", "semi;colon", strings.Repeat("a", maxRequestIDLength+1)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(requestIDHeader, bad)
		r.ServeHTTP(w, req)
		got := w.Header().Get(requestIDHeader)
		if got == bad || len(got) != 36 {
			t.Fatalf("malformed id %q should be replaced, got %q", bad, got)
		}
	}
}

func TestValidRequestID(t *testing.T) {
	for s, want := range map[string]bool{
		"":                                     false,
		"abc-123":                              true,
		"trace.span:01_AB":                     true,
		"123e4567-e89b-12d3-a456-426614174000": true,
		"newline\n":                           false,
		"ümlaut":                               false,
	} {
		if got := validRequestID(s); got != want {
			t.Fatalf("validRequestID(%q)=%v want %v", s, got, want)
		}
	}
	if !validRequestID(strings.Repeat("x", maxRequestIDLength)) {
		t.Fatal("max-length id rejected")
	}
}

func TestRecovery_PanicsToFallbackAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "rid-p")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from Recovery, got %d", w.Code)
	}
	if got, want := w.Body.String(), string(reply.Fallback().Body); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
	if w.Header().Get(requestIDHeader) != "rid-p" {
		t.Fatalf("request id header lost")
	}
	out := buf.String()
	if !strings.Contains(out, "panic recovered") || !strings.Contains(out, `"request_id":"rid-p"`) {
		t.Fatalf("expected panic log with request id, got:\n%s", out)
	}
}

func TestRecovery_PanicAfterWrite_NoFallbackBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery())
	r.GET("/panic-after-write", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic-after-write", nil))

	if strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("fallback body must not be appended after a write; got %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestLoggerFrom_FallbackAndRequestScoped(t *testing.T) {
	gin.SetMode(gin.TestMode)

	buf1 := captureLogger(t)
	r1 := gin.New()
	r1.Use(RequestID())
	r1.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom")
		c.Status(http.StatusOK)
	})
	r1.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))
	if !strings.Contains(buf1.String(), `"message":"custom"`) {
		t.Fatalf("expected custom log in fallback")
	}
	if strings.Contains(buf1.String(), `"request_id"`) {
		t.Fatalf("fallback logger unexpectedly had request_id")
	}

	buf2 := captureLogger(t)
	r2 := gin.New()
	r2.Use(RequestID())
	r2.Use(RedactingLogger(RedactOptions{}))
	r2.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom2")
		c.Status(http.StatusOK)
	})
	r2.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))
	out := buf2.String()
	if !strings.Contains(out, `"message":"custom2"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("expected request-scoped log with request_id, got:\n%s", out)
	}
}

func TestHelpers_asString_and_truncate(t *testing.T) {
	if asString("x") != "x" || asString(123) != "" {
		t.Fatalf("asString failed")
	}
	if truncate("hello", 10) != "hello" {
		t.Fatalf("truncate no-op failed")
	}
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("truncate result = %q; want %q", got, "abcde…")
	}
	if truncate("abc", 0) != "abc" {
		t.Fatalf("truncate disable failed")
	}
}
