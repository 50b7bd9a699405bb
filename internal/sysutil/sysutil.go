// Package sysutil holds process-level helpers used by cmd/server: global
// logger setup and small string utilities.
package sysutil

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel configures the global zerolog level based on a string value.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
// Anything else selects info.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ConfigureLogger points the global logger at w with RFC3339 UTC timestamps.
// pretty switches to the human-readable console encoder.
func ConfigureLogger(w io.Writer, level string, pretty bool) {
	SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
// If all values are blank, it returns "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
