// Package logging sets up the process-wide structured logger. Modeled on
// the teacher's internal/single/monitoring/logger.go: zerolog, JSON by
// default, a pretty console mode for local development, and panic-recovery
// helpers the background workers use around each unit of work.
package logging

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the logger's minimum level and output format.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, pretty
}

// New builds a zerolog.Logger configured per cfg, with a timestamp, caller
// info, and a fixed "service" field for every log line.
func New(cfg Config, service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output = os.Stdout
	logCtx := zerolog.New(output)
	if cfg.Format == "pretty" {
		logCtx = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logCtx.With().
		Timestamp().
		Caller().
		Str("service", service).
		Logger()
}

// RecoverPanic recovers a panic in the calling goroutine, logs it with a
// full stack trace, and swallows it so a single bad sweep/message does not
// take down a background worker. Intended for `defer logging.RecoverPanic(...)`
// at the top of a worker's per-iteration function.
func RecoverPanic(logger zerolog.Logger, component string, fields map[string]any) {
	if r := recover(); r != nil {
		event := logger.Error().
			Interface("panic", r).
			Str("component", component).
			Str("stack", string(debug.Stack()))
		for k, v := range fields {
			event = event.Interface(k, v)
		}
		event.Msg("recovered panic")
	}
}
