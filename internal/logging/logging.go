// Package logging provides category-scoped structured logging for the
// compiler's internal telemetry: scheduling events, cache state
// transitions, worker lifecycle, and internal-error attributions. This is
// distinct from user-facing diagnostics, which travel through
// internal/diag instead.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category scopes a log line to one compiler subsystem.
type Category string

const (
	CategoryScheduler Category = "scheduler"
	CategoryLexer     Category = "lexer"
	CategoryPrelude   Category = "prelude"
	CategoryParser    Category = "parser"
	CategoryCLI       Category = "cli"
)

var (
	mu   sync.RWMutex
	base *zap.Logger = zap.NewNop()
)

// Init installs the process-wide base logger. verbose raises the level to
// debug; called once from cmd/pushc before any worker starts.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "" // CLI output, not a log-shipping target
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	base = l
	mu.Unlock()
	return nil
}

// Sync flushes the base logger; safe to call even if Init was never
// called (base defaults to a no-op logger).
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	_ = l.Sync()
}

// For returns a logger scoped to cat as a structured field, used by every
// package below to avoid threading a *zap.Logger through constructors.
func For(cat Category) *zap.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	return l.With(zap.String("category", string(cat)))
}
