// Package log builds the logr.Logger used throughout wq, backed by
// go.uber.org/zap via go-logr/zapr — the ambient logging stack the core
// never constructs for itself (spec §1 lists "logging" among the external
// collaborators out of the core's scope).
package log

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls the underlying zap configuration.
type Options struct {
	// Development selects zap's development preset (console encoding,
	// DPanic-level panics, caller/stacktrace on warn+) instead of the
	// production preset (JSON encoding, sampling enabled).
	Development bool
	// Level is the minimum enabled zapcore.Level; more negative is more
	// verbose (zapcore.DebugLevel is -1).
	Level zapcore.Level
}

// NewLogger builds a logr.Logger from the given Options. It panics if the
// underlying zap config fails to build, which only happens on a
// misconfigured encoder and indicates a programming error, not a runtime
// condition callers should handle.
func NewLogger(opts Options) logr.Logger {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(opts.Level)
	z, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return zapr.NewLogger(z)
}
