// Package logger constructs the *zap.SugaredLogger instances threaded
// through every other package in this module, so all of them share one
// encoding, level, and set of base fields.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger for service, defaulting to zap's production
// (JSON, info-level) encoder, or its human-readable development encoder
// when debug is true.
func New(service string, debug bool) *zap.SugaredLogger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	base, err := cfg.Build()
	if err != nil {
		// zap's own config construction does not fail under defaults; if it
		// somehow does, fall back to a logger that still works.
		base = zap.NewNop()
	}

	return base.Named(service).Sugar()
}
