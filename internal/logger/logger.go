package logger

import (
	"github.com/aleister1102/feedtap/internal/config"

	"github.com/rs/zerolog"
)

// New creates a logger from the log configuration section
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}

// NewWithRunID creates a logger whose entries carry run_id, writing
// into a per-run directory when the configuration asks for one.
func NewWithRunID(cfg config.LogConfig, runID string) (zerolog.Logger, error) {
	return NewLoggerBuilder().
		WithConfig(cfg).
		WithRunID(runID).
		Build()
}
