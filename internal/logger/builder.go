package logger

import (
	"io"
	stdlog "log" // Standard Go log package, aliased to avoid conflict with zerolog field

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config  LoggerConfig
	factory *WriterFactory
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:  DefaultLoggerConfig(),
		factory: NewWriterFactory(),
	}
}

// WithConfig sets the logger configuration from the file section
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	console := lb.config.Console
	lb.config = FromLogConfig(cfg)
	lb.config.Console = console
	return lb
}

// WithLoggerConfig replaces the whole logger configuration
func (lb *LoggerBuilder) WithLoggerConfig(cfg LoggerConfig) *LoggerBuilder {
	lb.config = cfg
	return lb
}

// WithRunID tags every entry with the run id and, when run
// directories are enabled, routes the file output into the run directory.
func (lb *LoggerBuilder) WithRunID(runID string) *LoggerBuilder {
	lb.config.RunID = runID
	return lb
}

// WithConsoleOutput redirects console output, mainly for tests
func (lb *LoggerBuilder) WithConsoleOutput(w io.Writer) *LoggerBuilder {
	lb.config.Console = w
	return lb
}

// Config returns the configuration the builder will use
func (lb *LoggerBuilder) Config() LoggerConfig {
	return lb.config
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (zerolog.Logger, error) {
	if err := lb.validateConfig(); err != nil {
		return zerolog.Nop(), err
	}

	writers := lb.createWriters()
	if len(writers) == 0 {
		return zerolog.Nop(), common.NewError("no output writers configured")
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.config.Level).
		With().
		Timestamp()
	if lb.config.RunID != "" {
		ctx = ctx.Str("run_id", lb.config.RunID)
	}
	logger := ctx.Logger()

	zerolog.SetGlobalLevel(lb.config.Level)
	lb.configureStandardLog(logger)

	return logger, nil
}

// validateConfig validates the logger configuration
func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" {
		return common.NewValidationError("file_path", lb.config.FilePath, "file path required when file logging enabled")
	}
	if lb.config.EnableFile && lb.config.MaxSizeMB <= 0 {
		return common.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}
	return nil
}

// createWriters creates the appropriate writers based on configuration
func (lb *LoggerBuilder) createWriters() []io.Writer {
	var writers []io.Writer

	if lb.config.EnableConsole {
		writers = append(writers, lb.factory.CreateConsoleWriter(lb.config.Format, lb.config.Console))
	}
	if lb.config.EnableFile {
		writers = append(writers, lb.factory.CreateFileWriter(lb.config))
	}

	return writers
}

// configureStandardLog routes the standard library logger through zerolog
func (lb *LoggerBuilder) configureStandardLog(logger zerolog.Logger) {
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
}
