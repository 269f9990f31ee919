package logger

import (
	"io"
	"strings"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/config"
	"github.com/rs/zerolog"
)

// LoggerConfig holds configuration for logger setup
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int

	// RunID places the log file under runs/<id>/ when UseRunDirs is set.
	RunID      string
	UseRunDirs bool

	// Console overrides os.Stderr as the console destination.
	Console io.Writer
}

// LogFormat represents available log formats
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

// String returns string representation of LogFormat
func (lf LogFormat) String() string {
	switch lf {
	case FormatJSON:
		return "json"
	case FormatConsole:
		return "console"
	case FormatText:
		return "text"
	default:
		return "console"
	}
}

// DefaultLoggerConfig returns default logger configuration
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		EnableFile:    false,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}

// FromLogConfig converts the file configuration section to a LoggerConfig.
// An unparsable level falls back to info.
func FromLogConfig(cfg config.LogConfig) LoggerConfig {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := DefaultLoggerConfig()
	out.Level = level
	out.Format = ParseFormat(cfg.LogFormat)
	out.EnableFile = cfg.LogFile != ""
	out.FilePath = cfg.LogFile
	out.UseRunDirs = cfg.UseRunDirs
	if cfg.MaxLogSizeMB > 0 {
		out.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		out.MaxBackups = cfg.MaxLogBackups
	}
	return out
}

// ParseLevel parses string log level to zerolog.Level
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if strings.TrimSpace(levelStr) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat parses string format to LogFormat
func ParseFormat(formatStr string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(formatStr)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}
