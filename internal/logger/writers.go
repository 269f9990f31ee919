package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterStrategy defines interface for creating log writers
type WriterStrategy interface {
	CreateWriter(output io.Writer) io.Writer
}

// JSONWriterStrategy creates JSON formatted writers
type JSONWriterStrategy struct{}

// CreateWriter creates a JSON writer
func (jws *JSONWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return output
}

// ConsoleWriterStrategy creates console formatted writers
type ConsoleWriterStrategy struct {
	NoColor bool
}

// CreateWriter creates a console writer
func (cws *ConsoleWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    cws.NoColor,
	}
}

// TextWriterStrategy creates uncoloured console writers
type TextWriterStrategy struct{}

// CreateWriter creates a text writer
func (tws *TextWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
}

// WriterFactory creates writers based on format
type WriterFactory struct {
	strategies map[LogFormat]WriterStrategy
}

// NewWriterFactory creates a new writer factory
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{
		strategies: map[LogFormat]WriterStrategy{
			FormatJSON:    &JSONWriterStrategy{},
			FormatConsole: &ConsoleWriterStrategy{NoColor: false},
			FormatText:    &TextWriterStrategy{},
		},
	}
}

// CreateConsoleWriter creates a console writer on out, or os.Stderr when out is nil
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat, out io.Writer) io.Writer {
	if out == nil {
		out = os.Stderr
	}
	strategy, exists := wf.strategies[format]
	if !exists {
		strategy = &ConsoleWriterStrategy{NoColor: false}
	}
	return strategy.CreateWriter(out)
}

// CreateFileWriter creates a rotating file writer. Console format is written
// without colour codes.
func (wf *WriterFactory) CreateFileWriter(cfg LoggerConfig) io.Writer {
	finalPath := BuildLogPath(cfg)

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		finalPath = cfg.FilePath
	}

	rotating := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    cfg.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: cfg.MaxBackups,
	}

	if cfg.Format == FormatConsole {
		return (&ConsoleWriterStrategy{NoColor: true}).CreateWriter(rotating)
	}
	strategy, exists := wf.strategies[cfg.Format]
	if !exists {
		strategy = &JSONWriterStrategy{}
	}
	return strategy.CreateWriter(rotating)
}

// BuildLogPath returns the log file path, nested under runs/<id>/ when
// run directories are enabled and a run id is set.
func BuildLogPath(cfg LoggerConfig) string {
	if !cfg.UseRunDirs || cfg.RunID == "" {
		return cfg.FilePath
	}
	baseDir := filepath.Dir(cfg.FilePath)
	fileName := filepath.Base(cfg.FilePath)
	return filepath.Join(baseDir, "runs", cfg.RunID, fileName)
}
