package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/feedtap/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = ""

	_, err := New(cfg)
	require.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{" error ", zerolog.ErrorLevel, false},
		{"verbose", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatConsole, ParseFormat("console"))
	assert.Equal(t, FormatConsole, ParseFormat("unknown"))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestFromLogConfig(t *testing.T) {
	got := FromLogConfig(config.LogConfig{
		LogFile:    "logs/feedtap.log",
		LogFormat:  "json",
		LogLevel:   "nonsense",
		UseRunDirs: true,
	})

	assert.Equal(t, zerolog.InfoLevel, got.Level)
	assert.Equal(t, FormatJSON, got.Format)
	assert.True(t, got.EnableConsole)
	assert.True(t, got.EnableFile)
	assert.Equal(t, config.DefaultMaxLogSizeMB, got.MaxSizeMB)
	assert.Equal(t, config.DefaultMaxLogBackups, got.MaxBackups)
	assert.True(t, got.UseRunDirs)
}

func TestBuildLogPath(t *testing.T) {
	base := LoggerConfig{FilePath: filepath.Join("logs", "feedtap.log")}
	assert.Equal(t, base.FilePath, BuildLogPath(base))

	base.RunID = "abc"
	assert.Equal(t, base.FilePath, BuildLogPath(base), "run id alone does not move the file")

	base.UseRunDirs = true
	assert.Equal(t, filepath.Join("logs", "runs", "abc", "feedtap.log"), BuildLogPath(base))
}

func TestBuilder_RunIDField(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{LogFormat: "json", LogLevel: "debug"}).
		WithConsoleOutput(&buf).
		WithRunID("run-1").
		Build()
	require.NoError(t, err)

	log.Debug().Str("component", "Test").Msg("Hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "Hello", entry["message"])
	assert.Equal(t, "debug", entry["level"])
}

func TestBuilder_FileOutputInRunDir(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{
			LogFile:    filepath.Join(dir, "feedtap.log"),
			LogFormat:  "json",
			LogLevel:   "info",
			UseRunDirs: true,
		}).
		WithConsoleOutput(&console).
		WithRunID("s1").
		Build()
	require.NoError(t, err)

	log.Info().Msg("Written to file")

	data, err := os.ReadFile(filepath.Join(dir, "runs", "s1", "feedtap.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Written to file")
	assert.Contains(t, console.String(), "Written to file")
}

func TestBuilder_Validation(t *testing.T) {
	_, err := NewLoggerBuilder().WithLoggerConfig(LoggerConfig{EnableFile: true}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file path required")

	_, err = NewLoggerBuilder().WithLoggerConfig(LoggerConfig{}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output writers")
}
