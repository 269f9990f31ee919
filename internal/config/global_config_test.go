package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, DefaultLogLevel, cfg.LogConfig.LogLevel)
	assert.True(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, DefaultMonitorWaitTimeoutSecs, cfg.MonitorConfig.DefaultWaitTimeoutSecs)
	assert.Equal(t, DefaultMonitorPollIntervalMs, cfg.MonitorConfig.PollIntervalMs)
	assert.Empty(t, cfg.MonitorConfig.Endpoints)
	assert.Equal(t, DefaultRunWaitEndpoint, cfg.RunConfig.WaitEndpoint)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Chdir(t.TempDir())

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, NewDefaultGlobalConfig(), cfg)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	configData := `{
		"log_config": {
			"log_level": "debug"
		},
		"monitor_config": {
			"endpoints": ["feed-list", "like-action"],
			"poll_interval_ms": 250
		}
	}`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, []string{"feed-list", "like-action"}, cfg.MonitorConfig.Endpoints)
	assert.Equal(t, 250, cfg.MonitorConfig.PollIntervalMs)
	// untouched sections keep their defaults
	assert.Equal(t, DefaultMonitorQueueWarnDepth, cfg.MonitorConfig.QueueWarnDepth)
	assert.Equal(t, DefaultRunStartURL, cfg.RunConfig.StartURL)
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
log_config:
  log_format: json
browser_config:
  headless: false
  window_width: 1280
monitor_config:
  site_domain: example.com
  redact_fields:
    - session_id
run_config:
  wait_endpoint: search-results
  expected_count: 3
`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogConfig.LogFormat)
	assert.False(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, 1280, cfg.BrowserConfig.WindowWidth)
	assert.Equal(t, "example.com", cfg.MonitorConfig.SiteDomain)
	assert.Equal(t, []string{"session_id"}, cfg.MonitorConfig.RedactFields)
	assert.Equal(t, "search-results", cfg.RunConfig.WaitEndpoint)
	assert.Equal(t, 3, cfg.RunConfig.ExpectedCount)
}

func TestLoadGlobalConfig_EnvPath(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("run_config:\n  max_attempts: 5\n"), 0644))
	t.Setenv(ConfigPathEnv, configFile)

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.RunConfig.MaxAttempts)
}

func TestLoadGlobalConfig_InvalidContent(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{
			name:     "invalid json",
			file:     "invalid.json",
			content:  `{"log_config": {},}`,
			contains: "failed to unmarshal JSON",
		},
		{
			name:     "invalid yaml",
			file:     "invalid.yaml",
			content:  "log_config:\n  log_level: info\n    bad_indent: value\n",
			contains: "failed to unmarshal YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(configFile, []byte(tt.content), 0644))

			cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			cfg := NewDefaultGlobalConfig()
			cfg.MonitorConfig.Endpoints = []string{"comment-page"}
			cfg.RunConfig.OutputFile = "summary.json"

			require.NoError(t, SaveGlobalConfig(cfg, path, zerolog.Nop()))

			loaded, err := LoadGlobalConfig(path, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, []string{"comment-page"}, loaded.MonitorConfig.Endpoints)
			assert.Equal(t, "summary.json", loaded.RunConfig.OutputFile)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		section string
		field   string
	}{
		{
			name:    "unknown log level",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "verbose" },
			section: "LogConfig",
			field:   "LogLevel",
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" },
			section: "LogConfig",
			field:   "LogFormat",
		},
		{
			name:    "unknown endpoint in active set",
			mutate:  func(cfg *GlobalConfig) { cfg.MonitorConfig.Endpoints = []string{"feed-list", "timeline"} },
			section: "MonitorConfig",
			field:   "Endpoints",
		},
		{
			name:    "poll interval too small",
			mutate:  func(cfg *GlobalConfig) { cfg.MonitorConfig.PollIntervalMs = 1 },
			section: "MonitorConfig",
			field:   "PollIntervalMs",
		},
		{
			name:    "unknown wait endpoint",
			mutate:  func(cfg *GlobalConfig) { cfg.RunConfig.WaitEndpoint = "home" },
			section: "RunConfig",
			field:   "WaitEndpoint",
		},
		{
			name:    "missing chrome binary",
			mutate:  func(cfg *GlobalConfig) { cfg.BrowserConfig.ChromePath = "/nonexistent/chrome" },
			section: "BrowserConfig",
			field:   "ChromePath",
		},
		{
			name:    "bad site domain",
			mutate:  func(cfg *GlobalConfig) { cfg.MonitorConfig.SiteDomain = "not a host" },
			section: "MonitorConfig",
			field:   "SiteDomain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)

			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

			var cfgErr *common.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.section, cfgErr.Section)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateConfig_ReportsEveryField(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.LogConfig.LogLevel = "verbose"
	cfg.RunConfig.WaitEndpoint = "home"

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "multiple errors occurred")
	assert.Contains(t, err.Error(), "section 'LogConfig', field 'LogLevel'")
	assert.Contains(t, err.Error(), "section 'RunConfig', field 'WaitEndpoint'")
	assert.Contains(t, err.Error(), "actual: 'home'")
}

func TestValidateConfig_Nil(t *testing.T) {
	err := ValidateConfig(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
