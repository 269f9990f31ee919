package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/rs/zerolog"

	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	LogConfig     LogConfig     `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	BrowserConfig BrowserConfig `json:"browser_config,omitempty" yaml:"browser_config,omitempty"`
	MonitorConfig MonitorConfig `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	RunConfig     RunConfig     `json:"run_config,omitempty" yaml:"run_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:     NewDefaultLogConfig(),
		BrowserConfig: NewDefaultBrowserConfig(),
		MonitorConfig: NewDefaultMonitorConfig(),
		RunConfig:     NewDefaultRunConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml. Values missing from the
// file keep their defaults.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()
	fileManager := common.NewFileManager(logger)

	if providedPath != "" && !fileManager.FileExists(providedPath) {
		return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	data, err := loadConfigFileContent(fileManager, filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Configuration loaded")
	return cfg, nil
}

// loadConfigFileContent reads the config file, refusing oversized files
func loadConfigFileContent(fileManager *common.FileManager, filePath string) ([]byte, error) {
	return fileManager.ReadFile(filePath, maxConfigFileSize)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// SaveGlobalConfig writes cfg to filePath, as YAML or JSON depending on the extension
func SaveGlobalConfig(cfg *GlobalConfig, filePath string, logger zerolog.Logger) error {
	var (
		data []byte
		err  error
	)
	if isYAMLFile(filepath.Ext(filePath)) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return common.WrapError(err, "failed to marshal config")
	}
	return common.NewFileManager(logger).WriteFile(filePath, data, 0644)
}
