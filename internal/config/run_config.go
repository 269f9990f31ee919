package config

// RunConfig drives the command line capture run
type RunConfig struct {
	StartURL      string `json:"start_url,omitempty" yaml:"start_url,omitempty" validate:"omitempty,url"`
	WaitEndpoint  string `json:"wait_endpoint,omitempty" yaml:"wait_endpoint,omitempty" validate:"omitempty,endpoint"`
	ExpectedCount int    `json:"expected_count,omitempty" yaml:"expected_count,omitempty" validate:"omitempty,min=1"`
	MaxAttempts   int    `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"omitempty,min=1,max=20"`
	OutputFile    string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
}

// NewDefaultRunConfig creates default run configuration
func NewDefaultRunConfig() RunConfig {
	return RunConfig{
		StartURL:      DefaultRunStartURL,
		WaitEndpoint:  DefaultRunWaitEndpoint,
		ExpectedCount: DefaultRunExpectedCount,
		MaxAttempts:   DefaultRunMaxAttempts,
	}
}
