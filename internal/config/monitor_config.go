package config

// MonitorConfig defines configuration for the API response monitor
type MonitorConfig struct {
	// Endpoints is the default active set; empty means every endpoint with a decoder.
	Endpoints              []string `json:"endpoints,omitempty" yaml:"endpoints,omitempty" validate:"omitempty,endpoints"`
	DefaultWaitTimeoutSecs int      `json:"default_wait_timeout_secs,omitempty" yaml:"default_wait_timeout_secs,omitempty" validate:"omitempty,min=1"`
	PollIntervalMs         int      `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"omitempty,min=10,max=5000"`
	QueueWarnDepth         int      `json:"queue_warn_depth,omitempty" yaml:"queue_warn_depth,omitempty" validate:"omitempty,min=1"`
	SiteDomain             string   `json:"site_domain,omitempty" yaml:"site_domain,omitempty" validate:"omitempty,hostname"`
	RedactFields           []string `json:"redact_fields,omitempty" yaml:"redact_fields,omitempty" validate:"omitempty,dive,required"`

	// LogBodyPreviewBytes caps the redacted body logged at debug level; negative disables the cap.
	LogBodyPreviewBytes int `json:"log_body_preview_bytes,omitempty" yaml:"log_body_preview_bytes,omitempty"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Endpoints:              []string{},
		DefaultWaitTimeoutSecs: DefaultMonitorWaitTimeoutSecs,
		PollIntervalMs:         DefaultMonitorPollIntervalMs,
		QueueWarnDepth:         DefaultMonitorQueueWarnDepth,
		SiteDomain:             DefaultMonitorSiteDomain,
		RedactFields:           []string{},
		LogBodyPreviewBytes:    DefaultMonitorLogBodyPreviewBytes,
	}
}
