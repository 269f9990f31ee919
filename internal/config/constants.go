package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Browser Defaults
	DefaultBrowserWindowWidth         = 1440
	DefaultBrowserWindowHeight        = 900
	DefaultBrowserPageLoadTimeoutSecs = 30
	DefaultBrowserUserAgent           = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// Monitor Defaults
	DefaultMonitorWaitTimeoutSecs     = 300
	DefaultMonitorPollIntervalMs      = 100
	DefaultMonitorQueueWarnDepth      = 256
	DefaultMonitorLogBodyPreviewBytes = 512
	DefaultMonitorSiteDomain          = ""

	// Run Defaults
	DefaultRunStartURL      = "https://www.xiaohongshu.com/explore"
	DefaultRunWaitEndpoint  = "feed-list"
	DefaultRunExpectedCount = 1
	DefaultRunMaxAttempts   = 3

	// ConfigPathEnv overrides the config file search.
	ConfigPathEnv = "FEEDTAP_CONFIG_PATH"

	maxConfigFileSize = 10 * 1024 * 1024
)
