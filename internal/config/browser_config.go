package config

// BrowserConfig defines how the Chromium instance driving the feed is launched
type BrowserConfig struct {
	ChromePath          string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty" validate:"omitempty,fileexists"`
	UserDataDir         string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	ControlURL          string   `json:"control_url,omitempty" yaml:"control_url,omitempty" validate:"omitempty,url"`
	Headless            bool     `json:"headless" yaml:"headless"`
	NoSandbox           bool     `json:"no_sandbox" yaml:"no_sandbox"`
	WindowWidth         int      `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"omitempty,min=100"`
	WindowHeight        int      `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"omitempty,min=100"`
	PageLoadTimeoutSecs int      `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1"`
	UserAgent           string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	DisableImages       bool     `json:"disable_images" yaml:"disable_images"`
	BrowserArgs         []string `json:"browser_args,omitempty" yaml:"browser_args,omitempty"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:            true,
		NoSandbox:           false,
		WindowWidth:         DefaultBrowserWindowWidth,
		WindowHeight:        DefaultBrowserWindowHeight,
		PageLoadTimeoutSecs: DefaultBrowserPageLoadTimeoutSecs,
		UserAgent:           DefaultBrowserUserAgent,
		DisableImages:       true,
		BrowserArgs:         []string{"disable-dev-shm-usage", "disable-gpu"},
	}
}
