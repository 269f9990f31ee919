package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/config"
	"github.com/aleister1102/feedtap/internal/redact"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// ErrNotRunning is returned when a page is requested before Start or after Stop.
var ErrNotRunning = errors.New("browser manager not running")

// Manager owns the Chromium instance that renders the feed. It either launches
// a local browser or attaches to one already listening on ControlURL.
type Manager struct {
	config    config.BrowserConfig
	logger    zerolog.Logger
	redactor  *redact.Redactor
	launcher  *launcher.Launcher
	browser   *rod.Browser
	mutex     sync.Mutex
	isRunning bool
}

// NewManager creates a new browser manager
func NewManager(cfg config.BrowserConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		config:   cfg,
		logger:   logger.With().Str("component", "BrowserManager").Logger(),
		redactor: redact.New(),
	}
}

// Start launches or attaches to the browser
func (m *Manager) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.isRunning {
		return nil
	}

	controlURL, err := m.resolveControlURL()
	if err != nil {
		return err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		m.cleanupLauncher()
		return fmt.Errorf("failed to connect browser: %w", err)
	}

	m.browser = browser
	m.isRunning = true
	m.logger.Info().
		Bool("attached", m.config.ControlURL != "").
		Bool("headless", m.config.Headless).
		Msg("Browser manager started")
	return nil
}

// resolveControlURL returns the DevTools websocket URL, launching a browser
// when none is configured.
func (m *Manager) resolveControlURL() (string, error) {
	if m.config.ControlURL != "" {
		u, err := launcher.ResolveURL(m.config.ControlURL)
		if err != nil {
			return "", fmt.Errorf("failed to resolve control url: %w", err)
		}
		return u, nil
	}

	l := newLauncher(m.config)
	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	m.launcher = l
	return u, nil
}

// newLauncher applies the browser configuration to a fresh launcher
func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}

	l = l.
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	// user-defined args, "name" or "name=value"
	for _, arg := range cfg.BrowserArgs {
		name, value := splitArg(arg)
		if name == "" {
			continue
		}
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}
	return l
}

func splitArg(arg string) (string, string) {
	name, value, _ := strings.Cut(strings.TrimLeft(strings.TrimSpace(arg), "-"), "=")
	return name, value
}

// Stop closes the browser and the launcher
func (m *Manager) Stop() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return nil
	}

	var closeErr error
	// an attached browser belongs to someone else and stays open
	if m.browser != nil && m.launcher != nil {
		closeErr = common.WrapError(m.browser.Close(), "failed to close browser")
	}
	m.cleanupLauncher()

	m.browser = nil
	m.isRunning = false
	m.logger.Info().Msg("Browser manager stopped")
	return closeErr
}

// navigationError marks a page load cut short by the load timeout with
// common.ErrTimeout. Cancellation of the caller's ctx is passed through as is.
func navigationError(ctx context.Context, err error, timeout time.Duration, format, safeURL string) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return common.WrapErrorf(common.ErrTimeout, format+" within %s", safeURL, timeout)
	}
	return common.WrapErrorf(err, format, safeURL)
}

func (m *Manager) cleanupLauncher() {
	if m.launcher != nil {
		m.launcher.Cleanup()
		m.launcher = nil
	}
}

// IsRunning reports whether the manager holds a connected browser
func (m *Manager) IsRunning() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.isRunning
}

// NewPage opens a blank tab with the configured viewport and user agent.
// Callers subscribe to its responses before navigating.
func (m *Manager) NewPage(ctx context.Context) (*rod.Page, error) {
	m.mutex.Lock()
	browser := m.browser
	running := m.isRunning
	m.mutex.Unlock()

	if !running || browser == nil {
		return nil, ErrNotRunning
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if m.config.WindowWidth > 0 && m.config.WindowHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:  m.config.WindowWidth,
			Height: m.config.WindowHeight,
		}); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to set viewport")
		}
	}

	if m.config.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: m.config.UserAgent,
		}); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	return page, nil
}

// Navigate loads url in page and waits for the load event, bounded by the
// configured page load timeout.
func (m *Manager) Navigate(ctx context.Context, page *rod.Page, url string) error {
	timeout := time.Duration(m.config.PageLoadTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultBrowserPageLoadTimeoutSecs) * time.Second
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	safeURL := m.redactor.URL(url)
	p := page.Context(timeoutCtx)
	if err := p.Navigate(url); err != nil {
		return navigationError(ctx, err, timeout, "failed to navigate to %s", safeURL)
	}
	if err := p.WaitLoad(); err != nil {
		return navigationError(ctx, err, timeout, "failed to load %s", safeURL)
	}
	m.logger.Debug().Str("url", safeURL).Msg("Page loaded")
	return nil
}
