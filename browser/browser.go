// Package browser provides the automation surface consumed by the warm-up
// core: a narrow Page interface, a go-rod implementation of it, and the
// launcher that owns the underlying browser process.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
)

// Browser wraps the Rod browser with additional functionality
type Browser struct {
	config  *config.Config
	logger  *logger.Logger
	browser *rod.Browser
	page    *rod.Page
}

// NewBrowser creates a new browser instance
func NewBrowser(cfg *config.Config, log *logger.Logger) *Browser {
	return &Browser{
		config: cfg,
		logger: log.WithModule("browser"),
	}
}

// Launch starts the browser with a persistent profile directory so an
// existing logged-in session is reused.
func (b *Browser) Launch() error {
	b.logger.Info("Launching browser")

	if b.config.Browser.UserDataDir != "" {
		absPath, err := filepath.Abs(b.config.Browser.UserDataDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for user data dir: %w", err)
		}
		if err := os.MkdirAll(absPath, 0755); err != nil {
			return fmt.Errorf("failed to create user data directory: %w", err)
		}
		b.config.Browser.UserDataDir = absPath
	}

	l := launcher.New().
		Headless(b.config.Browser.Headless).
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", fmt.Sprintf("%d,%d", b.config.Browser.ViewportWidth, b.config.Browser.ViewportHeight))

	if b.config.Browser.UserDataDir != "" {
		l = l.UserDataDir(b.config.Browser.UserDataDir)
	}

	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b.browser = rod.New().
		ControlURL(url).
		Timeout(b.config.GetTimeout())

	if b.config.Browser.SlowMotion > 0 {
		b.browser = b.browser.SlowMotion(time.Duration(b.config.Browser.SlowMotion) * time.Millisecond)
	}

	if err := b.browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.logger.Info("Browser launched successfully")
	return b.createPage()
}

func (b *Browser) createPage() error {
	var err error
	b.page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	err = b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.config.Browser.ViewportWidth,
		Height:            b.config.Browser.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
	if err != nil {
		b.logger.WithError(err).Warn("Failed to set viewport")
	}

	return nil
}

// Page returns the automation surface for the current tab.
func (b *Browser) Page() Page {
	return NewRodPage(b.page, b.config.GetQueryTimeout(), b.logger)
}

// TakeScreenshot takes a screenshot of the current page
func (b *Browser) TakeScreenshot(filename string) error {
	data, err := b.page.Screenshot(true, nil)
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}

	b.logger.WithField("filename", filename).Info("Screenshot saved")
	return nil
}

// Close closes the browser
func (b *Browser) Close() error {
	b.logger.Info("Closing browser")

	if b.page != nil {
		b.page.Close()
	}

	if b.browser != nil {
		return b.browser.Close()
	}

	return nil
}
