// Package browser owns the rod browser lifecycle and adapts rod pages
// to the driver interfaces the outreach core consumes.
package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

// Launch starts a Chromium instance with the stealth evasions applied
// and returns the connected browser plus a cleanup func. A system
// Chrome install is preferred over the downloaded browser; leakless is
// disabled because its helper binary trips antivirus quarantine.
func Launch(headless bool) (*rod.Browser, func(), error) {
	var l *launcher.Launcher
	if path, exists := launcher.LookPath(); exists {
		logger.Info("Using system Chrome browser", "path", path)
		l = launcher.New().Bin(path)
	} else {
		logger.Info("System Chrome not found, using downloaded browser")
		l = launcher.New()
	}

	l = l.Headless(headless).
		Devtools(false).
		Leakless(false)

	userAgent := stealth.RandomizeUserAgent()
	l = l.Set("user-agent", userAgent)

	url, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	if err := stealth.ApplyStealthSettings(browser); err != nil {
		logger.Warn("Failed to apply stealth settings", "error", err)
	}

	incognito, err := browser.Incognito()
	if err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("failed to open incognito context: %w", err)
	}

	logger.Info("Browser launched", "headless", headless, "user_agent", userAgent)

	cleanup := func() {
		logger.Info("Closing browser...")
		if err := browser.Close(); err != nil {
			logger.Warn("Failed to close browser", "error", err)
		}
	}
	return incognito, cleanup, nil
}
