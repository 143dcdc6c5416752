// Package session owns the browser session: one logged-in LinkedIn
// tab, built lazily and rebuilt after the driver connection breaks.
// All access goes through Manager, which serializes callers.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

const (
	loginURL        = "https://www.linkedin.com/login"
	feedURL         = "https://www.linkedin.com/feed/"
	sessionDir      = "./sessions"
	cookiesFile     = "cookies.json"
	maxLoginRetries = 3
)

// Credentials holds the LinkedIn account the session signs in with.
type Credentials struct {
	Email    string
	Password string
}

// Options configures how the session's browser runs and how pages
// built from it pace their interactions.
type Options struct {
	Headless bool
	Pacing   browser.Pacing
}

// Manager builds the browser session on first use and hands out the
// page behind a lock. A failed health check tears the session down so
// the next acquisition starts fresh.
type Manager struct {
	mu    sync.Mutex
	creds Credentials
	opts  Options

	browser  *rod.Browser
	cleanup  func()
	page     *rod.Page
	loggedIn bool
}

func NewManager(creds Credentials, opts Options) *Manager {
	return &Manager{creds: creds, opts: opts}
}

// Acquire returns a logged-in page, building the session if none
// exists. The page stays valid until Invalidate or Close.
func (m *Manager) Acquire() (outreach.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.page != nil {
		if m.healthy() {
			return browser.NewPage(m.page, m.opts.Pacing), nil
		}
		logger.Warn("Browser session unresponsive, rebuilding")
		m.teardown()
	}

	if err := m.build(); err != nil {
		return nil, err
	}

	return browser.NewPage(m.page, m.opts.Pacing), nil
}

// Login forces a fresh session build, replacing any existing one.
func (m *Manager) Login() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardown()
	return m.build()
}

// Invalidate discards the session so the next Acquire rebuilds it.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger.Info("Invalidating browser session")
	m.teardown()
}

// Close shuts the browser down for good.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardown()
}

// LoggedIn reports whether a live, signed-in session exists.
func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loggedIn && m.page != nil && m.healthy()
}

// healthy probes the driver connection. Callers hold m.mu.
func (m *Manager) healthy() bool {
	if m.page == nil {
		return false
	}
	_, err := m.page.Info()
	return err == nil
}

func (m *Manager) teardown() {
	if m.page != nil {
		_ = m.page.Close()
		m.page = nil
	}
	if m.cleanup != nil {
		m.cleanup()
		m.cleanup = nil
	}
	m.browser = nil
	m.loggedIn = false
}

// build launches the browser and signs in. Callers hold m.mu.
func (m *Manager) build() error {
	b, cleanup, err := browser.Launch(m.opts.Headless)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	m.browser = b
	m.cleanup = cleanup

	if err := m.login(); err != nil {
		m.teardown()
		return err
	}

	return nil
}

func (m *Manager) login() error {
	logger.Info("Starting LinkedIn login", "email", m.creds.Email)

	// A saved cookie jar may spare us the password flow entirely.
	if err := m.loadCookies(); err == nil {
		page, err := m.browser.Page(proto.TargetCreateTarget{URL: ""})
		if err != nil {
			return fmt.Errorf("failed to open page: %w", err)
		}
		m.preparePage(page)

		if err := page.Navigate(feedURL); err == nil {
			_ = page.WaitLoad()
			time.Sleep(2 * time.Second)
			if isLoggedIn(page) {
				logger.Info("Restored saved session")
				warmUp(page)
				m.page = page
				m.loggedIn = true
				return nil
			}
		}

		logger.Warn("Saved session expired, proceeding with fresh login")
		_ = page.Close()
	}

	var lastErr error
	for attempt := 1; attempt <= maxLoginRetries; attempt++ {
		logger.Info("Login attempt", "attempt", attempt, "max_retries", maxLoginRetries)

		err := m.performLogin()
		if err == nil {
			logger.Info("Login successful")
			return nil
		}

		lastErr = err
		logger.Warn("Login attempt failed", "attempt", attempt, "error", err)

		if attempt < maxLoginRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			logger.Info("Retrying after backoff", "duration", backoff)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("login failed after %d attempts: %w", maxLoginRetries, lastErr)
}

func (m *Manager) performLogin() error {
	page, err := m.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	m.preparePage(page)

	if err := page.Navigate(loginURL); err != nil {
		_ = page.Close()
		return fmt.Errorf("failed to navigate to login page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return fmt.Errorf("failed to wait for login page: %w", err)
	}

	time.Sleep(stealth.RandomDelay(1*time.Second, 3*time.Second))

	if err := m.fillCredentials(page); err != nil {
		_ = page.Close()
		return err
	}

	time.Sleep(stealth.RandomDelay(1*time.Second, 2*time.Second))

	submit, err := page.Element("button[type='submit']")
	if err != nil {
		_ = page.Close()
		return fmt.Errorf("sign in button not found: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		_ = page.Close()
		return fmt.Errorf("failed to click sign in button: %w", err)
	}

	// Give the redirect time to land.
	time.Sleep(5 * time.Second)

	if !isLoggedIn(page) {
		challenge := detectChallenge(page)
		_ = page.Close()
		if challenge != "" {
			return fmt.Errorf("login blocked by security challenge: %s", challenge)
		}
		return fmt.Errorf("login did not reach the feed")
	}

	m.saveCookies(page)
	warmUp(page)

	m.page = page
	m.loggedIn = true
	return nil
}

// warmUp browses the feed briefly so the session's first recorded
// activity is reading, not an outbound action.
func warmUp(page *rod.Page) {
	if err := stealth.ScrollFeed(page, 2); err != nil {
		logger.Debug("Feed warm-up scroll failed", "error", err)
	}
}

func (m *Manager) fillCredentials(page *rod.Page) error {
	emailField, err := page.Element("#username")
	if err != nil {
		return fmt.Errorf("email field not found: %w", err)
	}
	if err := emailField.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click email field: %w", err)
	}
	time.Sleep(stealth.ShortDelay())
	if err := typeSlowly(emailField, m.creds.Email); err != nil {
		return fmt.Errorf("failed to type email: %w", err)
	}

	stealth.ThinkPause()

	passwordField, err := page.Element("#password")
	if err != nil {
		return fmt.Errorf("password field not found: %w", err)
	}
	if err := passwordField.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click password field: %w", err)
	}
	time.Sleep(stealth.ShortDelay())
	if err := typeSlowly(passwordField, m.creds.Password); err != nil {
		return fmt.Errorf("failed to type password: %w", err)
	}

	return nil
}

func typeSlowly(el *rod.Element, text string) error {
	for i, char := range text {
		if err := el.Input(string(char)); err != nil {
			return err
		}
		time.Sleep(stealth.KeystrokeDelay(i))
	}
	return nil
}

func (m *Manager) preparePage(page *rod.Page) {
	if err := stealth.DisableAutomationFlags(page); err != nil {
		logger.Warn("Failed to mask automation flags", "error", err)
	}
	if err := stealth.SetRealisticViewport(page); err != nil {
		logger.Warn("Failed to set viewport", "error", err)
	}
}

// detectChallenge names the security challenge blocking the login, or
// returns "". With no operator at a keyboard the service cannot solve
// these; the caller gets the reason instead.
func detectChallenge(page *rod.Page) string {
	twoFactorSelectors := []string{
		"#input__phone_verification_pin",
		"input[name='pin']",
		"#two-step-challenge",
	}
	for _, selector := range twoFactorSelectors {
		if has, _, _ := page.Has(selector); has {
			return "two-factor verification"
		}
	}

	if res, err := page.Eval(`() => document.body.innerText`); err == nil {
		text := strings.ToLower(res.Value.String())
		for _, keyword := range []string{"unusual activity", "verify", "confirm your identity"} {
			if strings.Contains(text, keyword) {
				return "identity verification"
			}
		}
	}

	return ""
}

// isLoggedIn checks for chrome that only renders behind a session.
func isLoggedIn(page *rod.Page) bool {
	selectors := []string{
		"#global-nav",
		".global-nav__me",
		"a[href*='/feed/']",
	}

	for _, selector := range selectors {
		if has, _, _ := page.Has(selector); has {
			return true
		}
	}

	info, err := page.Info()
	if err != nil {
		return false
	}
	return strings.Contains(info.URL, "/feed") || strings.Contains(info.URL, "/mynetwork")
}

func (m *Manager) saveCookies(page *rod.Page) {
	cookies, err := page.Cookies(nil)
	if err != nil {
		logger.Warn("Failed to read cookies", "error", err)
		return
	}

	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		logger.Warn("Failed to create session directory", "error", err)
		return
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		logger.Warn("Failed to marshal cookies", "error", err)
		return
	}

	path := filepath.Join(sessionDir, cookiesFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		logger.Warn("Failed to write cookies file", "error", err)
		return
	}

	logger.Info("Session cookies saved", "path", path)
}

func (m *Manager) loadCookies() error {
	path := filepath.Join(sessionDir, cookiesFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("no saved session: %w", err)
	}

	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("failed to unmarshal cookies: %w", err)
	}

	params := make([]*proto.NetworkCookieParam, len(cookies))
	for i, cookie := range cookies {
		params[i] = &proto.NetworkCookieParam{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HTTPOnly,
			SameSite: cookie.SameSite,
			Expires:  cookie.Expires,
		}
	}

	if err := m.browser.SetCookies(params); err != nil {
		return fmt.Errorf("failed to apply cookies: %w", err)
	}

	return nil
}
