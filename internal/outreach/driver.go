// Package outreach decides which outreach action applies to a profile
// page and executes it through ranked fallback strategies.
//
// The package never talks to a browser directly. Everything goes
// through the Page/Element driver interfaces so the decision logic can
// be exercised against a fake driver; internal/browser provides the
// rod-backed implementation.
package outreach

import "time"

// Box is an element's position and size in page coordinates.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Element is a single located control on the page.
type Element interface {
	Click() error
	// Input focuses the element and injects text. Implementations are
	// expected to pace keystrokes; the composer only cares about the
	// resulting content.
	Input(text string) error
	Clear() error
	Text() (string, error)
	Visible() (bool, error)
	Enabled() (bool, error)
	Box() (Box, error)
}

// Page is the browser driver surface the core consumes. Any call may
// fail with a structural error (element not found, wait exceeded) or a
// session error (driver connection lost).
type Page interface {
	Navigate(url string) error
	WaitLoad() error
	URL() string
	// Element resolves a CSS selector, waiting up to timeout.
	Element(selector string, timeout time.Duration) (Element, error)
	// ElementMatching resolves a CSS selector whose rendered text
	// matches the given regular expression.
	ElementMatching(selector, pattern string, timeout time.Duration) (Element, error)
	// Has reports whether the selector currently resolves, without
	// waiting.
	Has(selector string) (bool, error)
	PressEscape() error
	ScrollTop() error
}

// Timing holds the fixed per-step wait budgets for one dispatch. Zero
// values make every wait immediate, which is what tests use.
type Timing struct {
	// Find bounds each selector-candidate lookup while acting.
	Find time.Duration
	// Probe bounds each read-only status-detection lookup.
	Probe time.Duration
	// Settle is slept after navigation and after clicks that open
	// menus or dialogs.
	Settle time.Duration
	// Verify is slept between clicking submit and checking whether the
	// compose dialog is gone.
	Verify time.Duration
}

// DefaultTiming mirrors the waits the original flows used against the
// live site.
func DefaultTiming() Timing {
	return Timing{
		Find:   3 * time.Second,
		Probe:  2 * time.Second,
		Settle: 2 * time.Second,
		Verify: 3 * time.Second,
	}
}

func (t Timing) settle() { time.Sleep(t.Settle) }
