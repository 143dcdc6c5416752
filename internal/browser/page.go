package browser

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

// Pacing is the human-behavior envelope for one page: how often typing
// produces a corrected typo and how long the cursor lingers on a
// control before clicking. Zero values disable the behavior.
type Pacing struct {
	TypoRate       float64
	MinActionDelay time.Duration
	MaxActionDelay time.Duration
}

// DefaultPacing matches the sample configuration.
func DefaultPacing() Pacing {
	return Pacing{
		TypoRate:       0.02,
		MinActionDelay: 500 * time.Millisecond,
		MaxActionDelay: 2 * time.Second,
	}
}

// Page adapts a rod page to the outreach.Page driver interface.
type Page struct {
	p      *rod.Page
	pacing Pacing
}

func NewPage(p *rod.Page, pacing Pacing) *Page {
	return &Page{p: p, pacing: pacing}
}

// Rod returns the underlying rod page for callers that need raw
// driver access (session health checks, screenshots).
func (pg *Page) Rod() *rod.Page { return pg.p }

func (pg *Page) Navigate(url string) error {
	return classify("navigate", pg.p.Navigate(url))
}

func (pg *Page) WaitLoad() error {
	return classify("page load", pg.p.WaitLoad())
}

func (pg *Page) URL() string {
	info, err := pg.p.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (pg *Page) Element(selector string, timeout time.Duration) (outreach.Element, error) {
	el, err := pg.p.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, classify(selector, err)
	}
	return &element{el: el.CancelTimeout(), page: pg}, nil
}

func (pg *Page) ElementMatching(selector, pattern string, timeout time.Duration) (outreach.Element, error) {
	el, err := pg.p.Timeout(timeout).ElementR(selector, pattern)
	if err != nil {
		return nil, classify(selector, err)
	}
	return &element{el: el.CancelTimeout(), page: pg}, nil
}

func (pg *Page) Has(selector string) (bool, error) {
	has, _, err := pg.p.Has(selector)
	if err != nil {
		return false, classify(selector, err)
	}
	return has, nil
}

func (pg *Page) PressEscape() error {
	return interactionErr("escape key", pg.p.Keyboard.Press(input.Escape))
}

func (pg *Page) ScrollTop() error {
	_, err := pg.p.Eval(`() => window.scrollTo({top: 0, behavior: 'smooth'})`)
	return interactionErr("scroll to top", err)
}

// element adapts a rod element. It keeps the owning page around for
// keyboard access during typo correction.
type element struct {
	el   *rod.Element
	page *Page
}

func (e *element) Click() error {
	// Human lead-in: drift the cursor to the control before pressing.
	if shape, err := e.el.Shape(); err == nil {
		if box := shape.Box(); box != nil {
			_ = stealth.MoveMouse(e.page.p, box.X+box.Width/2, box.Y+box.Height/2)
		}
	}
	if e.page.pacing.MaxActionDelay > 0 {
		time.Sleep(stealth.RandomDelay(e.page.pacing.MinActionDelay, e.page.pacing.MaxActionDelay))
	}
	return interactionErr("click", e.el.Click(proto.InputMouseButtonLeft, 1))
}

// Input types text character by character with human pacing and the
// occasional corrected typo.
func (e *element) Input(text string) error {
	for i, char := range text {
		if stealth.ShouldTypo(e.page.pacing.TypoRate) {
			if err := e.el.Input(string(stealth.Typo(char))); err != nil {
				return interactionErr("type", err)
			}
			time.Sleep(stealth.RandomDelay(100*time.Millisecond, 200*time.Millisecond))
			if err := e.page.p.Keyboard.Press(input.Backspace); err != nil {
				return interactionErr("type", err)
			}
			time.Sleep(stealth.RandomDelay(100*time.Millisecond, 200*time.Millisecond))
		}
		if err := e.el.Input(string(char)); err != nil {
			return interactionErr("type", err)
		}
		time.Sleep(stealth.KeystrokeDelay(i))
	}
	return nil
}

func (e *element) Clear() error {
	if err := e.el.SelectAllText(); err != nil {
		return interactionErr("clear", err)
	}
	return interactionErr("clear", e.el.Type(input.Backspace))
}

func (e *element) Text() (string, error) {
	text, err := e.el.Text()
	if err != nil {
		return "", interactionErr("read text", err)
	}
	return text, nil
}

func (e *element) Visible() (bool, error) {
	visible, err := e.el.Visible()
	if err != nil {
		return false, interactionErr("visibility check", err)
	}
	return visible, nil
}

func (e *element) Enabled() (bool, error) {
	disabled, err := e.el.Property("disabled")
	if err != nil {
		return false, interactionErr("enabled check", err)
	}
	return !disabled.Bool(), nil
}

func (e *element) Box() (outreach.Box, error) {
	shape, err := e.el.Shape()
	if err != nil {
		return outreach.Box{}, interactionErr("shape", err)
	}
	box := shape.Box()
	if box == nil {
		return outreach.Box{}, interactionErr("shape", errors.New("element has no box"))
	}
	return outreach.Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

// classify maps lookup/navigation failures into the core taxonomy: a
// wait deadline is structural (the element just is not there), anything
// else means the driver connection itself is unreliable and the session
// must be rebuilt.
func classify(target string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &outreach.StructuralError{Target: target, Err: err}
	}
	return &outreach.SessionError{Err: err}
}

// interactionErr maps interaction failures (click, type, read) into the
// structural category: a control that cannot be used triggers the next
// fallback the same way a missing one does. A failure of the driver
// connection itself is not about one control, so it escalates to a
// session error.
func interactionErr(action string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectionLoss(err) {
		return &outreach.SessionError{Err: err}
	}
	return &outreach.StructuralError{Target: action, Err: err}
}

// isConnectionLoss reports whether err indicates the browser connection
// died rather than a DOM-level failure.
func isConnectionLoss(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled)
}
