package outreach

import (
	"errors"
	"time"
)

// fakeElement is a scriptable stand-in for a located page control.
type fakeElement struct {
	visible  bool
	enabled  bool
	box      Box
	text     string
	value    string
	clicks   int
	clickErr error
	inputErr error
	onClick  func()
}

// el returns a usable element positioned inside the action region.
func el() *fakeElement {
	return &fakeElement{visible: true, enabled: true, box: Box{X: 400, Y: 200, Width: 100, Height: 32}}
}

func (e *fakeElement) Click() error {
	e.clicks++
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Input(text string) error {
	if e.inputErr != nil {
		return e.inputErr
	}
	e.value += text
	return nil
}

func (e *fakeElement) Clear() error {
	e.value = ""
	return nil
}

func (e *fakeElement) Text() (string, error) {
	if e.value != "" {
		return e.value, nil
	}
	return e.text, nil
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }
func (e *fakeElement) Enabled() (bool, error) { return e.enabled, nil }
func (e *fakeElement) Box() (Box, error)      { return e.box, nil }

// fakePage serves scripted elements by selector (and selector+pattern
// for text rules). Lookups for anything unregistered fail structurally,
// like a wait timeout would.
type fakePage struct {
	els     map[string]*fakeElement
	textEls map[string]*fakeElement

	dead        bool
	landedURL   string
	navigations []string
	escapes     int
	scrolls     int
}

func newFakePage() *fakePage {
	return &fakePage{
		els:     make(map[string]*fakeElement),
		textEls: make(map[string]*fakeElement),
	}
}

func textKey(selector, pattern string) string { return selector + "\x00" + pattern }

func (p *fakePage) add(selector string, e *fakeElement)              { p.els[selector] = e }
func (p *fakePage) addText(selector, pattern string, e *fakeElement) { p.textEls[textKey(selector, pattern)] = e }
func (p *fakePage) remove(selector string)                           { delete(p.els, selector) }

// totalClicks counts clicks across every registered element.
func (p *fakePage) totalClicks() int {
	seen := make(map[*fakeElement]bool)
	total := 0
	for _, e := range p.els {
		if !seen[e] {
			total += e.clicks
			seen[e] = true
		}
	}
	for _, e := range p.textEls {
		if !seen[e] {
			total += e.clicks
			seen[e] = true
		}
	}
	return total
}

func (p *fakePage) Navigate(url string) error {
	if p.dead {
		return &SessionError{Err: errors.New("connection refused")}
	}
	p.navigations = append(p.navigations, url)
	return nil
}

func (p *fakePage) WaitLoad() error {
	if p.dead {
		return &SessionError{Err: errors.New("connection refused")}
	}
	return nil
}

func (p *fakePage) URL() string {
	if p.landedURL != "" {
		return p.landedURL
	}
	if len(p.navigations) == 0 {
		return ""
	}
	return p.navigations[len(p.navigations)-1]
}

func (p *fakePage) Element(selector string, timeout time.Duration) (Element, error) {
	if p.dead {
		return nil, &SessionError{Err: errors.New("connection refused")}
	}
	if e, ok := p.els[selector]; ok {
		return e, nil
	}
	return nil, &StructuralError{Target: selector}
}

func (p *fakePage) ElementMatching(selector, pattern string, timeout time.Duration) (Element, error) {
	if p.dead {
		return nil, &SessionError{Err: errors.New("connection refused")}
	}
	if e, ok := p.textEls[textKey(selector, pattern)]; ok {
		return e, nil
	}
	return nil, &StructuralError{Target: selector}
}

func (p *fakePage) Has(selector string) (bool, error) {
	if p.dead {
		return false, &SessionError{Err: errors.New("connection refused")}
	}
	_, ok := p.els[selector]
	return ok, nil
}

func (p *fakePage) PressEscape() error {
	p.escapes++
	return nil
}

func (p *fakePage) ScrollTop() error {
	p.scrolls++
	return nil
}
