package engage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/linkedin-outreach/internal/outreach"
)

type fakeElement struct {
	clicks int
	typed  string
}

func (e *fakeElement) Click() error            { e.clicks++; return nil }
func (e *fakeElement) Input(text string) error { e.typed += text; return nil }
func (e *fakeElement) Clear() error            { e.typed = ""; return nil }
func (e *fakeElement) Text() (string, error)   { return e.typed, nil }
func (e *fakeElement) Visible() (bool, error)  { return true, nil }
func (e *fakeElement) Enabled() (bool, error)  { return true, nil }
func (e *fakeElement) Box() (outreach.Box, error) {
	return outreach.Box{X: 300, Y: 200, Width: 100, Height: 30}, nil
}

type fakePage struct {
	els       map[string]*fakeElement
	navigated []string
}

func (p *fakePage) Navigate(url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) WaitLoad() error { return nil }

func (p *fakePage) URL() string {
	if len(p.navigated) == 0 {
		return ""
	}
	return p.navigated[len(p.navigated)-1]
}

func (p *fakePage) Element(selector string, timeout time.Duration) (outreach.Element, error) {
	if e, ok := p.els[selector]; ok {
		return e, nil
	}
	return nil, &outreach.StructuralError{Target: selector}
}

func (p *fakePage) ElementMatching(selector, pattern string, timeout time.Duration) (outreach.Element, error) {
	return nil, &outreach.StructuralError{Target: selector}
}

func (p *fakePage) Has(selector string) (bool, error) {
	_, ok := p.els[selector]
	return ok, nil
}

func (p *fakePage) PressEscape() error { return nil }
func (p *fakePage) ScrollTop() error   { return nil }

func TestVisitNavigatesToProfile(t *testing.T) {
	p := &fakePage{els: map[string]*fakeElement{}}

	err := Visit(p, "https://www.linkedin.com/in/jane", outreach.Timing{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.linkedin.com/in/jane"}, p.navigated)
}

func TestReactClicksLike(t *testing.T) {
	like := &fakeElement{}
	p := &fakePage{els: map[string]*fakeElement{
		"button[aria-label*='React Like']": like,
	}}

	err := React(p, "https://www.linkedin.com/posts/x", outreach.Timing{})
	require.NoError(t, err)
	assert.Equal(t, 1, like.clicks)
}

func TestReactFailsWithoutButton(t *testing.T) {
	p := &fakePage{els: map[string]*fakeElement{}}

	err := React(p, "https://www.linkedin.com/posts/x", outreach.Timing{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "react button")
}

func TestCommentTypesAndSubmits(t *testing.T) {
	toggle := &fakeElement{}
	field := &fakeElement{}
	submit := &fakeElement{}
	p := &fakePage{els: map[string]*fakeElement{
		"button[aria-label*='Comment']":              toggle,
		"div.ql-editor[contenteditable='true']":      field,
		"button.comments-comment-box__submit-button": submit,
	}}

	err := Comment(p, "https://www.linkedin.com/posts/x", "Great point", outreach.Timing{})
	require.NoError(t, err)

	assert.Equal(t, 1, toggle.clicks)
	assert.Equal(t, "Great point", field.typed)
	assert.Equal(t, 1, submit.clicks)
}

func TestCommentWorksWithoutToggle(t *testing.T) {
	field := &fakeElement{}
	submit := &fakeElement{}
	p := &fakePage{els: map[string]*fakeElement{
		"div.ql-editor[contenteditable='true']":      field,
		"button.comments-comment-box__submit-button": submit,
	}}

	err := Comment(p, "https://www.linkedin.com/posts/x", "Great point", outreach.Timing{})
	require.NoError(t, err)
	assert.Equal(t, "Great point", field.typed)
}
