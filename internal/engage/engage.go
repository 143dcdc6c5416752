// Package engage covers the lighter outreach touches: visiting a
// profile, reacting to a post, and commenting on one. These warm a
// prospect up before a connection request goes out.
package engage

import (
	"fmt"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

var reactRules = []outreach.Rule{
	{Selector: "button[aria-label*='React Like']"},
	{Selector: "button.react-button__trigger"},
	{Selector: "button[aria-label*='Like']", Text: `Like`},
}

var commentBoxRules = []outreach.Rule{
	{Selector: "button[aria-label*='Comment']"},
	{Selector: "button.comment-button"},
}

var commentFieldRules = []outreach.Rule{
	{Selector: "div.ql-editor[contenteditable='true']"},
	{Selector: "div[role='textbox'][aria-label*='comment']"},
	{Selector: "div.comments-comment-box__form div[contenteditable='true']"},
}

var commentSubmitRules = []outreach.Rule{
	{Selector: "button.comments-comment-box__submit-button"},
	{Selector: "button[class*='comment']", Text: `^Post$`},
	{Selector: "form.comments-comment-box__form button[type='submit']"},
}

// Visit opens the profile and lingers like a reader would. LinkedIn
// notifies the profile owner, which is the whole point.
func Visit(p outreach.Page, profileURL string, t outreach.Timing) error {
	logger.Info("Visiting profile", "profile_url", profileURL)

	if err := p.Navigate(profileURL); err != nil {
		return fmt.Errorf("failed to open profile: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}

	// Dwell long enough to register as a real view.
	if t.Settle > 0 {
		time.Sleep(stealth.RandomDelay(t.Settle, 2*t.Settle))
	}
	_ = p.ScrollTop()

	return nil
}

// React opens the post and presses its Like control.
func React(p outreach.Page, postURL string, t outreach.Timing) error {
	logger.Info("Reacting to post", "post_url", postURL)

	if err := openPost(p, postURL); err != nil {
		return err
	}

	button, err := outreach.FirstMatch(p, "react button", reactRules, t.Find)
	if err != nil {
		return fmt.Errorf("react button not found: %w", err)
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to react: %w", err)
	}

	return nil
}

// Comment opens the post, expands the comment box and posts the text.
func Comment(p outreach.Page, postURL, text string, t outreach.Timing) error {
	logger.Info("Commenting on post", "post_url", postURL)

	if err := openPost(p, postURL); err != nil {
		return err
	}

	// The comment field may already be expanded; the toggle is
	// best-effort.
	if toggle, err := outreach.FirstMatch(p, "comment toggle", commentBoxRules, t.Probe); err == nil {
		_ = toggle.Click()
	}

	field, err := outreach.FirstMatch(p, "comment field", commentFieldRules, t.Find)
	if err != nil {
		return fmt.Errorf("comment field not found: %w", err)
	}
	if err := field.Click(); err != nil {
		return fmt.Errorf("failed to focus comment field: %w", err)
	}
	if err := field.Input(text); err != nil {
		return fmt.Errorf("failed to type comment: %w", err)
	}

	submit, err := outreach.FirstMatch(p, "comment submit", commentSubmitRules, t.Find)
	if err != nil {
		return fmt.Errorf("comment submit button not found: %w", err)
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}

	return nil
}

func openPost(p outreach.Page, postURL string) error {
	if err := p.Navigate(postURL); err != nil {
		return fmt.Errorf("failed to open post: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}
