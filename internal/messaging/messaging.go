// Package messaging sends direct messages to first-degree connections
// through the profile's message thread.
package messaging

import (
	"fmt"

	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
)

var messageButtonRules = []outreach.Rule{
	{Selector: "button[aria-label*='Message']"},
	{Selector: "a[href*='/messaging/thread']"},
	{Selector: "main button", Text: `^Message$`},
}

var messageFieldRules = []outreach.Rule{
	{Selector: "div[role='textbox'][aria-label*='Write a message']"},
	{Selector: "div.msg-form__contenteditable"},
	{Selector: "div[contenteditable='true'][role='textbox']"},
}

var sendButtonRules = []outreach.Rule{
	{Selector: "button[type='submit'][aria-label*='Send']"},
	{Selector: "button.msg-form__send-button"},
	{Selector: "form button", Text: `^Send$`},
}

// SendMessage opens the profile, opens its message thread, types the
// message and sends it. The page must belong to a logged-in session.
func SendMessage(p outreach.Page, profileURL, message string, t outreach.Timing) error {
	logger.Info("Sending message", "profile_url", profileURL)

	if err := p.Navigate(profileURL); err != nil {
		return fmt.Errorf("failed to open profile: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}

	button, err := outreach.FirstMatch(p, "message button", messageButtonRules, t.Find)
	if err != nil {
		return fmt.Errorf("message button not found: %w", err)
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to open message thread: %w", err)
	}

	field, err := outreach.FirstMatch(p, "message field", messageFieldRules, t.Find)
	if err != nil {
		return fmt.Errorf("message field not found: %w", err)
	}
	if err := field.Click(); err != nil {
		return fmt.Errorf("failed to focus message field: %w", err)
	}
	if err := field.Input(message); err != nil {
		return fmt.Errorf("failed to type message: %w", err)
	}

	send, err := outreach.FirstMatch(p, "send button", sendButtonRules, t.Find)
	if err != nil {
		return fmt.Errorf("send button not found: %w", err)
	}
	if err := send.Click(); err != nil {
		return fmt.Errorf("failed to click send button: %w", err)
	}

	logger.Info("Message sent", "profile_url", profileURL)
	return nil
}
