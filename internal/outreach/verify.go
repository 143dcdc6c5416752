package outreach

import "time"

// The submit control's label depends on whether a note was composed:
// with a note the dialog offers "Send"/"Send invitation", without one
// it offers "Send without a note". Plain "Send" is kept as the last
// candidate on both branches for older dialog variants.

var sendWithNoteRules = []Rule{
	{Selector: "button[aria-label='Send invitation']"},
	{Selector: "button[aria-label='Send now']"},
	{Selector: "button.artdeco-button--primary", Text: `^Send$`},
	{Selector: "button", Text: `^Send$`},
}

var sendWithoutNoteRules = []Rule{
	{Selector: "button[aria-label='Send without a note']"},
	{Selector: "button", Text: `^Send without a note$`},
	{Selector: "button[aria-label='Send invitation']"},
	{Selector: "button", Text: `^Send$`},
}

var composeDialogSelectors = []string{
	"div.send-invite",
	"div.artdeco-modal",
	"div[role='dialog']",
}

// SubmitAndVerify clicks the submit control and confirms acceptance by
// observing the compose dialog disappear. Absence of the dialog is only
// weak evidence of success; a dialog still present after the wait is
// reported as ErrVerificationUncertain, never as success.
func SubmitAndVerify(p Page, noteAdded bool, t Timing) error {
	rules := sendWithoutNoteRules
	if noteAdded {
		rules = sendWithNoteRules
	}

	btn, err := FirstMatch(p, "send button", rules, t.Find)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return clickErr("send button", err)
	}

	time.Sleep(t.Verify)

	for _, sel := range composeDialogSelectors {
		present, err := p.Has(sel)
		if err != nil {
			if isSessionError(err) {
				return err
			}
			continue
		}
		if present {
			return ErrVerificationUncertain
		}
	}
	return nil
}
