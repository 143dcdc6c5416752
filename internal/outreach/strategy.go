package outreach

import "fmt"

// profileActionRegion bounds where the profile's own action bar can
// sit. Recommendation widgets further down the page carry buttons with
// identical text; the position filter keeps them out of reach. This is
// a pragmatic disambiguator, not a semantic one.
var profileActionRegion = Region{MaxX: 1100, MaxY: 700}

// connectVisibleRules locate a Connect button rendered directly in the
// action bar. Candidate order matters: each is tried before falling
// back to the More-menu strategy.
var connectVisibleRules = []Rule{
	{Selector: "main button", Text: `^Connect$`, Region: &profileActionRegion},
	{Selector: "button[aria-label*='Invite'][aria-label*='connect']", Region: &profileActionRegion},
	{Selector: "button.pvs-profile-actions__action", Text: `^Connect$`, Region: &profileActionRegion},
}

var moreMenuRules = []Rule{
	{Selector: "main button", Text: `^More$`, Region: &profileActionRegion},
	{Selector: "button[aria-label='More actions']", Region: &profileActionRegion},
	{Selector: "button.artdeco-dropdown__trigger", Text: `More`},
}

var dropdownConnectRules = []Rule{
	{Selector: "div.artdeco-dropdown__content--is-open span", Text: `^Connect$`},
	{Selector: "div[role='menu'] span", Text: `^Connect$`},
	{Selector: "div.artdeco-dropdown__item", Text: `^Connect$`},
}

var followRules = []Rule{
	{Selector: "main button", Text: `^Follow$`, Region: &profileActionRegion},
	{Selector: "button[aria-label^='Follow']", Region: &profileActionRegion},
}

// connectVisible clicks a Connect button in the action bar, opening the
// invite dialog.
func connectVisible(p Page, t Timing) error {
	btn, err := FirstMatch(p, "visible Connect button", connectVisibleRules, t.Find)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return clickErr("visible Connect button", err)
	}
	t.settle()
	return nil
}

// connectViaDropdown opens the More menu and clicks the Connect entry
// inside it. If the open menu has no Connect entry the menu is closed
// again so it doesn't sit over the page for the next strategy.
func connectViaDropdown(p Page, t Timing) error {
	more, err := FirstMatch(p, "More menu button", moreMenuRules, t.Find)
	if err != nil {
		return err
	}
	if err := more.Click(); err != nil {
		return clickErr("More menu button", err)
	}
	t.settle()

	option, err := FirstMatch(p, "Connect entry in More menu", dropdownConnectRules, t.Find)
	if err != nil {
		if !isSessionError(err) {
			_ = p.PressEscape()
		}
		return err
	}
	if err := option.Click(); err != nil {
		return clickErr("Connect entry in More menu", err)
	}
	t.settle()
	return nil
}

// follow clicks the Follow button. Last resort for creator profiles
// that expose no Connect control at all.
func follow(p Page, t Timing) error {
	btn, err := FirstMatch(p, "Follow button", followRules, t.Find)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return clickErr("Follow button", err)
	}
	t.settle()
	return nil
}

// clickErr folds an interaction failure into the structural category:
// a not-clickable control triggers the next fallback the same way a
// missing one does. Session loss passes through untouched.
func clickErr(target string, err error) error {
	if isSessionError(err) {
		return err
	}
	return &StructuralError{Target: target, Err: fmt.Errorf("click failed: %w", err)}
}
