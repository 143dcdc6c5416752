package outreach

// Status detection is read-only: it only looks elements up, it never
// clicks. It must run to completion before any mutating strategy so a
// repeated dispatch against an already-acted-upon profile never fires a
// second action.

var pendingRules = []Rule{
	{Selector: "main button", Text: `^Pending$`},
	{Selector: "button[aria-label*='Pending']"},
	{Selector: "main span", Text: `^Pending$`},
}

var messageRules = []Rule{
	{Selector: "main button", Text: `^Message$`},
	{Selector: "button[aria-label*='Message']"},
	{Selector: "main a[href*='/messaging/']"},
}

var followingRules = []Rule{
	{Selector: "main button", Text: `^Following$`},
	{Selector: "button[aria-label*='Following']"},
}

// connectProbeRules detect the presence of any connect affordance, for
// the connected check only. No region filter: any visible Connect
// control disproves "connected".
var connectProbeRules = []Rule{
	{Selector: "main button", Text: `^Connect$`},
	{Selector: "button[aria-label*='Invite'][aria-label*='connect']"},
}

var followProbeRules = []Rule{
	{Selector: "main button", Text: `^Follow$`},
}

// DetectRelationship classifies the loaded profile page into one of
// {pending, connected, following, none}. Overlapping signals resolve to
// the first matching category in this fixed priority order.
func DetectRelationship(p Page, t Timing) (RelationshipState, error) {
	found, err := probe(p, pendingRules, t)
	if err != nil {
		return StateNone, err
	}
	if found {
		return StatePending, nil
	}

	// Connected means a Message control with no Connect or Follow
	// control beside it. A visible Message button alone is not enough:
	// open profiles show Message to non-connections too.
	found, err = probe(p, messageRules, t)
	if err != nil {
		return StateNone, err
	}
	if found {
		hasConnect, err := probe(p, connectProbeRules, t)
		if err != nil {
			return StateNone, err
		}
		hasFollow, err := probe(p, followProbeRules, t)
		if err != nil {
			return StateNone, err
		}
		if !hasConnect && !hasFollow {
			return StateConnected, nil
		}
	}

	found, err = probe(p, followingRules, t)
	if err != nil {
		return StateNone, err
	}
	if found {
		return StateFollowing, nil
	}

	return StateNone, nil
}

// probe reports whether any rule resolves to a usable element. Only a
// session error is surfaced; absence is just false.
func probe(p Page, rules []Rule, t Timing) (bool, error) {
	_, err := FirstMatch(p, "status probe", rules, t.Probe)
	if err != nil {
		if isSessionError(err) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
