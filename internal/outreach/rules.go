package outreach

import (
	"fmt"
	"time"
)

// Region is an inclusive top-left screen area. Rules carrying a region
// reject elements whose box starts beyond it, which filters out
// same-text controls in recommendation rails elsewhere on the page.
type Region struct {
	MaxX float64
	MaxY float64
}

func (r Region) contains(b Box) bool {
	return b.X <= r.MaxX && b.Y <= r.MaxY
}

// Rule is one heuristic for locating a UI target: a CSS selector,
// optionally narrowed by a text pattern, optionally filtered by screen
// position. Rules are tried in list order; the first one that yields a
// displayed, enabled, in-region element wins.
type Rule struct {
	Selector string
	// Text, when set, is a regular expression matched against the
	// element's rendered text.
	Text string
	// Region, when set, rejects matches positioned outside it.
	Region *Region
}

func (r Rule) String() string {
	if r.Text != "" {
		return fmt.Sprintf("%s ~ %q", r.Selector, r.Text)
	}
	return r.Selector
}

// FirstMatch evaluates rules in order against the page and returns the
// first element satisfying {exists, visible, enabled, within-region}.
// A session error aborts immediately; everything else is folded into a
// single StructuralError naming the target once all rules are
// exhausted.
func FirstMatch(p Page, target string, rules []Rule, timeout time.Duration) (Element, error) {
	for _, rule := range rules {
		el, err := resolve(p, rule, timeout)
		if err != nil {
			if isSessionError(err) {
				return nil, err
			}
			continue
		}
		if !usable(el, rule.Region) {
			continue
		}
		return el, nil
	}
	return nil, &StructuralError{Target: target}
}

func resolve(p Page, rule Rule, timeout time.Duration) (Element, error) {
	if rule.Text != "" {
		return p.ElementMatching(rule.Selector, rule.Text, timeout)
	}
	return p.Element(rule.Selector, timeout)
}

func usable(el Element, region *Region) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	enabled, err := el.Enabled()
	if err != nil || !enabled {
		return false
	}
	if region != nil {
		box, err := el.Box()
		if err != nil || !region.contains(box) {
			return false
		}
	}
	return true
}
