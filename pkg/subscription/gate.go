package subscription

import "time"

// GateDecision is the three-branch outcome of the paywall gate.
type GateDecision int

const (
	// GateAllow renders the pricing surface: authenticated but not entitled.
	GateAllow GateDecision = iota
	// GateSignIn denies: no authenticated identity.
	GateSignIn
	// GateRedirectApp sends an already-entitled user away from the paywall.
	GateRedirectApp
)

// Decide evaluates the paywall gate from the latest snapshot. It is a
// guard, not a cache: callers re-run it on every navigation with whatever
// record the feed or a fresh fetch delivered last.
func Decide(authenticated bool, rec *Record, now time.Time) GateDecision {
	if !authenticated {
		return GateSignIn
	}
	if ActiveAt(rec, now) {
		return GateRedirectApp
	}
	return GateAllow
}
