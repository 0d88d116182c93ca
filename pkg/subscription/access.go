package subscription

import "time"

// InTrialAt reports whether the record is inside its trial window at the
// given time. The boundary is strict: a trial ending exactly at now is
// already expired.
func InTrialAt(rec *Record, now time.Time) bool {
	if rec == nil || rec.Status != StatusTrialing || rec.TrialEndsAt == nil {
		return false
	}
	return rec.TrialEndsAt.After(now)
}

// ActiveAt reports whether the record grants product access at the given
// time. A running trial counts as active.
func ActiveAt(rec *Record, now time.Time) bool {
	if rec == nil {
		return false
	}
	return rec.Status == StatusActive || InTrialAt(rec, now)
}

// EvaluateAccess computes the derived entitlement flags from a record
// snapshot. It is pure: no I/O, no clock reads, so callers decide which
// "now" the decision is valid for.
//
// An absent record yields the zero AccessState; the caller treats that as
// "no subscription yet", not as an error. RequiresPayment only becomes true
// once the account has engaged the billing flow (status past StatusNone)
// and lost its entitlement.
func EvaluateAccess(rec *Record, now time.Time) AccessState {
	if rec == nil {
		return AccessState{}
	}

	inTrial := InTrialAt(rec, now)
	active := rec.Status == StatusActive || inTrial

	return AccessState{
		Active:          active,
		InTrial:         inTrial,
		RequiresPayment: !active && rec.Status != StatusNone,
	}
}
