package idletimer

import "time"

// Option configures a Timer during construction.
type Option func(*Timer) error

// WithOnWarning sets the callback invoked once when the timer enters
// the warning phase, with the time left until expiry.
func WithOnWarning(fn func(remaining time.Duration)) Option {
	return func(t *Timer) error {
		t.onWarning = fn
		return nil
	}
}

// WithOnTick sets the countdown callback invoked on every tick
// interval while the timer is in the warning phase.
func WithOnTick(fn func(remaining time.Duration)) Option {
	return func(t *Timer) error {
		t.onTick = fn
		return nil
	}
}

// WithOnExpire sets the callback invoked exactly once when the
// inactivity timeout elapses.
func WithOnExpire(fn func()) Option {
	return func(t *Timer) error {
		t.onExpire = fn
		return nil
	}
}

// WithTickInterval overrides the countdown cadence used during the
// warning phase. Defaults to DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) error {
		if d <= 0 {
			return ErrInvalidTickInterval
		}
		t.tickInterval = d
		return nil
	}
}

// WithNowFunc overrides the clock. Used in tests.
func WithNowFunc(now func() time.Time) Option {
	return func(t *Timer) error {
		if now != nil {
			t.now = now
		}
		return nil
	}
}
