package idletimer

import (
	"sync"
	"time"
)

// State is the current phase of an armed timer.
type State string

const (
	StateActive  State = "active"
	StateWarning State = "warning"
	StateExpired State = "expired"
)

// DefaultTickInterval is how often the countdown callback fires while
// the timer is in the warning phase.
const DefaultTickInterval = time.Second

// Timer watches for inactivity. The zero value is not usable; create
// one with New.
type Timer struct {
	timeout      time.Duration
	warning      time.Duration
	tickInterval time.Duration

	onWarning func(remaining time.Duration)
	onTick    func(remaining time.Duration)
	onExpire  func()

	now func() time.Time

	mu       sync.Mutex
	armed    bool
	state    State
	deadline time.Time
	// gen invalidates every scheduled callback from a previous arming.
	// Bumping it is the only cancellation mechanism the callbacks
	// observe, so a timer that already fired becomes a no-op instead
	// of acting on stale state.
	gen     uint64
	pending []*time.Timer
}

// New creates a disarmed timer. timeout is the total inactivity
// budget; warning is the window at its tail during which the warning
// and tick callbacks run. A zero warning skips the warning phase
// entirely.
func New(timeout, warning time.Duration, opts ...Option) (*Timer, error) {
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if warning < 0 || warning >= timeout {
		return nil, ErrInvalidWarning
	}

	t := &Timer{
		timeout:      timeout,
		warning:      warning,
		tickInterval: DefaultTickInterval,
		now:          time.Now,
		state:        StateActive,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Start arms the timer with a fresh deadline. Calling Start on an
// already armed timer resets it, including from the Expired state.
func (t *Timer) Start() {
	t.mu.Lock()
	t.armed = true
	t.rearmLocked()
	t.mu.Unlock()
}

// Touch reports user activity. From Active or Warning it resets the
// deadline and returns the timer to Active. After expiry or Stop it
// does nothing; the session is gone and only Start revives the timer.
func (t *Timer) Touch() {
	t.mu.Lock()
	if t.armed && t.state != StateExpired {
		t.rearmLocked()
	}
	t.mu.Unlock()
}

// Stop disarms the timer. No callback fires after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.armed = false
	t.gen++
	t.cancelPendingLocked()
	t.state = StateActive
	t.deadline = time.Time{}
	t.mu.Unlock()
}

// State returns the current phase. A disarmed timer reports Active.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the time left until expiry, or zero when the
// timer is disarmed or already expired.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed || t.state == StateExpired {
		return 0
	}
	return max(t.deadline.Sub(t.now()), 0)
}

// rearmLocked resets the deadline and schedules the warning and
// expiry callbacks for a new generation. Every path that arms the
// timer goes through here so stale timers can never fire twice.
func (t *Timer) rearmLocked() {
	t.gen++
	gen := t.gen
	t.cancelPendingLocked()
	t.state = StateActive
	t.deadline = t.now().Add(t.timeout)

	if t.warning > 0 {
		t.scheduleLocked(t.timeout-t.warning, func() { t.enterWarning(gen) })
	}
	t.scheduleLocked(t.timeout, func() { t.expire(gen) })
}

func (t *Timer) scheduleLocked(d time.Duration, fn func()) {
	t.pending = append(t.pending, time.AfterFunc(d, fn))
}

func (t *Timer) cancelPendingLocked() {
	for _, tm := range t.pending {
		tm.Stop()
	}
	t.pending = t.pending[:0]
}

func (t *Timer) enterWarning(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.armed {
		t.mu.Unlock()
		return
	}
	t.state = StateWarning
	remaining := max(t.deadline.Sub(t.now()), 0)
	t.scheduleLocked(t.tickInterval, func() { t.tick(gen) })
	cb := t.onWarning
	t.mu.Unlock()

	if cb != nil {
		cb(remaining)
	}
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.armed || t.state != StateWarning {
		t.mu.Unlock()
		return
	}
	remaining := t.deadline.Sub(t.now())
	if remaining <= 0 {
		// The expiry callback owns the transition from here.
		t.mu.Unlock()
		return
	}
	t.scheduleLocked(t.tickInterval, func() { t.tick(gen) })
	cb := t.onTick
	t.mu.Unlock()

	if cb != nil {
		cb(remaining)
	}
}

func (t *Timer) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.armed {
		t.mu.Unlock()
		return
	}
	t.state = StateExpired
	t.cancelPendingLocked()
	cb := t.onExpire
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}
