package idletimer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmbertoV88/wedweaver/pkg/idletimer"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := idletimer.New(0, 0)
	assert.ErrorIs(t, err, idletimer.ErrInvalidTimeout)

	_, err = idletimer.New(time.Second, time.Second)
	assert.ErrorIs(t, err, idletimer.ErrInvalidWarning)

	_, err = idletimer.New(time.Second, -time.Millisecond)
	assert.ErrorIs(t, err, idletimer.ErrInvalidWarning)

	_, err = idletimer.New(time.Second, time.Millisecond, idletimer.WithTickInterval(0))
	assert.ErrorIs(t, err, idletimer.ErrInvalidTickInterval)
}

func TestTimer_ExpiresAfterTimeout(t *testing.T) {
	t.Parallel()

	var expired atomic.Int32
	timer, err := idletimer.New(80*time.Millisecond, 40*time.Millisecond,
		idletimer.WithOnExpire(func() { expired.Add(1) }),
	)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Start()
	assert.Equal(t, idletimer.StateActive, timer.State())

	require.Eventually(t, func() bool {
		return expired.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, idletimer.StateExpired, timer.State())
	assert.Zero(t, timer.Remaining())

	// Expiry fires exactly once per arming.
	time.Sleep(120 * time.Millisecond)
	assert.EqualValues(t, 1, expired.Load())
}

func TestTimer_WarningPhase(t *testing.T) {
	t.Parallel()

	var warned atomic.Int32
	var warnedRemaining atomic.Int64
	var ticks atomic.Int32

	timer, err := idletimer.New(200*time.Millisecond, 120*time.Millisecond,
		idletimer.WithTickInterval(25*time.Millisecond),
		idletimer.WithOnWarning(func(remaining time.Duration) {
			warned.Add(1)
			warnedRemaining.Store(int64(remaining))
		}),
		idletimer.WithOnTick(func(time.Duration) { ticks.Add(1) }),
	)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Start()

	// No warning before the window opens.
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, warned.Load())
	assert.Equal(t, idletimer.StateActive, timer.State())

	require.Eventually(t, func() bool {
		return warned.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, idletimer.StateWarning, timer.State())
	assert.LessOrEqual(t, time.Duration(warnedRemaining.Load()), 120*time.Millisecond)

	require.Eventually(t, func() bool {
		return ticks.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestTimer_TouchResetsFromWarning(t *testing.T) {
	t.Parallel()

	var expired atomic.Int32
	timer, err := idletimer.New(100*time.Millisecond, 60*time.Millisecond,
		idletimer.WithTickInterval(10*time.Millisecond),
		idletimer.WithOnExpire(func() { expired.Add(1) }),
	)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Start()

	require.Eventually(t, func() bool {
		return timer.State() == idletimer.StateWarning
	}, time.Second, 5*time.Millisecond)

	timer.Touch()
	assert.Equal(t, idletimer.StateActive, timer.State())

	// The old expiry deadline passes without firing.
	time.Sleep(70 * time.Millisecond)
	assert.Zero(t, expired.Load())

	require.Eventually(t, func() bool {
		return expired.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTimer_TouchKeepsActiveSessionAlive(t *testing.T) {
	t.Parallel()

	var expired atomic.Int32
	timer, err := idletimer.New(60*time.Millisecond, 20*time.Millisecond,
		idletimer.WithOnExpire(func() { expired.Add(1) }),
	)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Start()
	for range 5 {
		time.Sleep(20 * time.Millisecond)
		timer.Touch()
	}
	assert.Zero(t, expired.Load())
	assert.Equal(t, idletimer.StateActive, timer.State())
}

func TestTimer_TouchAfterExpiryIsIgnored(t *testing.T) {
	t.Parallel()

	timer, err := idletimer.New(30*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Start()
	require.Eventually(t, func() bool {
		return timer.State() == idletimer.StateExpired
	}, time.Second, 5*time.Millisecond)

	timer.Touch()
	assert.Equal(t, idletimer.StateExpired, timer.State())

	timer.Start()
	assert.Equal(t, idletimer.StateActive, timer.State())
}

func TestTimer_StopSilencesCallbacks(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32
	timer, err := idletimer.New(40*time.Millisecond, 20*time.Millisecond,
		idletimer.WithTickInterval(5*time.Millisecond),
		idletimer.WithOnWarning(func(time.Duration) { fired.Add(1) }),
		idletimer.WithOnTick(func(time.Duration) { fired.Add(1) }),
		idletimer.WithOnExpire(func() { fired.Add(1) }),
	)
	require.NoError(t, err)

	timer.Start()
	timer.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.Zero(t, timer.Remaining())
}

func TestTimer_CallbackMayTouch(t *testing.T) {
	t.Parallel()

	var timer *idletimer.Timer
	var touched atomic.Int32

	timer, err := idletimer.New(50*time.Millisecond, 30*time.Millisecond,
		idletimer.WithOnWarning(func(time.Duration) {
			// A warning handler extending the session must not deadlock.
			if touched.Add(1) == 1 {
				timer.Touch()
			}
		}),
	)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Start()
	require.Eventually(t, func() bool {
		return touched.Load() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, idletimer.StateActive, timer.State())
}

func TestTimer_Remaining(t *testing.T) {
	t.Parallel()

	timer, err := idletimer.New(time.Hour, time.Minute)
	require.NoError(t, err)
	defer timer.Stop()

	assert.Zero(t, timer.Remaining(), "disarmed timer has nothing left")

	timer.Start()
	remaining := timer.Remaining()
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)
}
