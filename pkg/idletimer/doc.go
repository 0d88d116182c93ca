// Package idletimer tracks user inactivity and drives the
// warn-then-expire flow used to close idle sessions.
//
// A Timer is armed with a total inactivity timeout and a warning
// window at its tail. While armed it moves through three states:
//
//   - Active: the user was seen recently, nothing is shown.
//   - Warning: the timeout is about to elapse; the warning callback
//     fires once and the tick callback reports the remaining time on
//     a fixed interval so a countdown can be rendered.
//   - Expired: the timeout elapsed without activity; the expire
//     callback fires exactly once.
//
// Touch reports activity and returns the timer to Active with a fresh
// deadline, from either Active or Warning. Once Expired, only Start
// arms the timer again. Stop disarms it and guarantees no further
// callbacks are delivered.
//
// All methods are safe for concurrent use. Callbacks are invoked
// without the internal lock held, so they may call back into the
// timer.
package idletimer
