package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RecordHandler receives committed changes to a watched user's record.
type RecordHandler func(*Record)

// Feed delivers committed record changes to interested consumers. This is
// the sole mechanism keeping entitlement state fresh after a provider
// webhook mutates a record without any user-initiated action.
//
// Delivery contract: after Subscribe, every published change for the watched
// user reaches the handler exactly once, in publish order. Delivery is
// eventually consistent with direct store reads — a concurrently in-flight
// Get may complete before or after a feed delivery, and consumers must take
// the most recently received snapshot (last write wins client-side; the
// authoritative state lives in the store).
type Feed interface {
	// Subscribe starts watching one user's record. The returned Watch owns
	// the subscription lifecycle; there is no ambient registry to leak.
	Subscribe(ctx context.Context, userID uuid.UUID, fn RecordHandler) (*Watch, error)

	// Publish fans a committed record change out to that user's watchers.
	Publish(ctx context.Context, rec *Record) error

	// Close shuts the feed down and tears down all watches.
	Close() error
}

// Watch is a live subscription to one user's record changes.
type Watch struct {
	once sync.Once
	stop func()
}

func newWatch(stop func()) *Watch {
	return &Watch{stop: stop}
}

// Unsubscribe stops further deliveries. It is idempotent and safe to call
// during teardown: a delivery already dispatched may still complete, but
// nothing is delivered after Unsubscribe returns the watch to quiescence.
func (w *Watch) Unsubscribe() {
	if w == nil {
		return
	}
	w.once.Do(w.stop)
}
