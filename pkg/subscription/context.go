package subscription

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

var recordContextKey = &contextKey{name: "subscription_record"}

// SetRecord stores a record snapshot in the context so downstream handlers
// reuse the gate's fetch instead of re-reading the store.
func SetRecord(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, recordContextKey, rec)
}

// RecordFromContext returns the record snapshot placed by the gate
// middleware. The second value is false when no snapshot was stored; a
// stored nil record means "user has no subscription yet".
func RecordFromContext(ctx context.Context) (*Record, bool) {
	rec, ok := ctx.Value(recordContextKey).(*Record)
	return rec, ok
}
