package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisFeed implements Feed on Redis pub/sub so record changes reach
// watchers on every application instance, not only the one that handled the
// webhook. Channel names are scoped per user, which gives each watcher a
// single-producer stream and preserves publish order.
type RedisFeed struct {
	client *redis.Client
	prefix string
	log    *slog.Logger

	mu     sync.Mutex
	open   map[*redis.PubSub]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewRedisFeed creates a Redis-backed subscription feed.
// Panics on a nil client to fail fast during initialization.
func NewRedisFeed(client *redis.Client, log *slog.Logger) *RedisFeed {
	if client == nil {
		panic("subscription: redis client is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisFeed{
		client: client,
		prefix: "subscription.records.",
		log:    log,
		open:   make(map[*redis.PubSub]struct{}),
	}
}

func (f *RedisFeed) channel(userID uuid.UUID) string {
	return f.prefix + userID.String()
}

// Subscribe starts watching one user's record changes.
func (f *RedisFeed) Subscribe(ctx context.Context, userID uuid.UUID, fn RecordHandler) (*Watch, error) {
	if fn == nil {
		return nil, ErrFeedClosed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFeedClosed
	}

	pubsub := f.client.Subscribe(ctx, f.channel(userID))
	f.open[pubsub] = struct{}{}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for msg := range pubsub.Channel() {
			var rec Record
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				f.log.Error("dropping malformed record change", "channel", msg.Channel, "error", err)
				continue
			}
			if !rec.Status.Valid() || rec.UserID != userID {
				f.log.Error("dropping record change failing validation", "channel", msg.Channel)
				continue
			}
			fn(&rec)
		}
	}()

	// Closing the pubsub closes its channel, which ends the dispatch
	// goroutine after any in-flight delivery completes.
	return newWatch(func() { f.release(pubsub) }), nil
}

// Publish fans the record change out to all instances watching this user.
func (f *RedisFeed) Publish(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}

	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return ErrFeedClosed
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record change: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel(rec.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish record change: %w", err)
	}
	return nil
}

// Close tears down every remaining watch of this instance and waits for
// their dispatch goroutines to drain.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	for pubsub := range f.open {
		_ = pubsub.Close()
	}
	clear(f.open)
	f.mu.Unlock()

	f.wg.Wait()
	return nil
}

func (f *RedisFeed) release(pubsub *redis.PubSub) {
	f.mu.Lock()
	delete(f.open, pubsub)
	f.mu.Unlock()
	_ = pubsub.Close()
}
