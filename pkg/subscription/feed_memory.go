package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// watcherBuffer bounds how many undelivered changes a single watcher can
// hold before new ones are dropped for it. Subscription records change
// rarely, so a small buffer is plenty.
const watcherBuffer = 16

// MemoryFeed is an in-process Feed. Each watcher gets its own dispatch
// goroutine reading from a buffered channel, which preserves publish order
// per user and keeps a slow handler from blocking Publish.
type MemoryFeed struct {
	mu       sync.RWMutex
	watchers map[uuid.UUID]map[*memoryWatcher]struct{}
	closed   bool
	wg       sync.WaitGroup
}

type memoryWatcher struct {
	userID uuid.UUID
	ch     chan *Record
	done   chan struct{}
}

// NewMemoryFeed creates an in-memory subscription feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		watchers: make(map[uuid.UUID]map[*memoryWatcher]struct{}),
	}
}

// Subscribe starts watching one user's record changes.
func (f *MemoryFeed) Subscribe(ctx context.Context, userID uuid.UUID, fn RecordHandler) (*Watch, error) {
	if fn == nil {
		return nil, ErrFeedClosed
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFeedClosed
	}

	w := &memoryWatcher{
		userID: userID,
		ch:     make(chan *Record, watcherBuffer),
		done:   make(chan struct{}),
	}
	if f.watchers[userID] == nil {
		f.watchers[userID] = make(map[*memoryWatcher]struct{})
	}
	f.watchers[userID][w] = struct{}{}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-w.done:
				return
			case rec := <-w.ch:
				fn(rec)
			}
		}
	}()

	return newWatch(func() { f.remove(w) }), nil
}

// Publish fans the record out to the owning user's watchers. A watcher with
// a full buffer misses the change rather than stalling the publisher.
func (f *MemoryFeed) Publish(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return ErrFeedClosed
	}

	for w := range f.watchers[rec.UserID] {
		select {
		case w.ch <- rec:
		default:
		}
	}
	return nil
}

// Close tears down all watches and waits for in-flight deliveries.
func (f *MemoryFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	for _, set := range f.watchers {
		for w := range set {
			close(w.done)
		}
	}
	clear(f.watchers)
	f.mu.Unlock()

	f.wg.Wait()
	return nil
}

func (f *MemoryFeed) remove(w *memoryWatcher) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if set, ok := f.watchers[w.userID]; ok {
		if _, present := set[w]; present {
			delete(set, w)
			if len(set) == 0 {
				delete(f.watchers, w.userID)
			}
			close(w.done)
		}
	}
}
