package subscription

import (
	"log/slog"
	"time"
)

// ServiceOption configures optional service settings.
type ServiceOption func(*service)

// WithFeed sets the feed that receives committed record changes.
// Without a feed the service still works; changes just aren't pushed.
func WithFeed(feed Feed) ServiceOption {
	return func(s *service) {
		if feed != nil {
			s.feed = feed
		}
	}
}

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNowFunc overrides the clock. Tests use it to pin trial boundaries to
// exact instants.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
