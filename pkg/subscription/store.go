package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines persistence for subscription records. Each user has exactly
// one record, so UserID serves as the lookup key.
type Store interface {
	// Get retrieves the record owned by userID.
	// Returns ErrRecordNotFound if no record exists.
	Get(ctx context.Context, userID uuid.UUID) (*Record, error)

	// Save creates or updates a record, keyed by UserID.
	Save(ctx context.Context, rec *Record) error
}
