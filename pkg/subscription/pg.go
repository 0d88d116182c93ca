package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store on PostgreSQL via pgx. Rows pass through
// decodeRecord before leaving the store, so the rest of the core never sees
// an unvalidated record.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL-backed subscription store.
// Panics on a nil pool to fail fast during initialization.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	if pool == nil {
		panic("subscription: pgxpool is required")
	}
	return &PgStore{pool: pool}
}

const getRecordQuery = `
SELECT id, user_id, provider_customer_id, provider_subscription_id,
       status, plan_type, amount_paid, currency,
       trial_ends_at, current_period_start, current_period_end, canceled_at,
       created_at, updated_at
FROM subscriptions
WHERE user_id = $1`

// Get retrieves the record owned by userID.
func (s *PgStore) Get(ctx context.Context, userID uuid.UUID) (*Record, error) {
	var raw rawRecord
	err := s.pool.QueryRow(ctx, getRecordQuery, userID).Scan(
		&raw.ID, &raw.UserID, &raw.ProviderCustomerID, &raw.ProviderSubID,
		&raw.Status, &raw.PlanType, &raw.AmountPaid, &raw.Currency,
		&raw.TrialEndsAt, &raw.CurrentPeriodStart, &raw.CurrentPeriodEnd, &raw.CanceledAt,
		&raw.CreatedAt, &raw.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription record: %w", err)
	}

	return decodeRecord(raw)
}

const saveRecordQuery = `
INSERT INTO subscriptions (
	id, user_id, provider_customer_id, provider_subscription_id,
	status, plan_type, amount_paid, currency,
	trial_ends_at, current_period_start, current_period_end, canceled_at,
	created_at, updated_at
) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (user_id) DO UPDATE SET
	provider_customer_id = EXCLUDED.provider_customer_id,
	provider_subscription_id = EXCLUDED.provider_subscription_id,
	status = EXCLUDED.status,
	plan_type = EXCLUDED.plan_type,
	amount_paid = EXCLUDED.amount_paid,
	currency = EXCLUDED.currency,
	trial_ends_at = EXCLUDED.trial_ends_at,
	current_period_start = EXCLUDED.current_period_start,
	current_period_end = EXCLUDED.current_period_end,
	canceled_at = EXCLUDED.canceled_at,
	updated_at = EXCLUDED.updated_at`

// Save upserts a record keyed by UserID. The id and created_at columns keep
// their original values on update.
func (s *PgStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrInvalidRecord
	}

	_, err := s.pool.Exec(ctx, saveRecordQuery,
		rec.ID, rec.UserID, rec.ProviderCustomerID, rec.ProviderSubID,
		string(rec.Status), string(rec.PlanType), rec.AmountPaid, rec.Currency,
		rec.TrialEndsAt, rec.CurrentPeriodStart, rec.CurrentPeriodEnd, rec.CanceledAt,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription record: %w", err)
	}
	return nil
}
