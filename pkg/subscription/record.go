package subscription

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the persisted per-user billing state. Each user has exactly one
// record; UserID is the owning key and never changes after creation.
type Record struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Provider identifiers are empty until a billing relationship exists.
	ProviderCustomerID string `json:"provider_customer_id,omitempty"`
	ProviderSubID      string `json:"provider_subscription_id,omitempty"`

	Status   Status   `json:"status"`
	PlanType PlanType `json:"plan_type"`

	AmountPaid int64  `json:"amount_paid"`
	Currency   string `json:"currency"`

	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTrialing returns true if the record is in trial status, regardless of
// whether the trial window is still open. Use InTrialAt for the time-aware
// check.
func (r *Record) IsTrialing() bool {
	return r.Status == StatusTrialing
}

// IsActive returns true if the record is in paid active status.
func (r *Record) IsActive() bool {
	return r.Status == StatusActive
}

// IsCanceled returns true if the subscription was canceled.
func (r *Record) IsCanceled() bool {
	return r.Status == StatusCanceled
}

// Validate checks the model invariants every persisted record must hold.
// Both the store's decode gate and the webhook writer go through it, so a
// record that would be rejected on read can never be written.
func (r *Record) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, r.Status)
	}
	if !r.PlanType.Valid() {
		return fmt.Errorf("%w: unknown plan type %q", ErrInvalidRecord, r.PlanType)
	}
	if r.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing user ID", ErrInvalidRecord)
	}
	// Paid statuses can only be reached through a real provider subscription.
	if r.Status.paid() && r.ProviderSubID == "" {
		return fmt.Errorf("%w: status %q without provider subscription ID", ErrInvalidRecord, r.Status)
	}
	return nil
}

// rawRecord is the untyped row shape handed back by the store. It must pass
// decodeRecord before it becomes a Record; the store is not trusted to
// return well-typed data.
type rawRecord struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	ProviderCustomerID *string
	ProviderSubID      *string
	Status             string
	PlanType           string
	AmountPaid         int64
	Currency           string
	TrialEndsAt        *time.Time
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CanceledAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// decodeRecord is the single validation gate between the store and the rest
// of the core. It narrows the raw row to a Record and rejects rows that
// violate the model invariants instead of letting them leak into access
// decisions.
func decodeRecord(raw rawRecord) (*Record, error) {
	rec := &Record{
		ID:                 raw.ID,
		UserID:             raw.UserID,
		Status:             Status(raw.Status),
		PlanType:           PlanType(raw.PlanType),
		AmountPaid:         raw.AmountPaid,
		Currency:           raw.Currency,
		TrialEndsAt:        raw.TrialEndsAt,
		CurrentPeriodStart: raw.CurrentPeriodStart,
		CurrentPeriodEnd:   raw.CurrentPeriodEnd,
		CanceledAt:         raw.CanceledAt,
		CreatedAt:          raw.CreatedAt,
		UpdatedAt:          raw.UpdatedAt,
	}
	if raw.ProviderCustomerID != nil {
		rec.ProviderCustomerID = *raw.ProviderCustomerID
	}
	if raw.ProviderSubID != nil {
		rec.ProviderSubID = *raw.ProviderSubID
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
