package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// TrialPeriod is the client-side trial window granted without payment.
	TrialPeriod = 48 * time.Hour
	// TrialCurrency is the currency fixed at trial initialization.
	TrialCurrency = "EUR"
)

// Service defines the public interface for subscription lifecycle
// management. It is the only component that mutates subscription records
// from this side; all other transitions arrive as provider webhooks.
type Service interface {
	// GetSubscription fetches the record scoped strictly to userID.
	// A missing record is a valid "no subscription yet" state and comes
	// back as (nil, nil); only real fetch failures return an error.
	GetSubscription(ctx context.Context, userID uuid.UUID) (*Record, error)

	// StartTrial initializes the 48-hour trial window for a fresh account.
	// Re-invocation on a record that already left StatusNone is rejected
	// with ErrTrialAlreadyUsed so the trial window cannot be reset.
	StartTrial(ctx context.Context, userID uuid.UUID) (*Record, error)

	// CreateCheckoutSession creates a hosted checkout session for a plan.
	// Gateway failures propagate untouched: checkout is user-interactive
	// and must fail fast rather than retry.
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, planID string, opts CheckoutOptions) (*CheckoutSession, error)

	// CreatePortalSession creates a billing portal session. Same
	// fail-fast contract as CreateCheckoutSession.
	CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (*PortalSession, error)

	// HandleWebhook reflects a provider event into the record store and
	// publishes the committed change to the feed.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	plans   map[string]Plan
	gateway Gateway
	store   Store
	feed    Feed
	log     *slog.Logger
	now     func() time.Time
}

// NewService creates a new Service with the given dependencies.
// Panics if required parameters (src, gateway, store) are nil to fail fast
// during initialization. Use ServiceOption functions for optional settings
// like the feed or a fixed clock in tests.
func NewService(ctx context.Context, src PlansSource, gateway Gateway, store Store, opts ...ServiceOption) (Service, error) {
	if src == nil {
		panic("subscription: PlansSource is required")
	}
	if gateway == nil {
		panic("subscription: Gateway is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	s := &service{
		plans:   plans,
		gateway: gateway,
		store:   store,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// GetSubscription retrieves a user's record, treating absence as a valid
// empty state rather than a failure.
func (s *service) GetSubscription(ctx context.Context, userID uuid.UUID) (*Record, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return rec, nil
}

// StartTrial opens the trial window: now + 48h in UTC, monthly plan, EUR.
func (s *service) StartTrial(ctx context.Context, userID uuid.UUID) (*Record, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if rec != nil && rec.Status != StatusNone {
		return nil, ErrTrialAlreadyUsed
	}

	now := s.now().UTC()
	if rec == nil {
		rec = &Record{
			ID:        uuid.New(),
			UserID:    userID,
			CreatedAt: now,
		}
	}

	trialEnd := now.Add(TrialPeriod)
	rec.Status = StatusTrialing
	rec.PlanType = PlanMonthly
	rec.Currency = TrialCurrency
	rec.TrialEndsAt = &trialEnd
	rec.UpdatedAt = now

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist trial: %w", err)
	}
	s.publish(ctx, rec)

	return rec, nil
}

// CreateCheckoutSession generates a checkout link for a plan.
func (s *service) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, planID string, opts CheckoutOptions) (*CheckoutSession, error) {
	plan, exists := s.plans[planID]
	if !exists {
		return nil, ErrPlanNotFound
	}

	rec, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	// A paid subscription already exists; the portal handles plan changes.
	if rec != nil && rec.Status == StatusActive {
		return nil, ErrSubscriptionAlreadyExists
	}

	var trialDays int64
	if !opts.SkipTrial {
		trialDays = plan.TrialDays()
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:    plan.ID,
		UserID:     userID.String(),
		SuccessURL: opts.SuccessURL,
		CancelURL:  opts.CancelURL,
		TrialDays:  trialDays,
	})
}

// CreatePortalSession returns a billing portal link for an existing
// billing relationship.
func (s *service) CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (*PortalSession, error) {
	rec, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ProviderCustomerID == "" {
		return nil, ErrNoBillingAccount
	}

	return s.gateway.CreatePortalSession(ctx, PortalRequest{
		CustomerID: rec.ProviderCustomerID,
		ReturnURL:  returnURL,
	})
}

// HandleWebhook processes a provider event: verify, reflect into the
// record, publish the committed change.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCanceled, EventPaymentFailed:
	default:
		// Events that never touch entitlement are acknowledged silently so
		// the provider stops redelivering them.
		s.log.DebugContext(ctx, "ignoring webhook event", "event", event.ProviderEvent)
		return nil
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownWebhookUser, event.UserID)
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	now := s.now().UTC()
	if rec == nil {
		rec = &Record{
			ID:        uuid.New(),
			UserID:    userID,
			Status:    StatusNone,
			PlanType:  PlanNone,
			CreatedAt: now,
		}
	}

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		rec.ProviderSubID = event.SubscriptionID
		if event.CustomerID != "" {
			rec.ProviderCustomerID = event.CustomerID
		}
		rec.Status = event.Status
		rec.TrialEndsAt = coalesceTime(event.TrialEndsAt, rec.TrialEndsAt)
		rec.CurrentPeriodStart = event.PeriodStart
		rec.CurrentPeriodEnd = event.PeriodEnd
		if event.Amount > 0 {
			rec.AmountPaid = event.Amount
		}
		if event.Currency != "" {
			rec.Currency = event.Currency
		}
		if plan, ok := s.plans[event.PriceID]; ok {
			rec.PlanType = plan.Type
		}

	case EventSubscriptionCanceled:
		if event.SubscriptionID != "" {
			rec.ProviderSubID = event.SubscriptionID
		}
		rec.Status = StatusCanceled
		rec.CanceledAt = coalesceTime(event.CanceledAt, &now)

	case EventPaymentFailed:
		if event.SubscriptionID != "" {
			rec.ProviderSubID = event.SubscriptionID
		}
		rec.Status = StatusPastDue
	}
	rec.UpdatedAt = now

	// The store rejects invariant-breaking rows on read, so they must never
	// be written either. An event that cannot produce a valid record is
	// acknowledged and dropped; persisting it would poison the row, and
	// erroring would only make the provider redeliver it forever.
	if err := rec.Validate(); err != nil {
		s.log.ErrorContext(ctx, "dropping webhook event that would corrupt the record",
			"event", event.ProviderEvent, "user_id", userID, "error", err)
		return nil
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	s.publish(ctx, rec)

	return nil
}

// publish pushes a committed change to the feed; delivery problems are
// logged, never surfaced, because the store already holds the truth.
func (s *service) publish(ctx context.Context, rec *Record) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "failed to publish record change",
			"user_id", rec.UserID, "error", err)
	}
}

func coalesceTime(primary, fallback *time.Time) *time.Time {
	if primary != nil {
		return primary
	}
	return fallback
}
