package subscription

import (
	"context"
	"time"
)

// Gateway defines the minimal interface to the external payment processor.
// The abstraction keeps provider specifics (Stripe today) out of the
// lifecycle logic and lets tests substitute a mock. The provider owns the
// source of truth for payment events; this side only reflects them.
type Gateway interface {
	// CreateCheckoutSession creates a hosted checkout session.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// CreatePortalSession returns a temporary link to the self-service
	// billing portal where users manage payment methods and cancellation.
	CreatePortalSession(ctx context.Context, req PortalRequest) (*PortalSession, error)

	// ListSubscriptions returns the provider-side subscriptions of a
	// customer across all statuses, including ended ones.
	ListSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error)

	// CancelSubscription cancels a single provider subscription immediately.
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// DeleteCustomer removes the provider-side customer object.
	DeleteCustomer(ctx context.Context, customerID string) error

	// ParseWebhook validates the webhook signature and normalizes the
	// provider event. Must reject spoofed payloads.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier
	UserID     string // internal user ID, echoed back in webhook metadata
	SuccessURL string
	CancelURL  string
	TrialDays  int64 // provider-side trial length, 0 starts billing immediately
}

// CheckoutSession represents a hosted checkout session.
type CheckoutSession struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalRequest contains data needed to create a billing portal session.
type PortalRequest struct {
	CustomerID string
	ReturnURL  string
}

// PortalSession is a pre-authenticated billing portal link. Stripe does
// not report an expiry for portal sessions; links are single-use and
// short-lived on the provider side.
type PortalSession struct {
	URL string
}

// ProviderSubscription is the provider-side view of one subscription,
// reduced to what the deletion workflow needs.
type ProviderSubscription struct {
	ID     string
	Status Status
}

// EventType represents the normalized billing event type. The provider
// adapter maps its native event names to these.
type EventType string

const (
	EventSubscriptionCreated  EventType = "subscription_created"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
)

// WebhookEvent is a normalized billing event from the provider.
type WebhookEvent struct {
	Type          EventType
	ProviderEvent string // original provider event name

	SubscriptionID string
	CustomerID     string
	UserID         string // internal user ID recovered from metadata

	Status   Status
	PriceID  string
	Amount   int64
	Currency string

	TrialEndsAt *time.Time
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	CanceledAt  *time.Time
}
