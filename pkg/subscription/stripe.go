package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeConfig holds configuration for the Stripe billing gateway.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
}

// StripeGateway implements Gateway on top of the official Stripe SDK.
// Checkout and portal pages are Stripe-hosted, so no card data ever touches
// this application.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a Stripe-backed billing gateway.
func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

// CreateCheckoutSession creates a hosted subscription checkout session.
// The internal user ID travels in the subscription metadata so webhook
// events can be mapped back without a provider-side lookup.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.PriceID == "" {
		return nil, fmt.Errorf("%w: missing price ID", ErrInvalidPlanConfiguration)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": req.UserID},
		},
	}
	params.Context = ctx

	if req.TrialDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(req.TrialDays)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	if sess.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutSession{
		URL:       sess.URL,
		SessionID: sess.ID,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// CreatePortalSession returns a pre-authenticated billing portal link.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, req PortalRequest) (*PortalSession, error) {
	if req.CustomerID == "" {
		return nil, ErrNoBillingAccount
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(req.CustomerID),
		ReturnURL: stripe.String(req.ReturnURL),
	}
	params.Context = ctx

	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, err
	}
	if sess.URL == "" {
		return nil, ErrNoPortalURL
	}

	return &PortalSession{URL: sess.URL}, nil
}

// ListSubscriptions returns every subscription of the customer, ended ones
// included, so callers can decide which still need cancellation.
func (g *StripeGateway) ListSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		// "all" is a list-filter value only; the SDK has no status
		// constant for it.
		Status: stripe.String("all"),
	}
	params.Context = ctx

	var subs []ProviderSubscription
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		s := iter.Subscription()
		subs = append(subs, ProviderSubscription{
			ID:     s.ID,
			Status: mapStripeStatus(s.Status),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// CancelSubscription cancels a subscription immediately (no period-end
// grace), which is what account teardown requires.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	_, err := g.api.Subscriptions.Cancel(subscriptionID, params)
	return err
}

// DeleteCustomer removes the Stripe customer object.
func (g *StripeGateway) DeleteCustomer(ctx context.Context, customerID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	_, err := g.api.Customers.Del(customerID, params)
	return err
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the
// event. Unmapped event types come back with their native name as the Type
// so the service can ignore them explicitly.
func (g *StripeGateway) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWebhookVerificationFailed, err)
	}

	normalized := &WebhookEvent{
		Type:          mapStripeEventType(string(event.Type)),
		ProviderEvent: string(event.Type),
	}

	switch normalized.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCanceled:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
		}
		normalized.SubscriptionID = sub.ID
		normalized.Status = mapStripeStatus(sub.Status)
		normalized.UserID = sub.Metadata["user_id"]
		if sub.Customer != nil {
			normalized.CustomerID = sub.Customer.ID
		}
		if sub.TrialEnd > 0 {
			normalized.TrialEndsAt = unixPtr(sub.TrialEnd)
		}
		if sub.CurrentPeriodStart > 0 {
			normalized.PeriodStart = unixPtr(sub.CurrentPeriodStart)
		}
		if sub.CurrentPeriodEnd > 0 {
			normalized.PeriodEnd = unixPtr(sub.CurrentPeriodEnd)
		}
		if sub.CanceledAt > 0 {
			normalized.CanceledAt = unixPtr(sub.CanceledAt)
		}
		if sub.Items != nil && len(sub.Items.Data) > 0 {
			if price := sub.Items.Data[0].Price; price != nil {
				normalized.PriceID = price.ID
				normalized.Amount = price.UnitAmount
				normalized.Currency = string(price.Currency)
			}
		}

	case EventPaymentSucceeded, EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("failed to parse invoice payload: %w", err)
		}
		if inv.Customer != nil {
			normalized.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			normalized.SubscriptionID = inv.Subscription.ID
		}
		if inv.SubscriptionDetails != nil {
			normalized.UserID = inv.SubscriptionDetails.Metadata["user_id"]
		}
		normalized.Amount = inv.AmountPaid
		normalized.Currency = string(inv.Currency)
	}

	return normalized, nil
}

func unixPtr(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

// mapStripeEventType maps Stripe event names to internal event types.
func mapStripeEventType(stripeEvent string) EventType {
	switch stripeEvent {
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionCanceled
	case "invoice.payment_succeeded":
		return EventPaymentSucceeded
	case "invoice.payment_failed":
		return EventPaymentFailed
	default:
		// Unmapped events keep their native name so the service can skip
		// them without losing the information in logs.
		return EventType(stripeEvent)
	}
}

// mapStripeStatus maps Stripe subscription statuses to internal statuses.
func mapStripeStatus(s stripe.SubscriptionStatus) Status {
	switch s {
	case stripe.SubscriptionStatusTrialing:
		return StatusTrialing
	case stripe.SubscriptionStatusActive:
		return StatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return StatusPastDue
	case stripe.SubscriptionStatusCanceled:
		return StatusCanceled
	case stripe.SubscriptionStatusIncomplete, stripe.SubscriptionStatusIncompleteExpired:
		return StatusIncomplete
	default:
		return Status(s)
	}
}
