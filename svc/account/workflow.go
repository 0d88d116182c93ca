package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/UmbertoV88/wedweaver/pkg/subscription"
)

// IdentityStore removes a user's identity row. Rows owned by the user
// (subscription record included) are expected to go with it via
// cascading deletes.
type IdentityStore interface {
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Workflow runs the ordered account deletion sequence.
type Workflow struct {
	store    subscription.Store
	gateway  subscription.Gateway
	identity IdentityStore
	log      *slog.Logger
}

// NewWorkflow creates the deletion workflow. All dependencies are
// required.
func NewWorkflow(store subscription.Store, gateway subscription.Gateway, identity IdentityStore, log *slog.Logger) *Workflow {
	if store == nil {
		panic("account: store is required")
	}
	if gateway == nil {
		panic("account: gateway is required")
	}
	if identity == nil {
		panic("account: identity store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{store: store, gateway: gateway, identity: identity, log: log}
}

// DeleteAccount cancels the user's live billing state and then
// removes the identity. Ordering matters: the identity row is only
// deleted once every active or trialing provider subscription has
// been canceled, so an abort on the billing side keeps the account
// intact and retryable.
func (w *Workflow) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	rec, err := w.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, subscription.ErrRecordNotFound) {
		return fmt.Errorf("account: failed to load subscription record: %w", err)
	}

	if rec != nil && rec.ProviderCustomerID != "" {
		if err := w.cleanupBilling(ctx, rec.ProviderCustomerID); err != nil {
			return err
		}
	}

	if err := w.identity.DeleteUser(ctx, userID); err != nil {
		return errors.Join(ErrIdentityDeleteFailed, err)
	}

	w.log.InfoContext(ctx, "account deleted", "user_id", userID)
	return nil
}

// cleanupBilling cancels every live subscription on the provider
// customer and then removes the customer itself. Cancellation
// failures abort; customer removal failures do not, since by then no
// recurring charge remains.
func (w *Workflow) cleanupBilling(ctx context.Context, customerID string) error {
	subs, err := w.gateway.ListSubscriptions(ctx, customerID)
	if err != nil {
		return errors.Join(ErrSubscriptionCancelFailed, err)
	}

	for _, sub := range subs {
		if sub.Status != subscription.StatusActive && sub.Status != subscription.StatusTrialing {
			continue
		}
		if err := w.gateway.CancelSubscription(ctx, sub.ID); err != nil {
			return errors.Join(ErrSubscriptionCancelFailed, err)
		}
		w.log.InfoContext(ctx, "canceled billing subscription", "subscription_id", sub.ID)
	}

	if err := w.gateway.DeleteCustomer(ctx, customerID); err != nil {
		w.log.ErrorContext(ctx, "failed to delete billing customer, continuing",
			"customer_id", customerID, "error", err)
	}
	return nil
}
