package subscription_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmbertoV88/wedweaver/pkg/subscription"
)

// stubService returns canned responses for the gate middleware tests.
type stubService struct {
	rec *subscription.Record
	err error
}

func (s *stubService) GetSubscription(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	return s.rec, s.err
}

func (s *stubService) StartTrial(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	return nil, errors.New("not implemented")
}

func (s *stubService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, planID string, opts subscription.CheckoutOptions) (*subscription.CheckoutSession, error) {
	return nil, errors.New("not implemented")
}

func (s *stubService) CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (*subscription.PortalSession, error) {
	return nil, errors.New("not implemented")
}

func (s *stubService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return errors.New("not implemented")
}

func gateFor(svc subscription.Service, authenticated bool) func(http.Handler) http.Handler {
	identity := func(r *http.Request) (uuid.UUID, bool) {
		if !authenticated {
			return uuid.Nil, false
		}
		return uuid.New(), true
	}
	return subscription.PaywallGate(subscription.GateConfig{
		Service:   svc,
		Identity:  identity,
		SignInURL: "/signin",
		AppURL:    "/app",
	})
}

func runGate(t *testing.T, gate func(http.Handler) http.Handler) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reachedNext := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedNext = true
		_, ok := subscription.RecordFromContext(r.Context())
		assert.True(t, ok, "gate must stash the snapshot in the context")
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	gate(next).ServeHTTP(rr, req)
	return rr, reachedNext
}

func TestPaywallGate(t *testing.T) {
	t.Parallel()

	t.Run("unauthenticated redirects to sign-in", func(t *testing.T) {
		t.Parallel()
		rr, reachedNext := runGate(t, gateFor(&stubService{}, false))
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/signin", rr.Header().Get("Location"))
		assert.False(t, reachedNext)
	})

	t.Run("entitled user is redirected to the app", func(t *testing.T) {
		t.Parallel()
		svc := &stubService{rec: &subscription.Record{
			ID: uuid.New(), UserID: uuid.New(),
			Status: subscription.StatusActive, ProviderSubID: "sub_1",
		}}
		rr, reachedNext := runGate(t, gateFor(svc, true))
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/app", rr.Header().Get("Location"))
		assert.False(t, reachedNext)
	})

	t.Run("authenticated without entitlement renders pricing", func(t *testing.T) {
		t.Parallel()
		trialEnd := time.Now().Add(-time.Hour)
		svc := &stubService{rec: &subscription.Record{
			ID: uuid.New(), UserID: uuid.New(),
			Status: subscription.StatusTrialing, TrialEndsAt: &trialEnd,
		}}
		rr, reachedNext := runGate(t, gateFor(svc, true))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, reachedNext)
	})

	t.Run("fetch failure degrades to not active", func(t *testing.T) {
		t.Parallel()
		svc := &stubService{err: errors.New("store unavailable")}
		rr, reachedNext := runGate(t, gateFor(svc, true))
		assert.Equal(t, http.StatusOK, rr.Code, "must not crash the surface")
		assert.True(t, reachedNext)
	})
}
