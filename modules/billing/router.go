package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/UmbertoV88/wedweaver/pkg/authtoken"
	"github.com/UmbertoV88/wedweaver/pkg/subscription"
)

// maxWebhookBody caps the payload read from the billing provider.
const maxWebhookBody = 1 << 16

// RouterConfig wires the billing module.
type RouterConfig struct {
	Service subscription.Service
	// Plans is the public catalog served on the pricing endpoint.
	Plans []subscription.Plan
	// Auth authenticates requests and puts the user ID in the context.
	Auth func(http.Handler) http.Handler
	// Gate is the paywall middleware for the pricing endpoint. Optional;
	// without it the catalog is served to everyone.
	Gate   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// Router exposes the billing endpoints. Mount it under /billing.
func Router(cfg RouterConfig) chi.Router {
	if cfg.Service == nil {
		panic("billing: service is required")
	}
	if cfg.Auth == nil {
		panic("billing: auth middleware is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &handlers{svc: cfg.Service, plans: cfg.Plans, log: log}

	r := chi.NewRouter()
	r.Post("/webhook", h.webhook)

	r.Group(func(r chi.Router) {
		if cfg.Gate != nil {
			r.Use(cfg.Gate)
		}
		r.Get("/pricing", h.pricing)
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth)
		r.Get("/subscription", h.getSubscription)
		r.Post("/trial", h.startTrial)
		r.Post("/checkout", h.checkout)
		r.Post("/portal", h.portal)
	})
	return r
}

type handlers struct {
	svc   subscription.Service
	plans []subscription.Plan
	log   *slog.Logger
}

func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.svc.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.log.ErrorContext(r.Context(), "webhook rejected", "error", err)
		// Unknown users are acknowledged so the provider stops retrying
		// an event we can never attribute.
		if errors.Is(err, subscription.ErrUnknownWebhookUser) {
			writeJSON(w, http.StatusOK, map[string]any{"received": true})
			return
		}
		if errors.Is(err, subscription.ErrWebhookVerificationFailed) {
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}

func (h *handlers) pricing(w http.ResponseWriter, r *http.Request) {
	public := make([]subscription.Plan, 0, len(h.plans))
	for _, plan := range h.plans {
		if plan.Public {
			public = append(public, plan)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": public})
}

func (h *handlers) getSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := authtoken.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rec, err := h.svc.GetSubscription(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to load subscription", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subscription": rec,
		"access":       subscription.EvaluateAccess(rec, time.Now()),
	})
}

func (h *handlers) startTrial(w http.ResponseWriter, r *http.Request) {
	userID, ok := authtoken.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rec, err := h.svc.StartTrial(r.Context(), userID)
	if err != nil {
		if errors.Is(err, subscription.ErrTrialAlreadyUsed) {
			writeError(w, http.StatusConflict, "trial already used")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to start trial", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start trial")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"subscription": rec})
}

type checkoutRequest struct {
	PlanID     string `json:"plan_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
	SkipTrial  bool   `json:"skip_trial"`
}

func (h *handlers) checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := authtoken.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == "" {
		writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	session, err := h.svc.CreateCheckoutSession(r.Context(), userID, req.PlanID, subscription.CheckoutOptions{
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		SkipTrial:  req.SkipTrial,
	})
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrPlanNotFound):
			writeError(w, http.StatusNotFound, "unknown plan")
		case errors.Is(err, subscription.ErrSubscriptionAlreadyExists):
			writeError(w, http.StatusConflict, "subscription already active")
		default:
			h.log.ErrorContext(r.Context(), "failed to create checkout session", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create checkout session")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"url": session.URL})
}

type portalRequest struct {
	ReturnURL string `json:"return_url"`
}

func (h *handlers) portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := authtoken.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req portalRequest
	// The body is optional; a missing return URL falls back to the
	// provider default.
	_ = json.NewDecoder(r.Body).Decode(&req)

	session, err := h.svc.CreatePortalSession(r.Context(), userID, req.ReturnURL)
	if err != nil {
		if errors.Is(err, subscription.ErrNoBillingAccount) {
			writeError(w, http.StatusBadRequest, "no billing account")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to create portal session", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create portal session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"url": session.URL})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
