package subscription

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// IdentityFunc resolves the authenticated user from a request. The boolean
// is false when the request carries no valid identity.
type IdentityFunc func(r *http.Request) (uuid.UUID, bool)

// GateConfig configures the paywall gate middleware.
type GateConfig struct {
	Service   Service
	Identity  IdentityFunc
	SignInURL string // where unauthenticated users go
	AppURL    string // where already-entitled users go
	Logger    *slog.Logger
	Now       func() time.Time // defaults to time.Now
}

// PaywallGate guards the pricing surface. The decision is made only after
// both identity and the subscription snapshot are resolved; the fetch is a
// required suspension point, never skipped.
//
// A failed snapshot fetch degrades to "not active" — the surface still
// renders rather than erroring, per the entitlement degradation policy.
func PaywallGate(cfg GateConfig) func(http.Handler) http.Handler {
	if cfg.Service == nil {
		panic("subscription: GateConfig.Service is required")
	}
	if cfg.Identity == nil {
		panic("subscription: GateConfig.Identity is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, authenticated := cfg.Identity(r)

			var rec *Record
			if authenticated {
				var err error
				rec, err = cfg.Service.GetSubscription(r.Context(), userID)
				if err != nil {
					log.ErrorContext(r.Context(), "entitlement fetch failed, treating as not active",
						"user_id", userID, "error", err)
					rec = nil
				}
			}

			switch Decide(authenticated, rec, now()) {
			case GateSignIn:
				http.Redirect(w, r, cfg.SignInURL, http.StatusSeeOther)
			case GateRedirectApp:
				http.Redirect(w, r, cfg.AppURL, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r.WithContext(SetRecord(r.Context(), rec)))
			}
		})
	}
}
