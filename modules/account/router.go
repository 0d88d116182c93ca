package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/UmbertoV88/wedweaver/pkg/authtoken"
	"github.com/UmbertoV88/wedweaver/svc/account"
)

// Deleter runs the account deletion workflow for a user.
type Deleter interface {
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// RouterConfig wires the account module.
type RouterConfig struct {
	Workflow Deleter
	// Auth authenticates requests and puts the user ID in the context.
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// Router exposes the account endpoints. Mount it under /account.
func Router(cfg RouterConfig) chi.Router {
	if cfg.Workflow == nil {
		panic("account: workflow is required")
	}
	if cfg.Auth == nil {
		panic("account: auth middleware is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth)
		r.Delete("/", deleteAccount(cfg.Workflow, log))
	})
	return r
}

func deleteAccount(wf Deleter, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authtoken.UserIDFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}

		if err := wf.DeleteAccount(r.Context(), userID); err != nil {
			log.ErrorContext(r.Context(), "account deletion failed", "user_id", userID, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, account.ErrUserNotFound) {
				status = http.StatusNotFound
			}
			// The deletion UI surfaces this message as-is, so it carries the
			// originating error rather than a generic one.
			writeJSON(w, status, map[string]any{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
