package account_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmbertoV88/wedweaver/modules/account"
	"github.com/UmbertoV88/wedweaver/pkg/authtoken"
	accountsvc "github.com/UmbertoV88/wedweaver/svc/account"
)

type stubDeleter struct {
	err     error
	deleted []uuid.UUID
}

func (s *stubDeleter) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	s.deleted = append(s.deleted, userID)
	return s.err
}

// authAs injects a fixed user ID the way the token middleware would.
func authAs(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authtoken.SetUserID(r.Context(), userID)))
		})
	}
}

func rejectAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
	})
}

func TestRouter_DeleteAccount(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		wf := &stubDeleter{}
		router := account.Router(account.RouterConfig{Workflow: wf, Auth: authAs(userID)})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		require.Len(t, wf.deleted, 1)
		assert.Equal(t, userID, wf.deleted[0])
	})

	t.Run("unauthenticated request never reaches the workflow", func(t *testing.T) {
		t.Parallel()

		wf := &stubDeleter{}
		router := account.Router(account.RouterConfig{Workflow: wf, Auth: rejectAll})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, wf.deleted)
	})

	t.Run("workflow failure returns the literal error message", func(t *testing.T) {
		t.Parallel()

		wf := &stubDeleter{err: errors.New("account: failed to cancel billing subscription\nprovider down")}
		router := account.Router(account.RouterConfig{Workflow: wf, Auth: authAs(uuid.New())})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, wf.err.Error(), body["error"], "the UI shows this message verbatim")
	})

	t.Run("unknown user maps to 404 with the error message", func(t *testing.T) {
		t.Parallel()

		wf := &stubDeleter{err: accountsvc.ErrUserNotFound}
		router := account.Router(account.RouterConfig{Workflow: wf, Auth: authAs(uuid.New())})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))

		require.Equal(t, http.StatusNotFound, rr.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, accountsvc.ErrUserNotFound.Error(), body["error"])
	})
}
