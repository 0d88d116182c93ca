package authtoken

import (
	"net/http"
	"strings"
)

// BearerToken extracts the token from an "Authorization: Bearer"
// header. Returns an empty string when the header is absent or
// malformed.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return token
}

// Middleware verifies the bearer token on every request and stores
// the authenticated user ID in the request context. Requests without
// a valid token get a 401.
func Middleware(service *Service) func(next http.Handler) http.Handler {
	if service == nil {
		panic("authtoken: middleware requires a service")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := service.Parse(token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
		})
	}
}
