package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/unera/backend/internal/logging"
)

// TokenVerifier resolves an access token to the user it was issued to.
type TokenVerifier interface {
	Verify(accessToken string) (int64, error)
}

// Authenticate attaches the bearer token's user to the request context. Requests without an
// Authorization header pass through anonymously; a bad token is rejected with 401.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" || verifier == nil {
				writeError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			userID, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logging.FromContext(r.Context()).Warn("rejected access token", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}

			ctx := logging.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if logging.UserIDFromContext(r.Context()) == 0 {
			writeError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
