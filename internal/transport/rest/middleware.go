package rest

import (
	"net/http"
	"strings"

	"github.com/abgdnv/stockguard/pkg/auth"
	"github.com/abgdnv/stockguard/pkg/logger"
)

// AuthMiddleware verifies the bearer token in the Authorization header and
// stores its subject in the request context. Requests without a valid token get 401.
func AuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Bearer token is required", http.StatusUnauthorized)
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			subject, ok := token.Subject()
			if !ok || subject == "" {
				http.Error(w, "no claim `sub`", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(logger.WithSubject(r.Context(), subject)))
		})
	}
}
