package middleware

import (
	"net/http"
	"strings"

	"infinite-experiment/bouncer/internal/auth"
	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/logging"
)

// AuthMiddleware requires a valid ops bearer token.
func AuthMiddleware(signer *common.TokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized. Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := signer.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Warn("Rejected ops API token", "remote_addr", r.RemoteAddr, "error", err.Error())
				http.Error(w, "Unauthorized. Invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetOperatorClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
