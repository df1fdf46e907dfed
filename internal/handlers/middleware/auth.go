package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dsmolyakov/gostdocs/internal/handlers/render"
	"github.com/dsmolyakov/gostdocs/internal/models"
	"github.com/dsmolyakov/gostdocs/internal/service/auth"
)

type authService interface {
	// Resolve bearer token to its user
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and attaches
// the resolved principal to the request context
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := as.Authenticate(r.Context(), token)
			if err != nil {
				// Collapse all token failures to one response so callers
				// can't tell which cryptographic step failed
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
