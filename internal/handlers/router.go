package handlers

import (
	"context"
	"net/http"

	"github.com/dsmolyakov/gostdocs/internal/handlers/middleware"
	"github.com/dsmolyakov/gostdocs/internal/logger"
	"github.com/dsmolyakov/gostdocs/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// routerAuthService adds the token resolution the auth middleware needs on
// top of the register, login and refresh operations
type routerAuthService interface {
	authService
	Authenticate(ctx context.Context, token string) (models.User, error)
}

func NewRouter(
	authService routerAuthService,
	docService documentService,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService)

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", NewAuth(authService).Handler()))
	root.Handle("/api/documents/", http.StripPrefix("/api/documents", withAuth(NewDocument(docService).Handler())))
	root.Handle("GET /api/me", withAuth(http.HandlerFunc(Me)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}
