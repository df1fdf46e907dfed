package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
)

type principalContextKey struct{}

// ContextWithUser attaches the authenticated user to the context
func ContextWithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

// UserFromContext extracts the authenticated user from the context
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(principalContextKey{}).(models.User)
	return u, ok
}

// CurrentUser returns the authenticated principal or ErrUnauthenticated
// when the request carries no resolved identity
func CurrentUser(ctx context.Context) (models.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return models.User{}, apperrors.ErrUnauthenticated
	}
	return u, nil
}

// CurrentUserID returns the authenticated principal's id
func CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// RequirePermission checks the principal's role against the permission model
func RequirePermission(ctx context.Context, perm models.Permission) error {
	u, err := CurrentUser(ctx)
	if err != nil {
		return err
	}
	if !u.Role.Has(perm) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
