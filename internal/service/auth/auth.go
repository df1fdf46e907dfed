package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
	"github.com/dsmolyakov/gostdocs/internal/repository"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

var DefaultHasher PasswordHasher = BcryptHasher{}

// Auth service: credential verification, token issuance and refresh
type AuthService struct {
	tokens   *TokenCodec
	hasher   PasswordHasher
	userRepo repository.UserRepo
}

func NewService(cfg Config, hasher PasswordHasher, userRepo repository.UserRepo) (*AuthService, error) {
	if userRepo == nil {
		return nil, errors.New("user repo must not be nil")
	}

	if hasher == nil {
		hasher = DefaultHasher
	}

	tokens, err := NewTokenCodec(cfg)
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	return &AuthService{
		tokens:   tokens,
		hasher:   hasher,
		userRepo: userRepo,
	}, nil
}

// Register new user with role USER and issue a token pair
func (s *AuthService) Register(ctx context.Context, email string, username string, password string) (models.User, models.TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user.Email, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// CheckCredentials authenticates a sign-in attempt.
// Unknown email surfaces as ErrUserNotFound, wrong password as
// ErrInvalidCredentials with no further detail
func (s *AuthService) CheckCredentials(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// SignIn verifies credentials and issues a fresh token pair
func (s *AuthService) SignIn(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.CheckCredentials(ctx, email, password)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user.Email, user.ID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// Refresh validates the refresh token and re-issues the access token only.
// The refresh token value is echoed back unchanged
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	if !s.tokens.Validate(refresh) {
		return models.TokenPair{}, apperrors.ErrInvalidToken
	}

	email, err := s.tokens.ExtractSubject(refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.TokenPair{}, err
	}

	return s.tokens.RefreshPair(user.Email, refresh, user.ID)
}

// Authenticate resolves a bearer token to its user.
// Used by the auth middleware on every protected request
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if !s.tokens.Validate(token) {
		return models.User{}, apperrors.ErrInvalidToken
	}

	email, err := s.tokens.ExtractSubject(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.User{}, apperrors.ErrInvalidToken
		}
		return models.User{}, err
	}

	return user, nil
}

// ValidateToken exposes fail-closed token validation to transport layers
func (s *AuthService) ValidateToken(token string) bool {
	return s.tokens.Validate(token)
}
