package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
)

const (
	defaultTokenTTL = 30 * time.Minute

	// Inner content type declared on the JWE envelope
	// A decrypted payload with any other type never reaches claim extraction
	innerContentType = "JWT"
)

// TokenCodec issues and validates self-contained bearer tokens.
// Each token is an HS256 signed claim set (subject, expiration) nested
// inside a JWE envelope with direct key A256GCM encryption.
// Tokens are never persisted: expiration is the only invalidation
type TokenCodec struct {
	signingKey []byte
	encKey     []byte
	encrypter  jose.Encrypter
	ttl        time.Duration
}

type Config struct {
	// Base64 encoded secret for the inner MAC
	// Required to be set
	SigningSecret string

	// Base64 encoded secret used directly as the content encryption key
	// Must decode to exactly 32 bytes (256 bits)
	EncryptionSecret string

	// Lifetime of both access and refresh tokens
	// If not set then default is used
	TokenTTL time.Duration
}

func NewTokenCodec(cfg Config) (*TokenCodec, error) {
	if cfg.SigningSecret == "" {
		return nil, errors.New("signing secret must not be empty")
	}

	signingKey, err := base64.StdEncoding.DecodeString(cfg.SigningSecret)
	if err != nil {
		return nil, fmt.Errorf("signing secret is not valid base64: %w", err)
	}

	encKey, err := base64.StdEncoding.DecodeString(cfg.EncryptionSecret)
	if err != nil {
		return nil, fmt.Errorf("encryption secret is not valid base64: %w", err)
	}
	if len(encKey) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 256 bits, got %d bits", len(encKey)*8)
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: encKey},
		(&jose.EncrypterOptions{}).WithContentType(jose.ContentType(innerContentType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating encrypter: %w", err)
	}

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	return &TokenCodec{
		signingKey: signingKey,
		encKey:     encKey,
		encrypter:  encrypter,
		ttl:        cfg.TokenTTL,
	}, nil
}

// IssuePair builds two independently signed then encrypted tokens
func (c *TokenCodec) IssuePair(email string, userID uuid.UUID) (models.TokenPair, error) {
	now := time.Now().Truncate(time.Second)

	access, err := c.issue(email, now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := c.issue(email, now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh, UserID: userID}, nil
}

// RefreshPair re-issues only the access token, the refresh token is passed
// through unchanged. The caller must validate the refresh token first
func (c *TokenCodec) RefreshPair(email string, refresh string, userID uuid.UUID) (models.TokenPair, error) {
	now := time.Now().Truncate(time.Second)

	access, err := c.issue(email, now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while re-issuing access token. Err: %w", err)
	}

	return models.TokenPair{
		Access:  access,
		Refresh: models.IssuedToken{Value: refresh},
		UserID:  userID,
	}, nil
}

// Validate reports whether the token decrypts, carries the expected inner
// content type, verifies under the signing key and is not expired.
// Fail closed: any failure yields false, never an error
func (c *TokenCodec) Validate(token string) bool {
	inner, err := c.decrypt(token)
	if err != nil {
		return false
	}

	parsed, err := jwt.ParseWithClaims(
		inner,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return c.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return err == nil && parsed.Valid
}

// ExtractSubject decrypts and parses the token and returns the subject claim.
// The inner signature is verified, expiration is deliberately not checked:
// callers that need safe extraction must call Validate first
func (c *TokenCodec) ExtractSubject(token string) (string, error) {
	inner, err := c.decrypt(token)
	if err != nil {
		return "", err
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(
		inner,
		claims,
		func(t *jwt.Token) (any, error) { return c.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject claim missing", apperrors.ErrInvalidToken)
	}

	return claims.Subject, nil
}

// issue signs the claim set, then encrypts the compact signature as opaque bytes
func (c *TokenCodec) issue(email string, now time.Time) (models.IssuedToken, error) {
	expiresAt := now.Add(c.ttl)

	signed, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	).SignedString(c.signingKey)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing claims. Err: %w", err)
	}

	obj, err := c.encrypter.Encrypt([]byte(signed))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while encrypting token. Err: %w", err)
	}

	value, err := obj.CompactSerialize()
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while serializing token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// decrypt opens the JWE envelope and checks the declared inner content type
func (c *TokenCodec) decrypt(token string) (string, error) {
	obj, err := jose.ParseEncrypted(
		token,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	cty, _ := obj.Header.ExtraHeaders[jose.HeaderContentType].(string)
	if cty != innerContentType {
		return "", fmt.Errorf("%w: unexpected inner content type %q", apperrors.ErrInvalidToken, cty)
	}

	inner, err := obj.Decrypt(c.encKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	return string(inner), nil
}
