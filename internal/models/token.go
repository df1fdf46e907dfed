package models

import (
	"time"

	"github.com/google/uuid"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued at sign-in and partially re-issued at refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
	UserID  uuid.UUID
}
