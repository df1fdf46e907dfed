package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("credentials incorrect")

	ErrInvalidToken     = errors.New("invalid token")
	ErrUnauthenticated  = errors.New("no authenticated user")
	ErrPermissionDenied = errors.New("permission denied")

	ErrDocumentNotFound      = errors.New("document not found")
	ErrDocumentAlreadyExists = errors.New("document with this name already exists")
	ErrFileNotFound          = errors.New("document file not found")

	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrCurrentNameTaken     = errors.New("another document with this name is already current")
)

// StatusConflictError names the document that blocks a transition to CURRENT
// Matches ErrCurrentNameTaken with errors.Is
type StatusConflictError struct {
	DocumentID int64
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("document %d already holds status CURRENT for this name", e.DocumentID)
}

func (e *StatusConflictError) Unwrap() error {
	return ErrCurrentNameTaken
}
