package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dsmolyakov/gostdocs/internal/models"
)

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	Role         models.Role
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Document repository interface
type DocumentRepo interface {
	CreateDocument(ctx context.Context, doc models.Document) (models.Document, error)

	// If document not found must return apperrors.ErrDocumentNotFound
	GetDocumentByID(ctx context.Context, id int64) (models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)

	// Update descriptive fields only, status stays untouched
	UpdateDocument(ctx context.Context, doc models.Document) (models.Document, error)

	// Update status only
	// If the partial unique index on (full_name, status=CURRENT) fires,
	// must return apperrors.ErrCurrentNameTaken
	UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus) (models.Document, error)

	// Find a document holding the given status for the name
	// If none exists must return apperrors.ErrDocumentNotFound
	FindByNameAndStatus(ctx context.Context, fullName string, status models.DocumentStatus) (models.Document, error)

	ExistsByName(ctx context.Context, fullName string) (bool, error)
	DeleteDocument(ctx context.Context, id int64) error
}

// Document file repository interface
// One blob per document, saving again overwrites
type FileRepo interface {
	SaveFile(ctx context.Context, file models.DocumentFile) error

	// If no file stored must return apperrors.ErrFileNotFound
	GetFile(ctx context.Context, documentID int64) (models.DocumentFile, error)
}

type Storage interface {
	User() UserRepo
	Document() DocumentRepo
	File() FileRepo

	// Run fn within a transaction
	InTx(ctx context.Context, fn func(Storage) error) error

	// Run fn within a serializable transaction
	// Document status transitions require it to close the check-then-act race
	InSerializableTx(ctx context.Context, fn func(Storage) error) error
}
