package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
	"github.com/dsmolyakov/gostdocs/internal/repository"
)

// DocumentService owns document CRUD and the status state machine
type DocumentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *DocumentService {
	return &DocumentService{storage: storage}
}

// Create stores a new document after the business uniqueness check on full name.
// Any valid status may be assigned at creation
func (s *DocumentService) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	if !doc.Status.Valid() {
		return models.Document{}, fmt.Errorf("unknown document status %q", doc.Status)
	}

	var created models.Document
	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		exists, err := store.Document().ExistsByName(ctx, doc.FullName)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDocumentAlreadyExists
		}

		created, err = store.Document().CreateDocument(ctx, doc)
		return err
	})

	return created, err
}

func (s *DocumentService) Get(ctx context.Context, id int64) (models.Document, error) {
	return s.storage.Document().GetDocumentByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.storage.Document().ListDocuments(ctx)
}

// Update changes descriptive fields only
// Status is mutated exclusively through Transition
func (s *DocumentService) Update(ctx context.Context, doc models.Document) (models.Document, error) {
	return s.storage.Document().UpdateDocument(ctx, doc)
}

func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	return s.storage.Document().DeleteDocument(ctx, id)
}

func (s *DocumentService) SaveFile(ctx context.Context, file models.DocumentFile) error {
	return s.storage.File().SaveFile(ctx, file)
}

func (s *DocumentService) GetFile(ctx context.Context, documentID int64) (models.DocumentFile, error) {
	return s.storage.File().GetFile(ctx, documentID)
}

// Transition moves a document to the target status.
//
// The transition table is checked first, then, for transitions to CURRENT,
// no other document with the same full name may already hold CURRENT.
// The check and the write run inside one serializable transaction so two
// concurrent transitions to CURRENT for the same name cannot both pass,
// with the partial unique index as the storage level backstop
func (s *DocumentService) Transition(ctx context.Context, id int64, target models.DocumentStatus) (models.Document, error) {
	var updated models.Document

	err := s.storage.InSerializableTx(ctx, func(store repository.Storage) error {
		doc, err := store.Document().GetDocumentByID(ctx, id)
		if err != nil {
			return err
		}

		if !models.CanTransition(doc.Status, target) {
			return fmt.Errorf("%w: %q -> %q", apperrors.ErrTransitionNotAllowed, doc.Status, target)
		}

		if target == models.StatusCurrent {
			holder, err := store.Document().FindByNameAndStatus(ctx, doc.FullName, models.StatusCurrent)
			switch {
			case err == nil && holder.ID != doc.ID:
				return &apperrors.StatusConflictError{DocumentID: holder.ID}
			case err != nil && !errors.Is(err, apperrors.ErrDocumentNotFound):
				return err
			}
		}

		updated, err = store.Document().UpdateStatus(ctx, doc.ID, target)
		return err
	})

	return updated, err
}
