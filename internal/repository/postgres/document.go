package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
)

type DocumentRepo struct {
	DB DBTX
}

const documentColumns = `id, created_at, modified_at, full_name, designation, okpd2, oks, adopted_at, effective_at, content, status`

const createDocument = `-- name: CreateDocument
INSERT INTO documents (full_name, designation, okpd2, oks, adopted_at, effective_at, content, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + documentColumns

func (r *DocumentRepo) CreateDocument(ctx context.Context, doc models.Document) (models.Document, error) {
	rows, _ := r.DB.Query(ctx, createDocument,
		doc.FullName, doc.Designation, doc.OKPD2, doc.OKS,
		doc.AdoptedAt, doc.EffectiveAt, doc.Content, doc.Status,
	)
	created, err := pgx.CollectOneRow(rows, rowToDocument)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrCurrentNameTaken
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getDocumentByID = `-- name: GetDocumentByID
SELECT ` + documentColumns + ` FROM documents
WHERE id = $1
`

func (r *DocumentRepo) GetDocumentByID(ctx context.Context, id int64) (models.Document, error) {
	rows, _ := r.DB.Query(ctx, getDocumentByID, id)
	doc, err := pgx.CollectOneRow(rows, rowToDocument)

	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, pgx.ErrNoRows):
		return doc, apperrors.ErrDocumentNotFound
	default:
		return doc, fmt.Errorf("db error: %w", err)
	}
}

const listDocuments = `-- name: ListDocuments
SELECT ` + documentColumns + ` FROM documents
ORDER BY id
`

func (r *DocumentRepo) ListDocuments(ctx context.Context) ([]models.Document, error) {
	rows, _ := r.DB.Query(ctx, listDocuments)
	docs, err := pgx.CollectRows(rows, rowToDocument)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return docs, nil
}

const updateDocument = `-- name: UpdateDocument
UPDATE documents
SET modified_at = now(),
    full_name = $2,
    designation = $3,
    okpd2 = $4,
    oks = $5,
    adopted_at = $6,
    effective_at = $7,
    content = $8
WHERE id = $1
RETURNING ` + documentColumns

func (r *DocumentRepo) UpdateDocument(ctx context.Context, doc models.Document) (models.Document, error) {
	rows, _ := r.DB.Query(ctx, updateDocument,
		doc.ID, doc.FullName, doc.Designation, doc.OKPD2, doc.OKS,
		doc.AdoptedAt, doc.EffectiveAt, doc.Content,
	)
	updated, err := pgx.CollectOneRow(rows, rowToDocument)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrDocumentNotFound
	default:
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const updateStatus = `-- name: UpdateStatus
UPDATE documents
SET status = $2, modified_at = now()
WHERE id = $1
RETURNING ` + documentColumns

// UpdateStatus persists a new document status
// The partial unique index on (full_name) WHERE status = 'CURRENT' backstops
// the application level interference check
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus) (models.Document, error) {
	rows, _ := r.DB.Query(ctx, updateStatus, id, status)
	doc, err := pgx.CollectOneRow(rows, rowToDocument)

	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, pgx.ErrNoRows):
		return doc, apperrors.ErrDocumentNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return doc, apperrors.ErrCurrentNameTaken
		}

		return doc, fmt.Errorf("db error: %w", err)
	}
}

const findByNameAndStatus = `-- name: FindByNameAndStatus
SELECT ` + documentColumns + ` FROM documents
WHERE full_name = $1 AND status = $2
LIMIT 1
`

func (r *DocumentRepo) FindByNameAndStatus(ctx context.Context, fullName string, status models.DocumentStatus) (models.Document, error) {
	rows, _ := r.DB.Query(ctx, findByNameAndStatus, fullName, status)
	doc, err := pgx.CollectOneRow(rows, rowToDocument)

	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, pgx.ErrNoRows):
		return doc, apperrors.ErrDocumentNotFound
	default:
		return doc, fmt.Errorf("db error: %w", err)
	}
}

const existsByName = `-- name: ExistsByName
SELECT EXISTS (SELECT 1 FROM documents WHERE full_name = $1)
`

func (r *DocumentRepo) ExistsByName(ctx context.Context, fullName string) (bool, error) {
	rows, _ := r.DB.Query(ctx, existsByName, fullName)
	exists, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const deleteDocument = `-- name: DeleteDocument
DELETE FROM documents
WHERE id = $1
`

func (r *DocumentRepo) DeleteDocument(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteDocument, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}

	return nil
}

func rowToDocument(row pgx.CollectableRow) (models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.ModifiedAt, &d.FullName, &d.Designation,
		&d.OKPD2, &d.OKS, &d.AdoptedAt, &d.EffectiveAt, &d.Content, &d.Status,
	)
	return d, err
}
