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

type FileRepo struct {
	DB DBTX
}

const saveFile = `-- name: SaveFile
INSERT INTO document_files (document_id, filename, content_type, data)
VALUES ($1, $2, $3, $4)
ON CONFLICT (document_id) DO UPDATE
SET filename = EXCLUDED.filename,
    content_type = EXCLUDED.content_type,
    data = EXCLUDED.data
`

func (r *FileRepo) SaveFile(ctx context.Context, file models.DocumentFile) error {
	_, err := r.DB.Exec(ctx, saveFile, file.DocumentID, file.Filename, file.ContentType, file.Data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return apperrors.ErrDocumentNotFound
		}

		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const getFile = `-- name: GetFile
SELECT document_id, filename, content_type, data FROM document_files
WHERE document_id = $1
`

func (r *FileRepo) GetFile(ctx context.Context, documentID int64) (models.DocumentFile, error) {
	rows, _ := r.DB.Query(ctx, getFile, documentID)
	file, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.DocumentFile, error) {
		var f models.DocumentFile
		err := row.Scan(&f.DocumentID, &f.Filename, &f.ContentType, &f.Data)
		return f, err
	})

	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, pgx.ErrNoRows):
		return file, apperrors.ErrFileNotFound
	default:
		return file, fmt.Errorf("db error: %w", err)
	}
}
