package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
	"github.com/dsmolyakov/gostdocs/internal/testutil"
)

func Test_FileRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("save and get file", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			docs := DocumentRepo{DB: tx}
			files := FileRepo{DB: tx}

			doc, err := docs.CreateDocument(t.Context(), models.Document{FullName: "doc", Status: models.StatusCurrent})
			require.NoError(t, err)

			file := models.DocumentFile{
				DocumentID:  doc.ID,
				Filename:    "standard.pdf",
				ContentType: "application/pdf",
				Data:        []byte{0x25, 0x50, 0x44, 0x46},
			}
			require.NoError(t, files.SaveFile(t.Context(), file))

			got, err := files.GetFile(t.Context(), doc.ID)
			require.NoError(t, err)
			assert.Equal(t, file, got)
		})
	})

	t.Run("save overwrites previous blob", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			docs := DocumentRepo{DB: tx}
			files := FileRepo{DB: tx}

			doc, err := docs.CreateDocument(t.Context(), models.Document{FullName: "doc", Status: models.StatusCurrent})
			require.NoError(t, err)

			require.NoError(t, files.SaveFile(t.Context(), models.DocumentFile{DocumentID: doc.ID, Filename: "v1.pdf", Data: []byte("v1")}))
			require.NoError(t, files.SaveFile(t.Context(), models.DocumentFile{DocumentID: doc.ID, Filename: "v2.pdf", Data: []byte("v2")}))

			got, err := files.GetFile(t.Context(), doc.ID)
			require.NoError(t, err)
			assert.Equal(t, "v2.pdf", got.Filename)
			assert.Equal(t, []byte("v2"), got.Data)
		})
	})

	t.Run("file for unknown document", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			files := FileRepo{DB: tx}

			err := files.SaveFile(t.Context(), models.DocumentFile{DocumentID: 424242, Filename: "x", Data: []byte("x")})
			assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)

			_, err = files.GetFile(t.Context(), 424242)
			assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
		})
	})
}
