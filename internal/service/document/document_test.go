package document

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/models"
	"github.com/dsmolyakov/gostdocs/internal/repository/postgres"
	"github.com/dsmolyakov/gostdocs/internal/testutil"
)

func Test_DocumentService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Begin new db transaction and create new DocumentService
	// The raw repo is handed over too so tests can seed rows the service
	// itself would refuse to create (duplicate names)
	// Rollback transaction when test stops
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(s *DocumentService, repo *postgres.DocumentRepo)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			fn(NewService(postgres.NewStorage(tx)), &postgres.DocumentRepo{DB: tx})
		})
	}

	newDoc := func(name string, status models.DocumentStatus) models.Document {
		return models.Document{
			FullName:    name,
			Designation: "ГОСТ Р 1.2-2020",
			Status:      status,
		}
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("any valid status may be assigned", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				for i, status := range []models.DocumentStatus{models.StatusCurrent, models.StatusCanceled, models.StatusReplaced} {
					doc, err := s.Create(t.Context(), newDoc(string(rune('a'+i))+"-doc", status))

					require.NoError(t, err)
					assert.NotZero(t, doc.ID)
					assert.Equal(t, status, doc.Status)
				}
			})
		})

		t.Run("unknown status rejected", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				_, err := s.Create(t.Context(), newDoc("doc", "DRAFT"))
				require.Error(t, err)
			})
		})

		t.Run("duplicate name rejected", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				_, err := s.Create(t.Context(), newDoc("doc", models.StatusCanceled))
				require.NoError(t, err)

				_, err = s.Create(t.Context(), newDoc("doc", models.StatusReplaced))

				assert.ErrorIs(t, err, apperrors.ErrDocumentAlreadyExists)
			})
		})
	})

	t.Run("Transition", func(t *testing.T) {
		t.Run("allowed transitions succeed", func(t *testing.T) {
			tests := []struct {
				from models.DocumentStatus
				to   models.DocumentStatus
			}{
				{from: models.StatusCurrent, to: models.StatusCanceled},
				{from: models.StatusCurrent, to: models.StatusReplaced},
				{from: models.StatusCanceled, to: models.StatusCurrent},
				{from: models.StatusReplaced, to: models.StatusCurrent},
			}

			for _, tt := range tests {
				t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
					withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
						doc, err := s.Create(t.Context(), newDoc("doc", tt.from))
						require.NoError(t, err)

						updated, err := s.Transition(t.Context(), doc.ID, tt.to)

						require.NoError(t, err)
						assert.Equal(t, tt.to, updated.Status)
						assert.Equal(t, doc.ID, updated.ID)
					})
				})
			}
		})

		t.Run("disallowed transitions fail with lifecycle error", func(t *testing.T) {
			tests := []struct {
				from models.DocumentStatus
				to   models.DocumentStatus
			}{
				{from: models.StatusCurrent, to: models.StatusCurrent},
				{from: models.StatusCanceled, to: models.StatusCanceled},
				{from: models.StatusReplaced, to: models.StatusReplaced},
				{from: models.StatusCanceled, to: models.StatusReplaced},
				{from: models.StatusReplaced, to: models.StatusCanceled},
			}

			for _, tt := range tests {
				t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
					withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
						doc, err := s.Create(t.Context(), newDoc("doc", tt.from))
						require.NoError(t, err)

						_, err = s.Transition(t.Context(), doc.ID, tt.to)

						require.Error(t, err)
						assert.ErrorIs(t, err, apperrors.ErrTransitionNotAllowed)
						assert.Contains(t, err.Error(), string(tt.from), "error should name the old status")
						assert.Contains(t, err.Error(), string(tt.to), "error should name the new status")

						// And nothing changed
						got, err := s.Get(t.Context(), doc.ID)
						require.NoError(t, err)
						assert.Equal(t, tt.from, got.Status)
					})
				})
			}
		})

		t.Run("empty target status fails", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				doc, err := s.Create(t.Context(), newDoc("doc", models.StatusCurrent))
				require.NoError(t, err)

				_, err = s.Transition(t.Context(), doc.ID, "")

				assert.ErrorIs(t, err, apperrors.ErrTransitionNotAllowed)
			})
		})

		t.Run("missing document fails", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				_, err := s.Transition(t.Context(), 424242, models.StatusCurrent)

				assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
			})
		})

		t.Run("conflicting current document blocks and is named", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				// The partial unique index allows one CURRENT holder per name,
				// so the second document enters as CANCELED
				a, err := s.Create(t.Context(), newDoc("shared", models.StatusCurrent))
				require.NoError(t, err)

				b, err := repo.CreateDocument(t.Context(), newDoc("shared", models.StatusCanceled))
				require.NoError(t, err)

				_, err = s.Transition(t.Context(), b.ID, models.StatusCurrent)

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrCurrentNameTaken)

				var conflict *apperrors.StatusConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, a.ID, conflict.DocumentID, "error should name the blocking document")
			})
		})

		t.Run("conflict clears after holder is canceled", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
				a, err := s.Create(t.Context(), newDoc("shared", models.StatusCurrent))
				require.NoError(t, err)

				b, err := repo.CreateDocument(t.Context(), newDoc("shared", models.StatusCanceled))
				require.NoError(t, err)

				_, err = s.Transition(t.Context(), a.ID, models.StatusCanceled)
				require.NoError(t, err)

				updated, err := s.Transition(t.Context(), b.ID, models.StatusCurrent)

				require.NoError(t, err)
				assert.Equal(t, models.StatusCurrent, updated.Status)
			})
		})
	})

	t.Run("Update changes fields but not status", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
			doc, err := s.Create(t.Context(), newDoc("doc", models.StatusCurrent))
			require.NoError(t, err)

			doc.Designation = "ГОСТ Р 1.2-2025"
			doc.Content = "updated"

			updated, err := s.Update(t.Context(), doc)

			require.NoError(t, err)
			assert.Equal(t, "ГОСТ Р 1.2-2025", updated.Designation)
			assert.Equal(t, "updated", updated.Content)
			assert.Equal(t, models.StatusCurrent, updated.Status)
		})
	})

	t.Run("Delete", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
			doc, err := s.Create(t.Context(), newDoc("doc", models.StatusCanceled))
			require.NoError(t, err)

			require.NoError(t, s.Delete(t.Context(), doc.ID))

			_, err = s.Get(t.Context(), doc.ID)
			assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)

			assert.ErrorIs(t, s.Delete(t.Context(), doc.ID), apperrors.ErrDocumentNotFound)
		})
	})

	t.Run("Files", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *DocumentService, repo *postgres.DocumentRepo) {
			doc, err := s.Create(t.Context(), newDoc("doc", models.StatusCurrent))
			require.NoError(t, err)

			file := models.DocumentFile{
				DocumentID:  doc.ID,
				Filename:    "gost.pdf",
				ContentType: "application/pdf",
				Data:        []byte("%PDF-1.7 content"),
			}
			require.NoError(t, s.SaveFile(t.Context(), file))

			got, err := s.GetFile(t.Context(), doc.ID)
			require.NoError(t, err)
			assert.Equal(t, file, got)

			// Saving again overwrites
			file.Data = []byte("%PDF-1.7 v2")
			require.NoError(t, s.SaveFile(t.Context(), file))
			got, err = s.GetFile(t.Context(), doc.ID)
			require.NoError(t, err)
			assert.Equal(t, []byte("%PDF-1.7 v2"), got.Data)
		})
	})
}
