package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dsmolyakov/gostdocs/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Document() repository.DocumentRepo {
	return &DocumentRepo{DB: s.db}
}

func (s *Storage) File() repository.FileRepo {
	return &FileRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	return s.runInTx(ctx, tx, fn)
}

// InSerializableTx opens a serializable transaction when the underlying db
// supports transaction options. Inside an outer transaction (tests) only a
// savepoint can be opened, which inherits the outer isolation level
func (s *Storage) InSerializableTx(ctx context.Context, fn func(repository.Storage) error) error {
	var tx pgx.Tx
	var err error

	if b, ok := s.db.(txBeginner); ok {
		tx, err = b.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	} else {
		tx, err = s.db.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	return s.runInTx(ctx, tx, fn)
}

func (s *Storage) runInTx(ctx context.Context, tx pgx.Tx, fn func(repository.Storage) error) (err error) {
	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
