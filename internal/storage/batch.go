package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hetulpatel/userseed/internal/models"
)

// Batch is one open transaction with a prepared insert.
// Nothing written through it is durable until Commit.
type Batch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	done bool
}

// BeginBatch opens a transaction and prepares the users insert on it.
func (s *Store) BeginBatch(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertUserSQL)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &Batch{tx: tx, stmt: stmt}, nil
}

// Insert writes one user. A unique-index violation wraps ErrDuplicateLogin.
func (b *Batch) Insert(ctx context.Context, u models.User) error {
	if b == nil || b.done {
		return fmt.Errorf("insert user %s: batch is closed", u.Login)
	}
	_, err := b.stmt.ExecContext(ctx, u.Login, u.Password, u.FirstName, u.LastName, u.BirthDay)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("insert user %s: %w: %w", u.Login, ErrDuplicateLogin, err)
		}
		return fmt.Errorf("insert user %s: %w", u.Login, err)
	}
	return nil
}

func (b *Batch) Commit() error {
	if b == nil || b.done {
		return nil
	}
	b.done = true
	b.stmt.Close()
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the batch. Safe to call after Commit.
func (b *Batch) Rollback() error {
	if b == nil || b.done {
		return nil
	}
	b.done = true
	b.stmt.Close()
	return b.tx.Rollback()
}
