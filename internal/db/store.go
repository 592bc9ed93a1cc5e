package db

import (
	"context"
	"database/sql"

	"github.com/dis-cadets/srt-bot/internal/attendance"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements attendance.Store on Postgres.
type Store struct {
	db *sql.DB
}

var _ attendance.Store = (*Store)(nil)

func NewStore(database *sql.DB) *Store { return &Store{db: database} }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) PingContext(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
