package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/models"
)

func scanGroup(row *sql.Row) (*models.Group, error) {
	var g models.Group
	var chatID sql.NullInt64
	if err := row.Scan(&g.ID, &chatID, &g.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if chatID.Valid {
		g.ChatID = &chatID.Int64
	}
	return &g, nil
}

func (s *Store) GroupByChatID(ctx context.Context, chatID int64) (*models.Group, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return scanGroup(s.db.QueryRowContext(ctx,
		`SELECT id, telegram_chat_id, name FROM groups WHERE telegram_chat_id = $1`, chatID))
}

// CreateGroup is race-safe: a concurrent insert for the same chat returns the existing row.
func (s *Store) CreateGroup(ctx context.Context, chatID int64, name string) (*models.Group, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	g, err := scanGroup(s.db.QueryRowContext(ctx, `
		INSERT INTO groups (telegram_chat_id, name)
		VALUES ($1, $2)
		ON CONFLICT (telegram_chat_id) WHERE telegram_chat_id IS NOT NULL DO NOTHING
		RETURNING id, telegram_chat_id, name`, chatID, name))
	if err != nil || g != nil {
		return g, err
	}
	return scanGroup(s.db.QueryRowContext(ctx,
		`SELECT id, telegram_chat_id, name FROM groups WHERE telegram_chat_id = $1`, chatID))
}

func (s *Store) UnassignedGroup(ctx context.Context) (*models.Group, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return scanGroup(s.db.QueryRowContext(ctx,
		`SELECT id, telegram_chat_id, name FROM groups WHERE telegram_chat_id IS NULL ORDER BY id LIMIT 1`))
}

func (s *Store) EnsureMembership(ctx context.Context, cadetID, groupID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cadet_groups (cadet_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (cadet_id, group_id) DO NOTHING`, cadetID, groupID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
