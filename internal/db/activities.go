package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/models"
)

func (s *Store) ListActivities(ctx context.Context) ([]models.Activity, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM activities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ActivityByID(ctx context.Context, id int64) (*models.Activity, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var a models.Activity
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM activities WHERE id = $1`, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
