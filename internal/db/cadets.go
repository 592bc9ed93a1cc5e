package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/models"
)

const cadetColumns = `
	c.id, c.telegram_id, c.telegram_username, c.name, a.name, c.created_at`

func scanCadet(row interface{ Scan(...any) error }) (*models.Cadet, error) {
	var c models.Cadet
	var username, achievement sql.NullString
	if err := row.Scan(&c.ID, &c.TelegramID, &username, &c.Name, &achievement, &c.CreatedAt); err != nil {
		return nil, err
	}
	if username.Valid {
		c.Username = &username.String
	}
	if achievement.Valid {
		c.Achievement = &achievement.String
	}
	return &c, nil
}

func (s *Store) CadetByTelegramID(ctx context.Context, telegramID int64) (*models.Cadet, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT`+cadetColumns+`
		FROM cadets c
		LEFT JOIN achievements a ON a.id = c.achievement_id
		WHERE c.telegram_id = $1`, telegramID)
	c, err := scanCadet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) CreateCadet(ctx context.Context, telegramID int64, username *string, name string) (*models.Cadet, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	c := models.Cadet{TelegramID: telegramID, Username: username, Name: name}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO cadets (telegram_id, telegram_username, name)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`, telegramID, username, name).Scan(&c.ID, &c.CreatedAt); err != nil {
			return mapCadetErr(err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO cadet_groups (cadet_id, group_id)
			SELECT $1, id FROM groups WHERE telegram_chat_id IS NULL
			ON CONFLICT (cadet_id, group_id) DO NOTHING`, c.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return errNoUnassignedGroup
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
