package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/models"
)

const recordColumns = `id, cadet_id, activity_id, status_id, check_in_time, check_out_time, created_on`

func scanRecord(row interface{ Scan(...any) error }) (*models.AttendanceRecord, error) {
	var r models.AttendanceRecord
	var in, out sql.NullTime
	if err := row.Scan(&r.ID, &r.CadetID, &r.ActivityID, &r.Status, &in, &out, &r.CreatedOn); err != nil {
		return nil, err
	}
	if in.Valid {
		r.CheckInTime = &in.Time
	}
	if out.Valid {
		r.CheckOutTime = &out.Time
	}
	return &r, nil
}

// ReplaceRecord deletes the cadet's records and inserts rec as Pending in one transaction.
// The upsert covers a concurrent booking of the same cadet slipping in between.
func (s *Store) ReplaceRecord(ctx context.Context, rec models.AttendanceRecord) (*models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var out *models.AttendanceRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE cadet_id = $1`, rec.CadetID); err != nil {
			return err
		}
		r, err := scanRecord(tx.QueryRowContext(ctx, `
			INSERT INTO attendance_records (cadet_id, activity_id, status_id, created_on)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cadet_id) DO UPDATE
			SET activity_id = EXCLUDED.activity_id,
			    status_id = EXCLUDED.status_id,
			    check_in_time = NULL,
			    check_out_time = NULL,
			    created_on = EXCLUDED.created_on
			RETURNING `+recordColumns, rec.CadetID, rec.ActivityID, int64(models.StatusPending), rec.CreatedOn))
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, mapRecordErr(err)
	}
	return out, nil
}

func (s *Store) LatestRecord(ctx context.Context, cadetID int64) (*models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return latestRecord(ctx, s.db, cadetID)
}

func latestRecord(ctx context.Context, q querier, cadetID int64) (*models.AttendanceRecord, error) {
	r, err := scanRecord(q.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE cadet_id = $1
		ORDER BY created_on DESC, id DESC
		LIMIT 1`, cadetID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *Store) StartRecord(ctx context.Context, cadetID int64, at time.Time) (bool, error) {
	return s.advance(ctx, `
		UPDATE attendance_records
		SET status_id = $3, check_in_time = $4
		WHERE cadet_id = $1 AND status_id = $2`, cadetID, models.StatusPending, models.StatusOngoing, at)
}

func (s *Store) FinishRecord(ctx context.Context, cadetID int64, at time.Time) (bool, error) {
	return s.advance(ctx, `
		UPDATE attendance_records
		SET status_id = $3, check_out_time = $4
		WHERE cadet_id = $1 AND status_id = $2`, cadetID, models.StatusOngoing, models.StatusCompleted, at)
}

// advance is a single conditional UPDATE; the status guard makes it a compare-and-set.
func (s *Store) advance(ctx context.Context, query string, cadetID int64, from, to models.Status, at time.Time) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, cadetID, int64(from), int64(to), at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) HasRecordBetween(ctx context.Context, cadetID int64, from, to time.Time) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE cadet_id = $1 AND created_on >= $2 AND created_on < $3
		)`, cadetID, from, to).Scan(&ok)
	return ok, err
}
