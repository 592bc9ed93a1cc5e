package db

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/models"
)

var activeStatuses = pq.Array([]int64{int64(models.StatusPending), int64(models.StatusOngoing)})

// ActiveRoster relies on the one-record-per-cadet constraint: the only record is the latest.
func (s *Store) ActiveRoster(ctx context.Context, activityID int64, groupID *int64) ([]models.RosterEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, r.check_in_time
		FROM attendance_records r
		JOIN cadets c ON c.id = r.cadet_id
		WHERE r.activity_id = $1
		  AND r.status_id = ANY($2)
		  AND ($3::bigint IS NULL OR EXISTS (
		      SELECT 1 FROM cadet_groups cg WHERE cg.cadet_id = c.id AND cg.group_id = $3))
		ORDER BY r.id`, activityID, activeStatuses, groupID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		var in sql.NullTime
		if err := rows.Scan(&e.CadetName, &in); err != nil {
			return nil, err
		}
		if in.Valid {
			e.CheckInTime = &in.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) LatestRecords(ctx context.Context, groupID *int64) ([]models.RecordView, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT cadet_id, cadet_name, activity_id, activity_name, status_id, check_in_time, check_out_time, created_on
		FROM (
			SELECT DISTINCT ON (r.cadet_id)
			       r.cadet_id, c.name AS cadet_name, r.activity_id, a.name AS activity_name,
			       r.status_id, r.check_in_time, r.check_out_time, r.created_on
			FROM attendance_records r
			JOIN cadets c ON c.id = r.cadet_id
			JOIN activities a ON a.id = r.activity_id
			WHERE $1::bigint IS NULL OR EXISTS (
			      SELECT 1 FROM cadet_groups cg WHERE cg.cadet_id = c.id AND cg.group_id = $1)
			ORDER BY r.cadet_id, r.created_on DESC, r.id DESC
		) latest
		ORDER BY cadet_name`, groupID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.RecordView
	for rows.Next() {
		var v models.RecordView
		var in, outT sql.NullTime
		if err := rows.Scan(&v.CadetID, &v.CadetName, &v.ActivityID, &v.ActivityName, &v.Status, &in, &outT, &v.CreatedOn); err != nil {
			return nil, err
		}
		if in.Valid {
			v.CheckInTime = &in.Time
		}
		if outT.Valid {
			v.CheckOutTime = &outT.Time
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
