package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/dis-cadets/srt-bot/internal/attendance"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintCadetName      = "cadets_name_key"
	constraintRecordActivity = "attendance_records_activity_id_fkey"
)

var errNoUnassignedGroup = errors.New("unassigned group row is missing")

// pgCode extracts SQLSTATE and constraint name from either driver's error type.
func pgCode(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

func mapCadetErr(err error) error {
	if code, constraint, ok := pgCode(err); ok && code == codeUniqueViolation && constraint == constraintCadetName {
		return attendance.ErrDuplicateName
	}
	return err
}

func mapRecordErr(err error) error {
	if code, constraint, ok := pgCode(err); ok && code == codeForeignKeyViolation && constraint == constraintRecordActivity {
		return attendance.ErrActivityNotFound
	}
	return err
}
