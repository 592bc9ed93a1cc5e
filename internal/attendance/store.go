package attendance

import (
	"context"
	"time"

	"github.com/dis-cadets/srt-bot/internal/models"
)

// Lookups return nil, nil when the row does not exist.

type CadetStore interface {
	CadetByTelegramID(ctx context.Context, telegramID int64) (*models.Cadet, error)
	// CreateCadet inserts the cadet together with its unassigned-group membership,
	// both or neither. It returns ErrDuplicateName when the display name is taken.
	CreateCadet(ctx context.Context, telegramID int64, username *string, name string) (*models.Cadet, error)
}

type GroupStore interface {
	GroupByChatID(ctx context.Context, chatID int64) (*models.Group, error)
	CreateGroup(ctx context.Context, chatID int64, name string) (*models.Group, error)
	UnassignedGroup(ctx context.Context) (*models.Group, error)
	// EnsureMembership inserts (cadet, group) unless present and reports whether it did.
	EnsureMembership(ctx context.Context, cadetID, groupID int64) (bool, error)
}

type ActivityStore interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	ActivityByID(ctx context.Context, id int64) (*models.Activity, error)
}

type LedgerStore interface {
	// ReplaceRecord atomically deletes every record of rec.CadetID and inserts rec.
	ReplaceRecord(ctx context.Context, rec models.AttendanceRecord) (*models.AttendanceRecord, error)
	LatestRecord(ctx context.Context, cadetID int64) (*models.AttendanceRecord, error)
	// StartRecord moves a Pending record to Ongoing; false when there was none.
	StartRecord(ctx context.Context, cadetID int64, at time.Time) (bool, error)
	// FinishRecord moves an Ongoing record to Completed; false when there was none.
	FinishRecord(ctx context.Context, cadetID int64, at time.Time) (bool, error)
	HasRecordBetween(ctx context.Context, cadetID int64, from, to time.Time) (bool, error)
}

type RosterStore interface {
	// ActiveRoster lists cadets whose latest record is for activityID and not Completed.
	// groupID nil means every cadet.
	ActiveRoster(ctx context.Context, activityID int64, groupID *int64) ([]models.RosterEntry, error)
	LatestRecords(ctx context.Context, groupID *int64) ([]models.RecordView, error)
}

type Store interface {
	CadetStore
	GroupStore
	ActivityStore
	LedgerStore
	RosterStore
}
