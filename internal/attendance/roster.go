package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/models"
)

const (
	MsgAllCheckedOut = "All cadets have checked out."
	MsgNoneActive    = "No cadets participating in SRT."
)

// Roster reads across all cadets; it never mutates the ledger.
type Roster struct {
	store  RosterStore
	engine Engine
	log    *zap.Logger
}

func NewRoster(store RosterStore, engine Engine, log *zap.Logger) *Roster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Roster{store: store, engine: engine, log: log.Named("roster")}
}

// ActivityRoster lists cadets whose latest record is activityID and still Pending or Ongoing.
// A nil groupID covers every cadet.
func (r *Roster) ActivityRoster(ctx context.Context, activityID int64, groupID *int64) ([]models.RosterEntry, error) {
	rows, err := r.store.ActiveRoster(ctx, activityID, groupID)
	if err != nil {
		return nil, r.fail("active_roster", err)
	}
	return rows, nil
}

// BroadcastSummary builds the group-channel roster text for activities at now.
func (r *Roster) BroadcastSummary(ctx context.Context, activities []models.Activity, groupID *int64, now time.Time) (string, error) {
	var b strings.Builder
	for _, a := range activities {
		rows, err := r.ActivityRoster(ctx, a.ID, groupID)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			continue
		}
		b.WriteString(a.Name)
		for _, e := range rows {
			b.WriteString("\n")
			b.WriteString(FormatRosterEntry(e, r.engine.Location))
		}
		b.WriteString("\n\n")
	}

	if b.Len() == 0 {
		if r.engine.PastCutoff(now) {
			return MsgAllCheckedOut, nil
		}
		return MsgNoneActive, nil
	}
	header := fmt.Sprintf("Cadets participating in SRT on %s:", now.In(r.engine.loc()).Format("2006-01-02"))
	return header + "\n\n" + strings.TrimSpace(b.String()), nil
}

// Snapshot returns the latest record of every cadet in scope, ordered by cadet name.
func (r *Roster) Snapshot(ctx context.Context, groupID *int64) ([]models.RecordView, error) {
	rows, err := r.store.LatestRecords(ctx, groupID)
	if err != nil {
		return nil, r.fail("latest_records", err)
	}
	return rows, nil
}

// ActiveCounts groups the snapshot by activity name, counting Pending and Ongoing records.
func ActiveCounts(rows []models.RecordView) map[string]int {
	out := make(map[string]int)
	for _, v := range rows {
		if v.Status == models.StatusPending || v.Status == models.StatusOngoing {
			out[v.ActivityName]++
		}
	}
	return out
}

func (r *Roster) fail(op string, err error) error {
	err = storageErr(op, err)
	if errors.Is(err, ErrStorageUnavailable) {
		metrics.ObserveStorageError(op)
		r.log.Error("store failure", zap.String("op", op), zap.Error(err))
	}
	return err
}
