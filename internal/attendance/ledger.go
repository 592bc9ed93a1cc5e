package attendance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/models"
)

type ledgerStore interface {
	LedgerStore
	ActivityStore
}

// Ledger owns the single current attendance record of every cadet.
type Ledger struct {
	store  ledgerStore
	engine Engine
	log    *zap.Logger
}

func NewLedger(store ledgerStore, engine Engine, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: store, engine: engine, log: log.Named("ledger")}
}

// Book replaces whatever the cadet had with a fresh Pending record for activityID.
// Pressing the same activity twice on one day keeps the first booking.
func (l *Ledger) Book(ctx context.Context, cadet models.Cadet, activityID int64, at time.Time) (*models.AttendanceRecord, error) {
	act, err := l.store.ActivityByID(ctx, activityID)
	if err != nil {
		return nil, l.fail("activity_by_id", err)
	}
	if act == nil {
		return nil, ErrActivityNotFound
	}

	cur, err := l.store.LatestRecord(ctx, cadet.ID)
	if err != nil {
		return nil, l.fail("latest_record", err)
	}
	if cur != nil && cur.Status == models.StatusPending && cur.ActivityID == activityID && l.engine.SameDay(cur.CreatedOn, at) {
		l.log.Info("repeat booking ignored", zap.Int64("cadet_id", cadet.ID), zap.Int64("activity_id", activityID))
		return cur, nil
	}

	rec, err := l.store.ReplaceRecord(ctx, models.AttendanceRecord{
		CadetID:    cadet.ID,
		ActivityID: activityID,
		Status:     models.StatusPending,
		CreatedOn:  at,
	})
	if err != nil {
		return nil, l.fail("replace_record", err)
	}
	metrics.ObserveTransition(string(ActionBook))
	l.log.Info("booked", zap.Int64("cadet_id", cadet.ID), zap.String("activity", act.Name))
	return rec, nil
}

// CheckIn moves Pending to Ongoing. Checking in while already Ongoing is a no-op.
func (l *Ledger) CheckIn(ctx context.Context, cadet models.Cadet, at time.Time) error {
	ok, err := l.store.StartRecord(ctx, cadet.ID, at)
	if err != nil {
		return l.fail("start_record", err)
	}
	if ok {
		metrics.ObserveTransition(string(ActionCheckIn))
		l.log.Info("checked in", zap.Int64("cadet_id", cadet.ID))
		return nil
	}
	cur, err := l.store.LatestRecord(ctx, cadet.ID)
	if err != nil {
		return l.fail("latest_record", err)
	}
	if cur != nil && cur.Status == models.StatusOngoing {
		return nil
	}
	return l.refuse("check_in", cadet.ID, cur)
}

// CheckOut moves Ongoing to Completed.
func (l *Ledger) CheckOut(ctx context.Context, cadet models.Cadet, at time.Time) error {
	ok, err := l.store.FinishRecord(ctx, cadet.ID, at)
	if err != nil {
		return l.fail("finish_record", err)
	}
	if ok {
		metrics.ObserveTransition(string(ActionCheckOut))
		l.log.Info("checked out", zap.Int64("cadet_id", cadet.ID))
		return nil
	}
	cur, err := l.store.LatestRecord(ctx, cadet.ID)
	if err != nil {
		return l.fail("latest_record", err)
	}
	return l.refuse("check_out", cadet.ID, cur)
}

func (l *Ledger) LatestRecord(ctx context.Context, cadet models.Cadet) (*models.AttendanceRecord, error) {
	rec, err := l.store.LatestRecord(ctx, cadet.ID)
	if err != nil {
		return nil, l.fail("latest_record", err)
	}
	return rec, nil
}

func (l *Ledger) LatestStatus(ctx context.Context, cadet models.Cadet) (*models.Status, error) {
	rec, err := l.LatestRecord(ctx, cadet)
	if err != nil || rec == nil {
		return nil, err
	}
	s := rec.Status
	return &s, nil
}

// TodayRecord returns the latest record if it was created on now's calendar day.
func (l *Ledger) TodayRecord(ctx context.Context, cadet models.Cadet, now time.Time) (*models.AttendanceRecord, error) {
	rec, err := l.LatestRecord(ctx, cadet)
	if err != nil || rec == nil {
		return nil, err
	}
	if !l.engine.SameDay(rec.CreatedOn, now) {
		return nil, nil
	}
	return rec, nil
}

func (l *Ledger) HasRecordToday(ctx context.Context, cadet models.Cadet, now time.Time) (bool, error) {
	from, to := l.engine.DayBounds(now)
	ok, err := l.store.HasRecordBetween(ctx, cadet.ID, from, to)
	if err != nil {
		return false, l.fail("has_record_between", err)
	}
	return ok, nil
}

// SummaryLine renders the cadet's latest record; ok is false when there is none.
func (l *Ledger) SummaryLine(ctx context.Context, cadet models.Cadet) (string, bool, error) {
	rec, err := l.LatestRecord(ctx, cadet)
	if err != nil || rec == nil {
		return "", false, err
	}
	act, err := l.store.ActivityByID(ctx, rec.ActivityID)
	if err != nil {
		return "", false, l.fail("activity_by_id", err)
	}
	view := models.RecordView{
		CadetID:      cadet.ID,
		CadetName:    cadet.Name,
		ActivityID:   rec.ActivityID,
		Status:       rec.Status,
		CheckInTime:  rec.CheckInTime,
		CheckOutTime: rec.CheckOutTime,
		CreatedOn:    rec.CreatedOn,
	}
	if act != nil {
		view.ActivityName = act.Name
	}
	return FormatSummary(view, l.engine.Location), true, nil
}

func (l *Ledger) refuse(op string, cadetID int64, cur *models.AttendanceRecord) error {
	have := "without a record"
	if cur != nil {
		have = cur.Status.String()
	}
	err := &PreconditionError{Op: op, CadetID: cadetID, Have: have}
	l.log.Error("transition refused", zap.String("op", op), zap.Int64("cadet_id", cadetID), zap.String("status", have))
	return err
}

func (l *Ledger) fail(op string, err error) error {
	err = storageErr(op, err)
	if errors.Is(err, ErrStorageUnavailable) {
		metrics.ObserveStorageError(op)
		l.log.Error("store failure", zap.String("op", op), zap.Error(err))
	}
	return err
}
