package attendance

import (
	"time"

	"github.com/dis-cadets/srt-bot/internal/models"
)

// DefaultCutoffHour is the local hour from which a cadet can no longer re-book the same day.
const DefaultCutoffHour = 21

type Action string

const (
	ActionBook        Action = "book"
	ActionCheckIn     Action = "checkin"
	ActionCheckOut    Action = "checkout"
	ActionClosed      Action = "closed"
	ActionViewDetails Action = "details"
)

type ActionSet []Action

func (s ActionSet) Contains(a Action) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}

// Engine decides which transitions a cadet may take next. It never touches storage.
type Engine struct {
	CutoffHour int
	Location   *time.Location
}

func NewEngine(cutoffHour int, loc *time.Location) Engine {
	if loc == nil {
		loc = time.Local
	}
	return Engine{CutoffHour: cutoffHour, Location: loc}
}

// Next returns the allowed actions given today's record (nil when there is none).
func (e Engine) Next(today *models.AttendanceRecord, now time.Time) ActionSet {
	if today == nil {
		return ActionSet{ActionBook}
	}
	switch today.Status {
	case models.StatusPending:
		return ActionSet{ActionCheckIn}
	case models.StatusOngoing:
		return ActionSet{ActionCheckOut}
	case models.StatusCompleted:
		if e.BeforeCutoff(now) {
			return ActionSet{ActionBook}
		}
		return ActionSet{ActionClosed}
	}
	// unknown status rows are treated like no booking
	return ActionSet{ActionBook}
}

func (e Engine) BeforeCutoff(now time.Time) bool {
	return e.hour(now) < e.CutoffHour
}

// PastCutoff uses a strict comparison: at exactly the cutoff hour the day is closed
// for booking but the broadcast still reports "no active cadets".
func (e Engine) PastCutoff(now time.Time) bool {
	return e.hour(now) > e.CutoffHour
}

func (e Engine) hour(now time.Time) int {
	return now.In(e.loc()).Hour()
}

func (e Engine) loc() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

// DayBounds returns [start of day, start of next day) for now in the engine location.
func (e Engine) DayBounds(now time.Time) (time.Time, time.Time) {
	t := now.In(e.loc())
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc())
	return from, from.AddDate(0, 0, 1)
}

func (e Engine) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(e.loc()).Date()
	by, bm, bd := b.In(e.loc()).Date()
	return ay == by && am == bm && ad == bd
}
