package models

import "time"

// Status mirrors the seeded rows of the statuses table; the values are the row ids.
type Status int

const (
	StatusPending   Status = 1
	StatusOngoing   Status = 2
	StatusCompleted Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusOngoing:
		return "Ongoing"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusCompleted
}

type Activity struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type AttendanceRecord struct {
	ID           int64      `db:"id"`
	CadetID      int64      `db:"cadet_id"`
	ActivityID   int64      `db:"activity_id"`
	Status       Status     `db:"status_id"`
	CheckInTime  *time.Time `db:"check_in_time"`
	CheckOutTime *time.Time `db:"check_out_time"`
	CreatedOn    time.Time  `db:"created_on"`
}

// RosterEntry is one line of an activity roster.
type RosterEntry struct {
	CadetName   string
	CheckInTime *time.Time
}

// RecordView is a cadet's latest record joined with display names.
type RecordView struct {
	CadetID      int64
	CadetName    string
	ActivityID   int64
	ActivityName string
	Status       Status
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	CreatedOn    time.Time
}
