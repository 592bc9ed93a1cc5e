package attendance

import (
	"strings"
	"time"

	"github.com/dis-cadets/srt-bot/internal/models"
)

const (
	startedMarker = "Started at "
	endedMarker   = "Ended at "
	notCheckedIn  = "Not checked in"
)

// HHMM renders t as 24-hour time without a separator, e.g. 0805.
func HHMM(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("1504")
}

// FormatSummary renders one record as "name | activity | [Started at HHMM | [Ended at HHMM |]] status".
func FormatSummary(v models.RecordView, loc *time.Location) string {
	parts := []string{v.CadetName, v.ActivityName}
	if v.CheckInTime != nil {
		parts = append(parts, startedMarker+HHMM(*v.CheckInTime, loc))
	}
	if v.CheckOutTime != nil {
		parts = append(parts, endedMarker+HHMM(*v.CheckOutTime, loc))
	}
	parts = append(parts, v.Status.String())
	return strings.Join(parts, " | ")
}

func FormatRosterEntry(e models.RosterEntry, loc *time.Location) string {
	if e.CheckInTime == nil {
		return e.CadetName + " | " + notCheckedIn
	}
	return e.CadetName + " | " + startedMarker + HHMM(*e.CheckInTime, loc)
}
