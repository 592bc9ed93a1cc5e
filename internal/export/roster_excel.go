package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dis-cadets/srt-bot/internal/models"
)

const (
	SheetRoster  = "Roster"
	SheetSummary = "Summary"
)

var (
	rosterHeader  = []string{"Cadet", "Activity", "Status", "Booked at", "Started at", "Ended at"}
	summaryHeader = []string{"Activity", "Pending", "Ongoing", "Completed"}
)

// RosterXLSX renders one row per cadet plus a per-activity status summary.
func RosterXLSX(rows []models.RecordView, loc *time.Location, generated time.Time) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetRoster); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, SheetRoster, 1, rosterHeader); err != nil {
		return nil, err
	}
	for i, v := range rows {
		if err := setRow(f, SheetRoster, i+2, []string{
			v.CadetName,
			v.ActivityName,
			v.Status.String(),
			v.CreatedOn.In(loc).Format("2006-01-02 15:04"),
			clock(v.CheckInTime, loc),
			clock(v.CheckOutTime, loc),
		}); err != nil {
			return nil, err
		}
	}
	if err := applyDefaultFormatting(f, SheetRoster); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	if err := setRow(f, SheetSummary, 1, summaryHeader); err != nil {
		return nil, err
	}
	counts := statusCounts(rows)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		c := counts[name]
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+2), &[]any{
			name, c[models.StatusPending], c[models.StatusOngoing], c[models.StatusCompleted],
		}); err != nil {
			return nil, err
		}
	}
	footer := fmt.Sprintf("A%d", len(names)+3)
	if err := f.SetCellStr(SheetSummary, footer, "Generated "+generated.In(loc).Format("2006-01-02 15:04")); err != nil {
		return nil, err
	}
	if err := applyDefaultFormatting(f, SheetSummary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, vals []string) error {
	cells := make([]any, len(vals))
	for i, v := range vals {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}

func statusCounts(rows []models.RecordView) map[string]map[models.Status]int {
	out := make(map[string]map[models.Status]int)
	for _, v := range rows {
		m, ok := out[v.ActivityName]
		if !ok {
			m = make(map[models.Status]int)
			out[v.ActivityName] = m
		}
		m[v.Status]++
	}
	return out
}
