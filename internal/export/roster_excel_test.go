package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dis-cadets/srt-bot/internal/models"
)

func TestRosterXLSX(t *testing.T) {
	loc := time.FixedZone("SGT", 8*3600)
	booked := time.Date(2024, time.March, 4, 8, 0, 0, 0, loc)
	in := booked.Add(5 * time.Minute)
	out := booked.Add(time.Hour)

	rows := []models.RecordView{
		{CadetName: "Alice Lim", ActivityName: "Run - Wingline", Status: models.StatusPending, CreatedOn: booked},
		{CadetName: "Bala Kumar", ActivityName: "Run - Wingline", Status: models.StatusCompleted, CreatedOn: booked, CheckInTime: &in, CheckOutTime: &out},
		{CadetName: "Chen Hui", ActivityName: "Gym - Wingline", Status: models.StatusOngoing, CreatedOn: booked, CheckInTime: &in},
	}

	data, err := RosterXLSX(rows, loc, booked.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(SheetRoster)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(got))
	}
	if got[0][0] != "Cadet" || got[0][5] != "Ended at" {
		t.Fatalf("header = %v", got[0])
	}
	want := []string{"Bala Kumar", "Run - Wingline", "Completed", "2024-03-04 08:00", "08:05", "09:00"}
	for i, v := range want {
		if got[2][i] != v {
			t.Fatalf("row 2 col %d = %q, want %q", i, got[2][i], v)
		}
	}

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	// header, Gym, Run, blank, footer
	if summary[1][0] != "Gym - Wingline" || summary[1][2] != "1" {
		t.Fatalf("gym summary = %v", summary[1])
	}
	if summary[2][0] != "Run - Wingline" || summary[2][1] != "1" || summary[2][3] != "1" {
		t.Fatalf("run summary = %v", summary[2])
	}
	if summary[len(summary)-1][0] != "Generated 2024-03-04 10:00" {
		t.Fatalf("footer = %v", summary[len(summary)-1])
	}
}

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 6: "F", 26: "Z", 27: "AA", 52: "AZ"}
	for n, want := range cases {
		if got := columnName(n); got != want {
			t.Errorf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}
