package jobs

import (
	"context"

	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/models"
)

const RosterGaugeJob = "roster_gauge"

type snapshotter interface {
	Snapshot(ctx context.Context, groupID *int64) ([]models.RecordView, error)
}

// RosterGauge refreshes srtbot_roster_active from the latest record of every cadet.
// Activities with nobody active drop out of the gauge.
func RosterGauge(roster snapshotter) Job {
	return func(ctx context.Context) error {
		rows, err := roster.Snapshot(ctx, nil)
		if err != nil {
			return err
		}
		metrics.RosterActive.Reset()
		for name, n := range attendance.ActiveCounts(rows) {
			metrics.RosterActive.WithLabelValues(name).Set(float64(n))
		}
		return nil
	}
}
