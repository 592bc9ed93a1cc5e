package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "srtbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "srtbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "srtbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "srtbot", Name: "attendance_transitions_total", Help: "Applied attendance transitions",
	}, []string{"action"})
	StorageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "srtbot", Name: "storage_errors_total", Help: "Store failures surfaced as storage unavailable",
	}, []string{"op"})
	Registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "srtbot", Name: "registrations_total", Help: "Cadets registered on first contact",
	})
	RosterActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "srtbot", Name: "roster_active", Help: "Cadets pending or ongoing per activity",
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, DBPing, Transitions, StorageErrors, Registrations, RosterActive)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveTransition(action string) { Transitions.WithLabelValues(action).Inc() }

func ObserveStorageError(op string) { StorageErrors.WithLabelValues(op).Inc() }
