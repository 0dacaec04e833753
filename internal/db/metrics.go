package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_db_maintenance_runs_total",
			Help: "Database maintenance runs by outcome",
		},
		[]string{"outcome"},
	)

	maintenanceSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_db_maintenance_steps_total",
			Help: "Completed maintenance steps (wal checkpoint mode or vacuum)",
		},
		[]string{"step"},
	)

	maintenanceSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safeindexor_db_maintenance_duration_seconds",
			Help:    "Time the database was held exclusively for maintenance",
			Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300},
		},
	)

	databaseBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeindexor_db_size_bytes",
			Help: "Size of the database file plus its WAL and shared memory files",
		},
	)

	reclaimedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safeindexor_db_reclaimed_bytes_total",
			Help: "Bytes released by maintenance runs",
		},
	)
)

// recordMaintenance publishes the outcome of one maintenance run.
func recordMaintenance(r maintenanceReport) {
	maintenanceSeconds.Observe(r.duration.Seconds())

	if r.err != nil {
		maintenanceRuns.WithLabelValues("error").Inc()
		return
	}
	maintenanceRuns.WithLabelValues("success").Inc()

	if r.sizeAfter > 0 {
		databaseBytes.Set(float64(r.sizeAfter))
	}
	if r.reclaimed() > 0 {
		reclaimedBytes.Add(float64(r.reclaimed()))
	}
}

func recordStep(step string) {
	maintenanceSteps.WithLabelValues(step).Inc()
}

type maintenanceReport struct {
	started    time.Time
	duration   time.Duration
	sizeBefore int64
	sizeAfter  int64
	err        error
}

func (r maintenanceReport) reclaimed() int64 {
	if r.sizeBefore > r.sizeAfter {
		return r.sizeBefore - r.sizeAfter
	}
	return 0
}
