package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Indexing metrics
	scanRangeSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "safeindexor_scan_range_size_blocks",
			Help: "Current adaptive block range of each indexer",
		},
		[]string{"indexer"},
	)

	scanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safeindexor_scan_duration_seconds",
			Help:    "Time taken to find the elements of one block range",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"indexer"},
	)

	elementsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_elements_processed_total",
			Help: "Total number of new elements stored by each indexer",
		},
		[]string{"indexer"},
	)

	blocksScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_blocks_scanned_total",
			Help: "Total number of blocks scanned by each indexer",
		},
		[]string{"indexer"},
	)

	lastScannedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "safeindexor_last_scanned_block",
			Help: "Upper bound of the last range scanned by each indexer",
		},
		[]string{"indexer"},
	)

	watermarkRaces = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_watermark_mismatch_total",
			Help: "Watermark advances that updated fewer rows than expected",
		},
		[]string{"indexer"},
	)

	finderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_finder_errors_total",
			Help: "Total number of failed element searches",
		},
		[]string{"indexer"},
	)

	// Replay metrics
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_replay_transitions_total",
			Help: "Total number of replayed wallet transitions by function",
		},
		[]string{"function"},
	)

	replayWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_replay_warnings_total",
			Help: "Total number of replay inconsistencies by kind",
		},
		[]string{"kind"},
	)

	pendingElements = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeindexor_pending_decoded_elements",
			Help: "Decoded elements waiting to be replayed",
		},
	)

	// Reorg metrics
	reorgsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safeindexor_reorgs_detected_total",
			Help: "Total number of chain reorganizations detected",
		},
	)

	rewindDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safeindexor_reorg_rewind_depth_blocks",
			Help:    "Number of blocks removed by each rewind",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
		},
	)

	blocksConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safeindexor_blocks_confirmed_total",
			Help: "Total number of stored blocks marked as confirmed",
		},
	)

	// Scheduler metrics
	taskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_task_runs_total",
			Help: "Total number of scheduled task runs by outcome",
		},
		[]string{"task", "outcome"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safeindexor_task_duration_seconds",
			Help:    "Duration of scheduled task runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeindexor_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "safeindexor_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeindexor_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "safeindexor_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func ScanRangeSizeSet(indexer string, size uint64) {
	scanRangeSize.WithLabelValues(indexer).Set(float64(size))
}

func ScanDurationLog(indexer string, duration time.Duration) {
	scanDuration.WithLabelValues(indexer).Observe(duration.Seconds())
}

func ElementsProcessedInc(indexer string, count int) {
	elementsProcessed.WithLabelValues(indexer).Add(float64(count))
}

// RangeScanned records a successfully scanned range.
func RangeScanned(indexer string, fromBlock, toBlock uint64) {
	if toBlock >= fromBlock {
		blocksScanned.WithLabelValues(indexer).Add(float64(toBlock - fromBlock + 1))
	}
	lastScannedBlock.WithLabelValues(indexer).Set(float64(toBlock))
}

func WatermarkMismatchInc(indexer string) {
	watermarkRaces.WithLabelValues(indexer).Inc()
}

func FinderErrorInc(indexer string) {
	finderErrors.WithLabelValues(indexer).Inc()
}

func TransitionInc(function string) {
	transitions.WithLabelValues(function).Inc()
}

func ReplayWarningInc(kind string) {
	replayWarnings.WithLabelValues(kind).Inc()
}

func PendingElementsSet(count int64) {
	pendingElements.Set(float64(count))
}

// ReorgDetected records a rewind that removed depth blocks.
func ReorgDetected(depth uint64) {
	reorgsDetected.Inc()
	rewindDepth.Observe(float64(depth))
}

func BlocksConfirmedInc(count int64) {
	blocksConfirmed.Add(float64(count))
}

func TaskRunInc(task, outcome string) {
	taskRuns.WithLabelValues(task, outcome).Inc()
}

func TaskDurationLog(task string, duration time.Duration) {
	taskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics refreshes the runtime gauges.
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
