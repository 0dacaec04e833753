package reorg

import (
	"time"

	"github.com/goran-ethernal/SafeIndexor/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reorgLastDetected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeindexor_reorg_last_detected_timestamp",
			Help: "Unix timestamp of last reorg detection",
		},
	)

	reorgFromBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeindexor_reorg_from_block",
			Help: "First mismatched block of the last detected reorg",
		},
	)

	blocksChecked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safeindexor_reorg_blocks_checked_total",
			Help: "Total number of stored blocks compared against the chain",
		},
	)
)

func reorgDetectedLog(depth, fromBlock uint64) {
	metrics.ReorgDetected(depth)
	reorgLastDetected.Set(float64(time.Now().UTC().Unix()))
	reorgFromBlock.Set(float64(fromBlock))
}
