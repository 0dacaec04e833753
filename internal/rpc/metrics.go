package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_rpc_calls_total",
			Help: "Node calls by method and result (ok, timeout, cancelled, rpc, transient, other)",
		},
		[]string{"method", "result"},
	)

	callSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safeindexor_rpc_call_duration_seconds",
			Help:    "Latency of a single node call attempt",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30},
		},
		[]string{"method"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeindexor_rpc_retries_total",
			Help: "Attempts made after a transient failure, by method",
		},
		[]string{"method"},
	)
)

// observeCall records one attempt of method that started at start and ended with err.
func observeCall(method string, start time.Time, err error) {
	callSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
	callsTotal.WithLabelValues(method, classifyError(err)).Inc()
}

func observeRetry(method string) {
	retriesTotal.WithLabelValues(method).Inc()
}

// classifyError maps a call error to the result label of callsTotal.
func classifyError(err error) string {
	var rpcErr rpc.Error
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &rpcErr):
		return "rpc"
	case retryableError(err):
		return "transient"
	default:
		return "other"
	}
}
