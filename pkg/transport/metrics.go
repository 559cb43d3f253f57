package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics recorded by transports.
// Attach to a transport with WithMetrics. A single Metrics value may be
// shared by several transport instances.
type Metrics struct {
	FlushesTotal  *prometheus.CounterVec
	FlushDuration prometheus.Histogram
	BytesWritten  prometheus.Counter
	BytesRead     prometheus.Counter
}

// NewMetrics creates and registers all transport metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FlushesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bufwire",
				Name:      "flushes_total",
				Help:      "Total number of flush operations",
			},
			[]string{"outcome"}, // outcome=ok/error/empty
		),
		FlushDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "bufwire",
				Name:      "flush_duration_seconds",
				Help:      "Duration of non-empty flush exchanges in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		BytesWritten: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "bufwire",
				Name:      "bytes_written_total",
				Help:      "Total bytes successfully flushed to the peer",
			},
		),
		BytesRead: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "bufwire",
				Name:      "bytes_read_total",
				Help:      "Total response bytes received from the peer",
			},
		),
	}
}

// outcome labels for FlushesTotal.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeEmpty = "empty"
)
