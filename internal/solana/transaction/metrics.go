// internal/solana/transaction/metrics.go
package transaction

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successCounter    prometheus.Counter
	failureCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the shared transaction metrics set. Collectors are
// registered once; manager and monitor both observe the same series.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		successCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solana_tx_success_total",
			Help: "Total number of successful transactions",
		})
		failureCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solana_tx_failure_total",
			Help: "Total number of failed transactions",
		})
		durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solana_tx_duration_seconds",
			Help:    "Transaction duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 0.5, 20),
		})

		prometheus.MustRegister(successCounter, failureCounter, durationHistogram)

		metricsInstance = &Metrics{
			successCounter:    successCounter,
			failureCounter:    failureCounter,
			durationHistogram: durationHistogram,
		}
	})
	return metricsInstance
}

func (tm *Metrics) TrackTransaction(start time.Time) {
	tm.durationHistogram.Observe(time.Since(start).Seconds())
}
