// internal/storage/irys/metrics.go
package irys

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type uploadMetrics struct {
	successCounter    prometheus.Counter
	failureCounter    prometheus.Counter
	fallbackCounter   prometheus.Counter
	durationHistogram prometheus.Histogram
}

var (
	uploadMetricsOnce     sync.Once
	uploadMetricsInstance *uploadMetrics
)

func newUploadMetrics() *uploadMetrics {
	uploadMetricsOnce.Do(func() {
		successCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_upload_success_total",
			Help: "Total number of verified uploads",
		})
		failureCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_upload_failure_total",
			Help: "Total number of uploads that failed on every node",
		})
		fallbackCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_upload_fallback_total",
			Help: "Total number of node fallbacks during uploads",
		})
		durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storage_upload_duration_seconds",
			Help:    "End-to-end upload duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		})

		prometheus.MustRegister(successCounter, failureCounter, fallbackCounter, durationHistogram)

		uploadMetricsInstance = &uploadMetrics{
			successCounter:    successCounter,
			failureCounter:    failureCounter,
			fallbackCounter:   fallbackCounter,
			durationHistogram: durationHistogram,
		}
	})
	return uploadMetricsInstance
}

func (m *uploadMetrics) trackUpload(start time.Time) {
	m.durationHistogram.Observe(time.Since(start).Seconds())
}
