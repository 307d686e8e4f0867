package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics records runs of the membership expiry sweep.
type SweepMetrics struct {
	duration prometheus.Histogram
	expired  prometheus.Counter
	failures prometheus.Counter
	lastRun  prometheus.Gauge
}

func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "expiry_sweep_duration_seconds",
		Help:      "Duration of membership expiry sweeps in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "patrons_expired_total",
		Help:      "Patrons moved to expired by the sweep.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expiry_sweep_failures_total",
		Help:      "Membership expiry sweeps that returned an error.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "expiry_sweep_last_run_timestamp_seconds",
		Help:      "Unix time of the last successful sweep.",
	})
	reg.MustRegister(duration, expired, failures, lastRun)
	return &SweepMetrics{
		duration: duration,
		expired:  expired,
		failures: failures,
		lastRun:  lastRun,
	}
}

// ObserveRun records a finished sweep. Failed runs only count the failure.
func (m *SweepMetrics) ObserveRun(at time.Time, duration time.Duration, expired int, err error) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
	if err != nil {
		m.failures.Inc()
		return
	}
	m.expired.Add(float64(expired))
	m.lastRun.Set(float64(at.Unix()))
}
