package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCirculationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCirculationMetrics(reg)

	m.Record("checkout")
	m.Record("checkout")
	m.Record("")
	m.ObserveFine(decimal.RequireFromString("1.35"))
	m.ObserveFine(decimal.RequireFromString("0.45"))
	m.Login("patron", true)
	m.Login("librarian", false)

	assert.InDelta(t, 2, testutil.ToFloat64(m.events.WithLabelValues("checkout")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.events.WithLabelValues("unknown")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.fines), 0)
	assert.InDelta(t, 1.8, testutil.ToFloat64(m.fineAmounts), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.logins.WithLabelValues("patron", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.logins.WithLabelValues("librarian", "failure")), 0)

	count, err := testutil.GatherAndCount(reg, "circulation_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSweepMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSweepMetrics(reg)
	at := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	m.ObserveRun(at, 20*time.Millisecond, 3, nil)
	m.ObserveRun(at.Add(time.Hour), 10*time.Millisecond, 0, errors.New("database is locked"))

	assert.InDelta(t, 3, testutil.ToFloat64(m.expired), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.failures), 0)
	assert.InDelta(t, float64(at.Unix()), testutil.ToFloat64(m.lastRun), 0)

	count, err := testutil.GatherAndCount(reg, "circulation_expiry_sweep_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var c *CirculationMetrics
	var s *SweepMetrics

	assert.NotPanics(t, func() {
		c.Record("checkout")
		c.ObserveFine(decimal.NewFromInt(1))
		c.Login("patron", true)
		s.ObserveRun(time.Now(), time.Second, 1, nil)
		NewCirculationMetrics(nil).Record("checkout")
		NewSweepMetrics(nil).ObserveRun(time.Now(), time.Second, 1, nil)
	})
}
