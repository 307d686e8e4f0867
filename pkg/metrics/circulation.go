package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "circulation"

// CirculationMetrics counts lending events. A nil *CirculationMetrics is
// valid and records nothing.
type CirculationMetrics struct {
	events      *prometheus.CounterVec
	fines       prometheus.Counter
	fineAmounts prometheus.Counter
	logins      *prometheus.CounterVec
}

// NewCirculationMetrics registers the circulation metrics on reg. A nil
// registerer returns metrics that record nothing.
func NewCirculationMetrics(reg prometheus.Registerer) *CirculationMetrics {
	if reg == nil {
		return &CirculationMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Circulation events by activity action.",
	}, []string{"action"})
	fines := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_assessed_total",
		Help:      "Overdue fines created at check in.",
	})
	fineAmounts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_assessed_amount_total",
		Help:      "Sum of overdue fine amounts created at check in.",
	})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by role and result.",
	}, []string{"role", "result"})
	reg.MustRegister(events, fines, fineAmounts, logins)
	return &CirculationMetrics{
		events:      events,
		fines:       fines,
		fineAmounts: fineAmounts,
		logins:      logins,
	}
}

// Record counts one event for the activity action.
func (m *CirculationMetrics) Record(action string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(action)).Inc()
}

func (m *CirculationMetrics) ObserveFine(amount decimal.Decimal) {
	if m == nil || m.fines == nil {
		return
	}
	m.fines.Inc()
	m.fineAmounts.Add(amount.InexactFloat64())
}

func (m *CirculationMetrics) Login(role string, ok bool) {
	if m == nil || m.logins == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(normalizeLabel(role), result).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
