package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions      *prometheus.CounterVec
	FallbackChecks prometheus.Counter
	StoreErrors    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrack_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}),
		FallbackChecks: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_ratelimit_fallback_checks_total",
			Help: "Checks answered by the in-memory fallback store",
		}),
		StoreErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_ratelimit_store_errors_total",
			Help: "Checks that failed open because no store answered",
		}),
	}
}

func (m *Metrics) RecordDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncrementFallbackChecks() {
	if m != nil {
		m.FallbackChecks.Inc()
	}
}

func (m *Metrics) IncrementStoreErrors() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}
