package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide HTTP and domain counters.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec

	CasesCreated          prometheus.Counter
	CaseLookups           *prometheus.CounterVec
	SubscriptionsCreated  prometheus.Counter
	SubscriptionsRemoved  prometheus.Counter
	ReportsFiled          prometheus.Counter
	NotificationsEmitted  prometheus.Counter
	DashboardVisibleCases prometheus.Histogram
	UsersCreated          prometheus.Counter
}

// New creates all metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casetrack_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrack_http_requests_total",
			Help: "HTTP requests by route, method and status class",
		}, []string{"route", "method", "status"}),
		CasesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_cases_created_total",
			Help: "Total number of cases created",
		}),
		CaseLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrack_case_lookups_total",
			Help: "Case lookups by outcome",
		}, []string{"outcome"}),
		SubscriptionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_subscriptions_created_total",
			Help: "Subscriptions newly created (idempotent hits excluded)",
		}),
		SubscriptionsRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_subscriptions_removed_total",
			Help: "Subscriptions removed by their owner",
		}),
		ReportsFiled: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_anonymous_reports_total",
			Help: "Anonymous reports filed",
		}),
		NotificationsEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_notifications_emitted_total",
			Help: "Case update notifications handed to the publisher",
		}),
		DashboardVisibleCases: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "casetrack_dashboard_visible_cases",
			Help:    "Size of the visible case set per dashboard request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_users_created_total",
			Help: "Total number of user accounts created",
		}),
	}
}

// ObserveLookup records a lookup outcome; m may be nil.
func (m *Metrics) ObserveLookup(found bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	m.CaseLookups.WithLabelValues(outcome).Inc()
}

// IncrementCasesCreated increments the cases created counter.
func (m *Metrics) IncrementCasesCreated() {
	if m != nil {
		m.CasesCreated.Inc()
	}
}

// IncrementSubscriptionsCreated counts a newly stored subscription.
func (m *Metrics) IncrementSubscriptionsCreated() {
	if m != nil {
		m.SubscriptionsCreated.Inc()
	}
}

// IncrementSubscriptionsRemoved counts an owner-initiated unsubscribe.
func (m *Metrics) IncrementSubscriptionsRemoved() {
	if m != nil {
		m.SubscriptionsRemoved.Inc()
	}
}

// IncrementReportsFiled counts an anonymous report.
func (m *Metrics) IncrementReportsFiled() {
	if m != nil {
		m.ReportsFiled.Inc()
	}
}

// AddNotificationsEmitted counts notifications handed to the publisher.
func (m *Metrics) AddNotificationsEmitted(n int) {
	if m != nil {
		m.NotificationsEmitted.Add(float64(n))
	}
}

// ObserveVisibleCases records the size of a dashboard's visible set.
func (m *Metrics) ObserveVisibleCases(n int) {
	if m != nil {
		m.DashboardVisibleCases.Observe(float64(n))
	}
}

// IncrementUsersCreated increments the users created counter.
func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}
