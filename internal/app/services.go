package app

import (
	"context"
	"log/slog"
	"time"

	"casetrack/internal/audit"
	casesService "casetrack/internal/cases/service"
	dashboardService "casetrack/internal/dashboard/service"
	identityService "casetrack/internal/identity/service"
	jwttoken "casetrack/internal/jwt_token"
	"casetrack/internal/platform/metrics"
	reportsService "casetrack/internal/reports/service"
	"casetrack/internal/subscriptions/notifier"
	subsService "casetrack/internal/subscriptions/service"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Deps are the cross-cutting collaborators handed to every service.
type Deps struct {
	Logger             *slog.Logger
	Metrics            *metrics.Metrics
	Audit              AuditPublisher
	Publisher          notifier.MessagePublisher
	NotificationsTopic string
	Tokens             *jwttoken.JWTService
	TokenTTL           time.Duration
}

type Services struct {
	Cases         *casesService.Service
	Subscriptions *subsService.Service
	Dashboard     *dashboardService.Service
	Reports       *reportsService.Service
	Identity      *identityService.Service
}

// NewServices wires every domain service over st.
func NewServices(st *Stores, d Deps) *Services {
	n := notifier.New(st.Subscriptions, d.Publisher, d.NotificationsTopic,
		notifier.WithLogger(d.Logger),
		notifier.WithMetrics(d.Metrics),
	)

	casesOpts := []casesService.Option{
		casesService.WithLogger(d.Logger),
		casesService.WithMetrics(d.Metrics),
		casesService.WithNotifier(n),
	}
	subsOpts := []subsService.Option{
		subsService.WithLogger(d.Logger),
		subsService.WithMetrics(d.Metrics),
	}
	dashOpts := []dashboardService.Option{
		dashboardService.WithLogger(d.Logger),
		dashboardService.WithMetrics(d.Metrics),
	}
	reportOpts := []reportsService.Option{
		reportsService.WithLogger(d.Logger),
		reportsService.WithMetrics(d.Metrics),
	}
	identityOpts := []identityService.Option{
		identityService.WithLogger(d.Logger),
		identityService.WithMetrics(d.Metrics),
		identityService.WithTokenTTL(d.TokenTTL),
	}
	if d.Audit != nil {
		casesOpts = append(casesOpts, casesService.WithAuditPublisher(d.Audit))
		subsOpts = append(subsOpts, subsService.WithAuditPublisher(d.Audit))
		dashOpts = append(dashOpts, dashboardService.WithAuditPublisher(d.Audit))
		reportOpts = append(reportOpts, reportsService.WithAuditPublisher(d.Audit))
		identityOpts = append(identityOpts, identityService.WithAuditPublisher(d.Audit))
	}

	cases := casesService.New(st.Cases, st.Notes, st.Subscriptions, st.Tx, casesOpts...)
	return &Services{
		Cases:         cases,
		Subscriptions: subsService.New(st.Subscriptions, st.Cases, subsOpts...),
		Dashboard:     dashboardService.New(st.Dashboard, st.Notes, st.Identities, cases, st.ReadTx, dashOpts...),
		Reports:       reportsService.New(st.Reports, reportOpts...),
		Identity:      identityService.New(st.Users, st.Identities, st.Tx, d.Tokens, identityOpts...),
	}
}
