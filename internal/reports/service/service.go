package service

import (
	"context"
	"log/slog"

	"casetrack/internal/audit"
	"casetrack/internal/platform/metrics"
	"casetrack/internal/reports/models"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/requestcontext"
)

const listLimit = 100

type Store interface {
	Create(ctx context.Context, r *models.Report) error
	ListRecent(ctx context.Context, limit int) ([]models.Report, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	store   Store
	audit   AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File stores an anonymous report. The audit event carries only the id.
func (s *Service) File(ctx context.Context, details string) (*models.Report, error) {
	r, err := models.NewReport(id.NewReportID(), details, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to file report")
	}
	s.metrics.IncrementReportsFiled()
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:  audit.ActionReportFiled,
			Subject: r.ID.String(),
		})
	}
	s.logger.InfoContext(ctx, "anonymous report filed",
		"report_id", r.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return r, nil
}

// List returns the most recent reports for officers.
func (s *Service) List(ctx context.Context) ([]models.Report, error) {
	reports, err := s.store.ListRecent(ctx, listLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	return reports, nil
}
