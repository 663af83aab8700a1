package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"casetrack/internal/audit"
	casesModels "casetrack/internal/cases/models"
	"casetrack/internal/platform/metrics"
	"casetrack/internal/subscriptions/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/email"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/requestcontext"
)

const (
	invalidSubscribeMessage   = "Invalid OB Number or Email."
	unsubscribeFailureMessage = "unable to remove subscription"
)

type Store interface {
	GetOrCreate(ctx context.Context, sub *models.Subscription) (*models.Subscription, bool, error)
	DeleteOwned(ctx context.Context, subID id.SubscriptionID, email string) error
	ListByEmail(ctx context.Context, email string) ([]models.Subscription, error)
}

type CaseReader interface {
	FindByID(ctx context.Context, caseID id.CaseID) (*casesModels.Case, error)
	FindByOBNumber(ctx context.Context, obNumber string) (*casesModels.Case, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service manages (email, case) notification subscriptions.
type Service struct {
	store   Store
	cases   CaseReader
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

func New(store Store, cases CaseReader, opts ...Option) *Service {
	s := &Service{store: store, cases: cases, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe follows the case identified by obNumber. It is idempotent:
// an existing (case, email) pair is returned with created=false.
func (s *Service) Subscribe(ctx context.Context, obNumber, addr string) (*models.Subscription, bool, error) {
	obNumber = strings.TrimSpace(obNumber)
	addr = email.Normalize(addr)
	if obNumber == "" || !email.Valid(addr) {
		return nil, false, dErrors.New(dErrors.CodeValidation, invalidSubscribeMessage)
	}

	c, err := s.cases.FindByOBNumber(ctx, obNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.New(dErrors.CodeValidation, invalidSubscribeMessage)
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up case")
	}

	sub, err := models.NewSubscription(id.NewSubscriptionID(), c.ID, addr, requestcontext.Now(ctx))
	if err != nil {
		return nil, false, dErrors.New(dErrors.CodeValidation, invalidSubscribeMessage)
	}
	stored, created, err := s.store.GetOrCreate(ctx, sub)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.New(dErrors.CodeValidation, invalidSubscribeMessage)
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to subscribe")
	}
	if created {
		s.metrics.IncrementSubscriptionsCreated()
		s.emit(ctx, audit.Event{
			Action:  audit.ActionSubscribed,
			Actor:   stored.Email,
			Subject: c.OBNumber,
			Details: map[string]string{"subscription_id": stored.ID.String()},
		})
	}
	return stored, created, nil
}

// Unsubscribe deletes the subscription only when requesterEmail owns it.
// Missing and foreign subscriptions fail identically.
func (s *Service) Unsubscribe(ctx context.Context, subID id.SubscriptionID, requesterEmail string) error {
	requesterEmail = email.Normalize(requesterEmail)
	if requesterEmail == "" {
		return dErrors.New(dErrors.CodeForbidden, unsubscribeFailureMessage)
	}
	if err := s.store.DeleteOwned(ctx, subID, requesterEmail); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "unsubscribe refused",
				"subscription_id", subID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
			return dErrors.New(dErrors.CodeForbidden, unsubscribeFailureMessage)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove subscription")
	}
	s.metrics.IncrementSubscriptionsRemoved()
	s.emit(ctx, audit.Event{
		Action:  audit.ActionUnsubscribed,
		Actor:   requesterEmail,
		Subject: subID.String(),
	})
	return nil
}

// ListForEmail returns the address's subscriptions joined with their cases,
// newest first.
func (s *Service) ListForEmail(ctx context.Context, addr string) ([]models.SubscriptionWithCase, error) {
	addr = email.Normalize(addr)
	if addr == "" {
		return []models.SubscriptionWithCase{}, nil
	}
	subs, err := s.store.ListByEmail(ctx, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subscriptions")
	}
	out := make([]models.SubscriptionWithCase, 0, len(subs))
	for _, sub := range subs {
		c, err := s.cases.FindByID(ctx, sub.CaseID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscribed case")
		}
		out = append(out, models.SubscriptionWithCase{Subscription: sub, Case: *c})
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, event)
}
