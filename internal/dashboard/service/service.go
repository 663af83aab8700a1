package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"casetrack/internal/audit"
	casesModels "casetrack/internal/cases/models"
	"casetrack/internal/dashboard/models"
	"casetrack/internal/platform/metrics"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/email"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/requestcontext"
)

var tracer = otel.Tracer("casetrack/internal/dashboard/service")

type Store interface {
	VisibleCases(ctx context.Context, email, idNumber string) ([]casesModels.Case, error)
	SubscribedCases(ctx context.Context, email string) ([]casesModels.Case, error)
}

type NoteReader interface {
	ListRecent(ctx context.Context, caseIDs []id.CaseID, limit int) ([]casesModels.Note, error)
}

// IdentityReader resolves the citizen id number linked to an account.
type IdentityReader interface {
	IDNumberForUser(ctx context.Context, userID id.UserID) (string, error)
}

// CaseLookup is the case service's lookup, reused by the dashboard search box.
type CaseLookup interface {
	Lookup(ctx context.Context, obNumber, requesterEmail string) (*casesModels.Case, error)
}

// TxRunner should open read-only REPEATABLE READ transactions so every
// dashboard query sees the same snapshot.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	store      Store
	notes      NoteReader
	identities IdentityReader
	lookup     CaseLookup
	tx         TxRunner
	audit      AuditPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
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

func New(store Store, notes NoteReader, identities IdentityReader, lookup CaseLookup, tx TxRunner, opts ...Option) *Service {
	s := &Service{
		store:      store,
		notes:      notes,
		identities: identities,
		lookup:     lookup,
		tx:         tx,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aggregate builds the requester's dashboard from one visible-case snapshot.
func (s *Service) Aggregate(ctx context.Context, requester models.Requester) (*models.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "dashboard.Aggregate")
	defer span.End()

	requester.Email = email.Normalize(requester.Email)
	if requester.Email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	var dash *models.Dashboard
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		idNumber, err := s.resolveIDNumber(txCtx, requester)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.Bool("requester.has_identity", idNumber != ""))

		visible, err := s.store.VisibleCases(txCtx, requester.Email, idNumber)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visible cases")
		}
		recent, err := s.recentNotes(txCtx, visible)
		if err != nil {
			return err
		}
		dash = &models.Dashboard{
			Cases:              visible,
			Summary:            models.NewSummary(visible),
			RecentNotes:        recent,
			UpcomingCourtDates: UpcomingCourtDates(visible, models.UpcomingCourtLimit),
			GeneratedAt:        requestcontext.Now(ctx),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("dashboard.visible_cases", dash.Summary.Total))
	s.metrics.ObserveVisibleCases(dash.Summary.Total)
	return dash, nil
}

// Lookup searches a case from the dashboard; hits auto-subscribe like the
// public lookup.
func (s *Service) Lookup(ctx context.Context, obNumber, requesterEmail string) (*casesModels.Case, error) {
	return s.lookup.Lookup(ctx, obNumber, requesterEmail)
}

// ExportCases returns the cases the address is subscribed to, one row per
// case, for the CSV export.
func (s *Service) ExportCases(ctx context.Context, addr string) ([]casesModels.Case, error) {
	addr = email.Normalize(addr)
	if addr == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	var cases []casesModels.Case
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		cases, err = s.store.SubscribedCases(txCtx, addr)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscribed cases")
	}
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:  audit.ActionCasesExported,
			Actor:   addr,
			Details: map[string]string{"rows": strconv.Itoa(len(cases))},
		})
	}
	return cases, nil
}

func (s *Service) resolveIDNumber(ctx context.Context, requester models.Requester) (string, error) {
	if requester.IDNumber != "" || s.identities == nil || requester.UserID.IsNil() {
		return requester.IDNumber, nil
	}
	idNumber, err := s.identities.IDNumberForUser(ctx, requester.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load citizen identity")
	}
	return idNumber, nil
}

func (s *Service) recentNotes(ctx context.Context, visible []casesModels.Case) ([]models.NoteWithCase, error) {
	if len(visible) == 0 {
		return []models.NoteWithCase{}, nil
	}
	obByID := make(map[id.CaseID]string, len(visible))
	caseIDs := make([]id.CaseID, 0, len(visible))
	for i := range visible {
		obByID[visible[i].ID] = visible[i].OBNumber
		caseIDs = append(caseIDs, visible[i].ID)
	}
	notes, err := s.notes.ListRecent(ctx, caseIDs, models.RecentNotesLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent notes")
	}
	out := make([]models.NoteWithCase, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.NoteWithCase{Note: n, OBNumber: obByID[n.CaseID]})
	}
	return out, nil
}

// UpcomingCourtDates returns up to limit cases with a court date, soonest
// first. Past dates are kept.
func UpcomingCourtDates(cases []casesModels.Case, limit int) []casesModels.Case {
	dated := make([]casesModels.Case, 0, len(cases))
	for i := range cases {
		if cases[i].CourtDate != nil {
			dated = append(dated, cases[i])
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].CourtDate.Before(*dated[j].CourtDate)
	})
	if len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}
