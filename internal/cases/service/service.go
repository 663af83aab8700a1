package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"casetrack/internal/audit"
	"casetrack/internal/cases/models"
	"casetrack/internal/platform/metrics"
	subModels "casetrack/internal/subscriptions/models"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/requestcontext"
)

// ErrCaseNotFoundMessage is shown to citizens when a lookup misses.
const ErrCaseNotFoundMessage = "Case not found with that OB Number."

var tracer = otel.Tracer("casetrack/internal/cases/service")

type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	Update(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	FindByOBNumber(ctx context.Context, obNumber string) (*models.Case, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Case, error)
}

type NoteStore interface {
	Add(ctx context.Context, n *models.Note) error
	ListByCase(ctx context.Context, caseID id.CaseID) ([]models.Note, error)
}

type SubscriptionStore interface {
	GetOrCreate(ctx context.Context, sub *subModels.Subscription) (*subModels.Subscription, bool, error)
}

// Notifier fans out case changes to subscribers. Failures are logged by the
// caller and never undo the committed change.
type Notifier interface {
	CaseUpdated(ctx context.Context, before, after *models.Case) error
	NoteAdded(ctx context.Context, c *models.Case, n *models.Note) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// TxRunner opens a unit of work shared by the stores.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements case lookup and officer case management.
type Service struct {
	cases    CaseStore
	notes    NoteStore
	subs     SubscriptionStore
	tx       TxRunner
	notifier Notifier
	audit    AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// New constructs a Service.
func New(cases CaseStore, notes NoteStore, subs SubscriptionStore, runner TxRunner, opts ...Option) *Service {
	s := &Service{cases: cases, notes: notes, subs: subs, tx: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves an OB number exactly (after trimming). When requesterEmail
// is set the requester is subscribed to the case; repeated lookups reuse the
// existing subscription. Lookups never create cases.
func (s *Service) Lookup(ctx context.Context, obNumber, requesterEmail string) (*models.Case, error) {
	ctx, span := tracer.Start(ctx, "cases.Lookup")
	defer span.End()

	obNumber = strings.TrimSpace(obNumber)
	span.SetAttributes(attribute.Bool("requester.authenticated", requesterEmail != ""))
	if obNumber == "" {
		s.metrics.ObserveLookup(false)
		return nil, dErrors.New(dErrors.CodeNotFound, ErrCaseNotFoundMessage)
	}

	c, err := s.cases.FindByOBNumber(ctx, obNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ObserveLookup(false)
			return nil, dErrors.New(dErrors.CodeNotFound, ErrCaseNotFoundMessage)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up case")
	}
	s.metrics.ObserveLookup(true)
	span.SetAttributes(attribute.String("case.id", c.ID.String()))

	if requesterEmail != "" {
		if err := s.ensureSubscription(ctx, c, requesterEmail); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "auto-subscribe failed")
			return nil, err
		}
	}
	return c, nil
}

func (s *Service) ensureSubscription(ctx context.Context, c *models.Case, requesterEmail string) error {
	sub, err := subModels.NewSubscription(id.NewSubscriptionID(), c.ID, requesterEmail, requestcontext.Now(ctx))
	if err != nil {
		// Tokens carry a validated address, so this only trips on bad claims.
		s.logger.WarnContext(ctx, "skipping auto-subscribe for invalid email",
			"case_id", c.ID.String(),
		)
		return nil
	}
	stored, created, err := s.subs.GetOrCreate(ctx, sub)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to subscribe to case")
	}
	if created {
		s.metrics.IncrementSubscriptionsCreated()
		s.emit(ctx, audit.Event{
			Action:  audit.ActionSubscriptionAutoCreated,
			Actor:   stored.Email,
			Subject: c.OBNumber,
			Details: map[string]string{"subscription_id": stored.ID.String()},
		})
	}
	return nil
}

// GetCase returns the case with its notes, newest first.
func (s *Service) GetCase(ctx context.Context, caseID id.CaseID) (*models.CaseDetail, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	notes, err := s.notes.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case notes")
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return &models.CaseDetail{Case: *c, Notes: notes}, nil
}

// ListCases returns cases newest first, narrowed by filter.
func (s *Service) ListCases(ctx context.Context, filter models.ListFilter) ([]*models.Case, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid status filter")
	}
	cases, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	return cases, nil
}

// CreateCase registers a new case. A missing or taken OB number is a
// validation error.
func (s *Service) CreateCase(ctx context.Context, obNumber, idNumber string, fields models.Fields) (*models.Case, error) {
	c, err := models.NewCase(id.NewCaseID(), obNumber, idNumber, fields, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}
	if err := s.cases.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeValidation, "a case with this OB number already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	s.metrics.IncrementCasesCreated()
	s.emit(ctx, audit.Event{
		Action:  audit.ActionCaseCreated,
		Actor:   requestcontext.Email(ctx),
		Subject: c.OBNumber,
		Details: map[string]string{"case_id": c.ID.String(), "status": string(c.Status)},
	})
	s.logger.InfoContext(ctx, "case created",
		"case_id", c.ID.String(),
		"ob_number", c.OBNumber,
	)
	return c, nil
}

// UpdateCase replaces the mutable fields. OB number and identity number
// are never changed.
func (s *Service) UpdateCase(ctx context.Context, caseID id.CaseID, fields models.Fields) (*models.Case, error) {
	var before, after *models.Case
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.cases.FindByID(ctx, caseID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
		}
		prev := *current
		if err := current.Apply(fields); err != nil {
			return toValidation(err)
		}
		if err := s.cases.Update(ctx, current); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update case")
		}
		before, after = &prev, current
		return nil
	})
	if err != nil {
		return nil, err
	}

	statusChanged, courtChanged := before.Changed(after)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionCaseUpdated,
		Actor:   requestcontext.Email(ctx),
		Subject: after.OBNumber,
		Details: map[string]string{"case_id": after.ID.String(), "status": string(after.Status)},
	})
	if (statusChanged || courtChanged) && s.notifier != nil {
		if err := s.notifier.CaseUpdated(ctx, before, after); err != nil {
			s.logger.ErrorContext(ctx, "failed to notify subscribers of case update",
				"case_id", after.ID.String(),
				"error", err,
			)
		}
	}
	return after, nil
}

// AddNote appends a note to an existing case with a server-assigned timestamp.
func (s *Service) AddNote(ctx context.Context, caseID id.CaseID, text string) (*models.Note, error) {
	var (
		c    *models.Case
		note *models.Note
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		found, err := s.cases.FindByID(ctx, caseID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
		}
		n, err := models.NewNote(id.NewNoteID(), caseID, text, requestcontext.Now(ctx))
		if err != nil {
			return toValidation(err)
		}
		if err := s.notes.Add(ctx, n); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add note")
		}
		c, note = found, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionNoteAdded,
		Actor:   requestcontext.Email(ctx),
		Subject: c.OBNumber,
		Details: map[string]string{"note_id": note.ID.String()},
	})
	if s.notifier != nil {
		if err := s.notifier.NoteAdded(ctx, c, note); err != nil {
			s.logger.ErrorContext(ctx, "failed to notify subscribers of new note",
				"case_id", c.ID.String(),
				"error", err,
			)
		}
	}
	return note, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, event)
}

// toValidation converts model invariant violations into validation errors
// for the API response.
func toValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}
