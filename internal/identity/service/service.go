package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"casetrack/internal/audit"
	"casetrack/internal/identity/models"
	"casetrack/internal/identity/secrets"
	"casetrack/internal/platform/metrics"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/email"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/requestcontext"
)

const (
	defaultTokenTTL = time.Hour

	invalidCredentialsMessage = "invalid credentials"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type IdentityStore interface {
	Create(ctx context.Context, ci *models.CitizenIdentity) error
	IDNumberTaken(ctx context.Context, idNumber string) (bool, error)
	IDNumberForUser(ctx context.Context, userID id.UserID) (string, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, email string, role id.Role, expiresIn time.Duration) (string, time.Time, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service registers accounts and issues bearer tokens.
type Service struct {
	users      UserStore
	identities IdentityStore
	tx         TxRunner
	tokens     TokenIssuer
	tokenTTL   time.Duration
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

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserStore, identities IdentityStore, runner TxRunner, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:      users,
		identities: identities,
		tx:         runner,
		tokens:     tokens,
		tokenTTL:   defaultTokenTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates a citizen account, links the optional id number and
// returns a session for the new account.
func (s *Service) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.Session, error) {
	u, err := s.register(ctx, req.Email, req.Password, req.IDNumber, id.RoleCitizen)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user signed up",
		"user_id", u.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.issue(u, req.IDNumber)
}

// CreateOfficer provisions an officer account. It issues no token.
func (s *Service) CreateOfficer(ctx context.Context, addr, password string) (*models.User, error) {
	u, err := s.register(ctx, addr, password, "", id.RoleOfficer)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "officer account created", "user_id", u.ID.String())
	return u, nil
}

// Login verifies credentials. Unknown emails and wrong passwords fail the
// same way.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	u, err := s.users.FindByEmail(ctx, email.Normalize(req.Email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := secrets.Verify(req.Password, u.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.logger.WarnContext(ctx, "login rejected",
				"user_id", u.ID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credentials")
	}

	idNumber, err := s.identities.IDNumberForUser(ctx, u.ID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return s.issue(u, idNumber)
}

var errIDNumberTaken = dErrors.New(dErrors.CodeValidation, "this id number is linked to another account")

func (s *Service) register(ctx context.Context, addr, password, idNumber string, role id.Role) (*models.User, error) {
	hash, err := secrets.Hash(password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	u, err := models.NewUser(id.NewUserID(), addr, hash, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}

	var ci *models.CitizenIdentity
	if idNumber != "" {
		if ci, err = models.NewCitizenIdentity(u.ID, idNumber); err != nil {
			return nil, toValidation(err)
		}
	}

	// Check the id number before writing the user: the memory runner cannot
	// roll the user row back.
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if ci != nil {
			taken, err := s.identities.IDNumberTaken(ctx, ci.IDNumber)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check identity")
			}
			if taken {
				return errIDNumberTaken
			}
		}
		if err := s.users.Create(ctx, u); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeValidation, "an account with this email already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		if ci == nil {
			return nil
		}
		if err := s.identities.Create(ctx, ci); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return errIDNumberTaken
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link identity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementUsersCreated()
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:  audit.ActionUserSignedUp,
			Actor:   u.Email,
			Subject: u.ID.String(),
			Details: map[string]string{"role": u.Role.String()},
		})
	}
	return u, nil
}

func (s *Service) issue(u *models.User, idNumber string) (*models.Session, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.Session{User: u, IDNumber: idNumber, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func toValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}
