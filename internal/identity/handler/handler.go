package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casetrack/internal/identity/models"
	"casetrack/internal/platform/middleware"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/requestcontext"
)

// Service defines the account operations used by the HTTP layer.
type Service interface {
	SignUp(ctx context.Context, req *models.SignUpRequest) (*models.Session, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
	limiter func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithLimiter rate limits signup and login.
func WithLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limiter = mw
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the account routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter)
		}
		r.Use(middleware.ContentTypeJSON)
		r.Post("/signup/", h.handleSignUp)
		r.Post("/login/", h.handleLogin)
	})
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SignUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid signup request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid signup request")
		return
	}
	session, err := h.service.SignUp(ctx, &req)
	if err != nil {
		h.writeError(ctx, w, err, "signup failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToTokenResponse(session))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid login request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid login request")
		return
	}
	session, err := h.service.Login(ctx, &req)
	if err != nil {
		h.writeError(ctx, w, err, "login failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToTokenResponse(session))
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if httputil.Expected(err) {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
