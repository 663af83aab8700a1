package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casetrack/internal/platform/middleware"
	"casetrack/internal/reports/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/platform/middleware/auth"
	"casetrack/pkg/platform/middleware/device"
	"casetrack/pkg/requestcontext"
)

// Service defines the report operations used by the HTTP layer.
type Service interface {
	File(ctx context.Context, details string) (*models.Report, error)
	List(ctx context.Context) ([]models.Report, error)
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
	limiter      func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithLimiter rate limits report submission.
func WithLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limiter = mw
	}
}

func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the report routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(device.RejectBots(h.logger))
		if h.limiter != nil {
			r.Use(h.limiter)
		}
		r.Use(middleware.ContentTypeJSON)
		r.Post("/report/", h.handleFile)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Use(auth.RequireRole(string(id.RoleOfficer), h.logger))
		r.Get("/reports/", h.handleList)
	})
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.FileReportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid report request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid report request")
		return
	}
	report, err := h.service.File(ctx, req.Details)
	if err != nil {
		h.writeError(ctx, w, err, "failed to file report")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.FiledResponse{
		ID:      report.ID.String(),
		Message: "Report submitted successfully.",
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reports, err := h.service.List(ctx)
	if err != nil {
		h.writeError(ctx, w, err, "failed to list reports")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToListResponse(reports))
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
