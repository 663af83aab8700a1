package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	casesHandler "casetrack/internal/cases/handler"
	casesModels "casetrack/internal/cases/models"
	"casetrack/internal/dashboard/models"
	"casetrack/internal/dashboard/service"
	"casetrack/internal/platform/middleware"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/platform/middleware/auth"
	"casetrack/pkg/requestcontext"
)

const exportFilename = "my_cases.csv"

// Service defines the dashboard operations used by the HTTP layer.
type Service interface {
	Aggregate(ctx context.Context, requester models.Requester) (*models.Dashboard, error)
	Lookup(ctx context.Context, obNumber, requesterEmail string) (*casesModels.Case, error)
	ExportCases(ctx context.Context, email string) ([]casesModels.Case, error)
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register registers the dashboard routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.ContentTypeJSON)
		r.Get("/dashboard/", h.handleDashboard)
		r.Post("/dashboard/", h.handleDashboardLookup)
		r.Get("/dashboard/export/", h.handleExport)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dash, err := h.service.Aggregate(ctx, requester(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "failed to build dashboard")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToDashboardResponse(dash))
}

// handleDashboardLookup searches a case from the dashboard and redirects to
// it on a hit, subscribing the caller.
func (h *Handler) handleDashboardLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LookupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid dashboard lookup request")
		return
	}
	req.Normalize()
	if req.OBNumber == "" {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeValidation, "ob_number is required"), "invalid dashboard lookup request")
		return
	}
	c, err := h.service.Lookup(ctx, req.OBNumber, requestcontext.Email(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "dashboard lookup failed")
		return
	}
	w.Header().Set("Location", casesHandler.CaseDetailPath(c.ID))
	httputil.WriteJSON(w, http.StatusSeeOther, casesModels.ToCaseResponse(c))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cases, err := h.service.ExportCases(ctx, requestcontext.Email(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "failed to export cases")
		return
	}
	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, cases); err != nil {
		h.writeError(ctx, w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write csv"), "failed to export cases")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func requester(ctx context.Context) models.Requester {
	return models.Requester{
		UserID: requestcontext.UserID(ctx),
		Email:  requestcontext.Email(ctx),
	}
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
