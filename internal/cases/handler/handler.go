package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"casetrack/internal/cases/models"
	"casetrack/internal/platform/middleware"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/platform/middleware/auth"
	"casetrack/pkg/requestcontext"
)

// Service defines the case operations used by the HTTP layer.
type Service interface {
	Lookup(ctx context.Context, obNumber, requesterEmail string) (*models.Case, error)
	GetCase(ctx context.Context, caseID id.CaseID) (*models.CaseDetail, error)
	ListCases(ctx context.Context, filter models.ListFilter) ([]*models.Case, error)
	CreateCase(ctx context.Context, obNumber, idNumber string, fields models.Fields) (*models.Case, error)
	UpdateCase(ctx context.Context, caseID id.CaseID, fields models.Fields) (*models.Case, error)
	AddNote(ctx context.Context, caseID id.CaseID, text string) (*models.Note, error)
}

// Handler serves public case lookup and the officer case pages.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
	lookupLimit  func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithLookupLimiter rate limits the public lookup endpoint.
func WithLookupLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.lookupLimit = mw
	}
}

// New creates a cases Handler.
func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the case routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(h.jwtValidator, h.logger))
		if h.lookupLimit != nil {
			r.With(h.lookupLimit).Get("/", h.handleLookup)
		} else {
			r.Get("/", h.handleLookup)
		}
		r.Get("/case/{id}/", h.handleGetCase)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Use(auth.RequireRole(string(id.RoleOfficer), h.logger))
		r.Use(middleware.ContentTypeJSON)
		r.Get("/cases/", h.handleListCases)
		r.Post("/cases/add/", h.handleCreateCase)
		r.Post("/cases/{id}/edit/", h.handleUpdateCase)
		r.Post("/cases/{id}/add-note/", h.handleAddNote)
	})
}

type homeResponse struct {
	Message string `json:"message"`
}

// handleLookup resolves ?q= to a case and redirects to its detail page.
// Authenticated callers are subscribed to the case as a side effect.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.WriteJSON(w, http.StatusOK, homeResponse{Message: "Enter an OB Number to look up a case."})
		return
	}

	c, err := h.service.Lookup(ctx, query, requestcontext.Email(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "case lookup failed")
		return
	}
	w.Header().Set("Location", CaseDetailPath(c.ID))
	httputil.WriteJSON(w, http.StatusSeeOther, models.ToCaseResponse(c))
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, err, "invalid case id")
		return
	}
	detail, err := h.service.GetCase(ctx, caseID)
	if err != nil {
		h.writeError(ctx, w, err, "failed to load case")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToCaseDetailResponse(detail))
}

type listResponse struct {
	Cases []models.CaseResponse `json:"cases"`
}

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := models.ListFilter{
		Status: id.CaseStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))),
		Query:  r.URL.Query().Get("q"),
	}
	cases, err := h.service.ListCases(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, err, "failed to list cases")
		return
	}
	resp := listResponse{Cases: make([]models.CaseResponse, 0, len(cases))}
	for _, c := range cases {
		resp.Cases = append(resp.Cases, models.ToCaseResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateCaseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid create case request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid create case request")
		return
	}
	c, err := h.service.CreateCase(ctx, req.OBNumber, req.IDNumber, req.Fields())
	if err != nil {
		h.writeError(ctx, w, err, "failed to create case")
		return
	}
	w.Header().Set("Location", CaseDetailPath(c.ID))
	httputil.WriteJSON(w, http.StatusCreated, models.ToCaseResponse(c))
}

func (h *Handler) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, err, "invalid case id")
		return
	}
	var req models.UpdateCaseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid update case request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid update case request")
		return
	}
	c, err := h.service.UpdateCase(ctx, caseID, req.Fields())
	if err != nil {
		h.writeError(ctx, w, err, "failed to update case")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToCaseResponse(c))
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, err, "invalid case id")
		return
	}
	var req models.AddNoteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid add note request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid add note request")
		return
	}
	note, err := h.service.AddNote(ctx, caseID, req.Note)
	if err != nil {
		h.writeError(ctx, w, err, "failed to add note")
		return
	}
	w.Header().Set("Location", CaseDetailPath(caseID))
	httputil.WriteJSON(w, http.StatusCreated, models.ToNoteResponse(note))
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

// CaseDetailPath is the public URL of a case.
func CaseDetailPath(caseID id.CaseID) string {
	return "/case/" + caseID.String() + "/"
}
