package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casetrack/internal/platform/middleware"
	"casetrack/internal/subscriptions/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/platform/middleware/auth"
	"casetrack/pkg/requestcontext"
)

// Service defines the subscription operations used by the HTTP layer.
type Service interface {
	Subscribe(ctx context.Context, obNumber, email string) (*models.Subscription, bool, error)
	Unsubscribe(ctx context.Context, subID id.SubscriptionID, requesterEmail string) error
	ListForEmail(ctx context.Context, email string) ([]models.SubscriptionWithCase, error)
}

// Handler serves the public subscribe form and the signed-in
// notifications page.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register registers the subscription routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/subscribe/", h.handleSubscribe)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.ContentTypeJSON)
		r.Get("/notifications/", h.handleListNotifications)
		r.Post("/notifications/", h.handleUnsubscribe)
	})
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SubscribeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid subscribe request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid subscribe request")
		return
	}

	sub, created, err := h.service.Subscribe(ctx, req.OBNumber, req.Email)
	if err != nil {
		h.writeError(ctx, w, err, "subscribe failed")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, models.SubscriptionResponse{
		ID:        sub.ID.String(),
		CaseID:    sub.CaseID.String(),
		OBNumber:  req.OBNumber,
		Email:     sub.Email,
		CreatedAt: sub.CreatedAt,
		Created:   created,
	})
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := h.service.ListForEmail(ctx, requestcontext.Email(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "failed to list subscriptions")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToNotificationsResponse(subs))
}

type unsubscribeResponse struct {
	Message string `json:"message"`
}

func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.UnsubscribeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid unsubscribe request")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, err, "invalid unsubscribe request")
		return
	}
	subID, err := id.ParseSubscriptionID(req.SubscriptionID)
	if err != nil {
		h.writeError(ctx, w, err, "invalid subscription id")
		return
	}
	if err := h.service.Unsubscribe(ctx, subID, requestcontext.Email(ctx)); err != nil {
		h.writeError(ctx, w, err, "unsubscribe failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, unsubscribeResponse{Message: "Unsubscribed successfully."})
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
