package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	domainauth "hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router, authStore *domainauth.Store) {
	r.With(middleware.RequirePermission(domainauth.PermAuditRead, authStore)).
		Get("/audit-events", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	limit, offset := shared.Pagination(r)
	events, err := h.service.List(r.Context(), actor.TenantID, limit, offset)
	if err != nil {
		slog.Error("list audit events failed", "err", err)
		api.Internal(w, r)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	api.Success(w, r, events)
}
