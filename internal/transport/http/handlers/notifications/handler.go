package notifications

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/notifications"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/unread-count", h.unreadCount)
		r.Post("/{id}/read", h.markRead)
		r.Post("/read-all", h.markAllRead)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	limit, _ := shared.Pagination(r)
	items, err := h.service.List(r.Context(), actor.TenantID, actor.UserID,
		r.URL.Query().Get("unread") == "true", limit)
	if err != nil {
		slog.Error("list notifications failed", "err", err)
		api.Internal(w, r)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}
	api.Success(w, r, items)
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	count, err := h.service.UnreadCount(r.Context(), actor.TenantID, actor.UserID)
	if err != nil {
		slog.Error("count notifications failed", "err", err)
		api.Internal(w, r)
		return
	}
	api.Success(w, r, map[string]int{"count": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	err := h.service.MarkRead(r.Context(), actor.TenantID, actor.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.NotFound(w, r, "notification not found")
			return
		}
		slog.Error("mark notification read failed", "err", err)
		api.Internal(w, r)
		return
	}
	api.NoContent(w, r)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	if err := h.service.MarkAllRead(r.Context(), actor.TenantID, actor.UserID); err != nil {
		slog.Error("mark all notifications read failed", "err", err)
		api.Internal(w, r)
		return
	}
	api.NoContent(w, r)
}
