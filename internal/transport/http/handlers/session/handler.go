package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainauth "hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
)

type Handler struct {
	service *domainauth.Service
}

func NewHandler(service *domainauth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		api.BadRequest(w, r, "email and password are required")
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			api.Unauthorized(w, r, "invalid email or password")
			return
		}
		slog.Error("login failed", "err", err)
		api.Internal(w, r)
		return
	}
	api.Success(w, r, result)
}
