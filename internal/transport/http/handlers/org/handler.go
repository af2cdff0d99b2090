package org

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/org"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	store *org.Store
}

func NewHandler(store *org.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Register(r chi.Router, authStore *domainauth.Store) {
	r.Route("/employees", func(r chi.Router) {
		read := middleware.RequirePermission(domainauth.PermEmployeesRead, authStore)
		write := middleware.RequirePermission(domainauth.PermEmployeesWrite, authStore)

		r.With(read).Get("/", h.list)
		r.With(read).Get("/{id}", h.get)
		r.With(write).Post("/", h.create)
		r.With(write).Put("/{id}", h.update)
	})
	r.Get("/me", h.me)

	r.Route("/settings", func(r chi.Router) {
		r.With(middleware.RequirePermission(domainauth.PermSettingsRead, authStore)).Get("/", h.getSettings)
		r.With(middleware.RequirePermission(domainauth.PermSettingsWrite, authStore)).Put("/", h.updateSettings)
	})
}

type employeePayload struct {
	UserID     string `json:"userId"`
	ManagerID  string `json:"managerId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department"`
	HireDate   string `json:"hireDate"`
	BaseSalary string `json:"baseSalary"`
	Status     string `json:"status"`
}

func (h *Handler) decodeEmployee(w http.ResponseWriter, r *http.Request, tenantID string) (org.Employee, bool) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return org.Employee{}, false
	}
	if payload.FirstName == "" || payload.LastName == "" || payload.Email == "" {
		api.BadRequest(w, r, "firstName, lastName, and email are required")
		return org.Employee{}, false
	}
	hireDate, err := shared.ParseDate(payload.HireDate)
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return org.Employee{}, false
	}
	salary := decimal.Zero
	if payload.BaseSalary != "" {
		salary, err = decimal.NewFromString(payload.BaseSalary)
		if err != nil || salary.IsNegative() {
			api.BadRequest(w, r, "baseSalary must be a non-negative number")
			return org.Employee{}, false
		}
	}
	status := payload.Status
	if status == "" {
		status = org.EmployeeStatusActive
	}
	return org.Employee{
		TenantID:   tenantID,
		UserID:     payload.UserID,
		ManagerID:  payload.ManagerID,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Position:   payload.Position,
		Department: payload.Department,
		HireDate:   hireDate,
		BaseSalary: salary,
		Status:     status,
	}, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	employee, ok := h.decodeEmployee(w, r, actor.TenantID)
	if !ok {
		return
	}
	created, err := h.store.CreateEmployee(r.Context(), employee)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, r, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	employee, ok := h.decodeEmployee(w, r, actor.TenantID)
	if !ok {
		return
	}
	employee.ID = chi.URLParam(r, "id")
	updated, err := h.store.UpdateEmployee(r.Context(), employee)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, updated)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	employee, err := h.store.Employee(r.Context(), actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, employee)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	employees, err := h.store.ListActive(r.Context(), actor.TenantID, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if employees == nil {
		employees = []org.Employee{}
	}
	api.Success(w, r, employees)
}

// me returns the employee record linked to the calling user.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	employee, err := h.store.EmployeeByUserID(r.Context(), actor.TenantID, actor.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, employee)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	raw, err := h.store.SettingsJSON(r.Context(), actor.TenantID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, json.RawMessage(raw))
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	var settings json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil || !json.Valid(settings) {
		api.BadRequest(w, r, "settings must be a valid JSON document")
		return
	}
	if err := h.store.UpdateSettings(r.Context(), actor.TenantID, settings); err != nil {
		h.fail(w, r, err)
		return
	}
	api.NoContent(w, r)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, org.ErrEmployeeNotFound) {
		api.NotFound(w, r, "employee not found")
		return
	}
	slog.Error("org handler error", "err", err)
	api.Internal(w, r)
}
