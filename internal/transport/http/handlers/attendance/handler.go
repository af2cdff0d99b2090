package attendance

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/org"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	store     *attendance.Store
	orgStore  *org.Store
	authStore *domainauth.Store
}

func NewHandler(store *attendance.Store, orgStore *org.Store, authStore *domainauth.Store) *Handler {
	return &Handler{store: store, orgStore: orgStore, authStore: authStore}
}

func (h *Handler) Register(r chi.Router, authStore *domainauth.Store) {
	r.Route("/attendance", func(r chi.Router) {
		write := middleware.RequirePermission(domainauth.PermAttendanceWrite, authStore)
		read := middleware.RequirePermission(domainauth.PermAttendanceRead, authStore)

		r.With(write).Post("/clock-in", h.clockIn)
		r.With(write).Post("/clock-out", h.clockOut)
		r.With(read).Get("/", h.list)
	})
}

func (h *Handler) ownEmployeeID(w http.ResponseWriter, r *http.Request) (domainauth.UserContext, string, bool) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return actor, "", false
	}
	employee, err := h.orgStore.EmployeeByUserID(r.Context(), actor.TenantID, actor.UserID)
	if err != nil {
		if errors.Is(err, org.ErrEmployeeNotFound) {
			api.NotFound(w, r, "no employee record linked to this account")
		} else {
			slog.Error("resolve employee failed", "err", err)
			api.Internal(w, r)
		}
		return actor, "", false
	}
	return actor, employee.ID, true
}

func (h *Handler) clockIn(w http.ResponseWriter, r *http.Request) {
	actor, employeeID, ok := h.ownEmployeeID(w, r)
	if !ok {
		return
	}
	record, err := h.store.ClockIn(r.Context(), actor.TenantID, employeeID, time.Now().UTC())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, r, record)
}

func (h *Handler) clockOut(w http.ResponseWriter, r *http.Request) {
	actor, employeeID, ok := h.ownEmployeeID(w, r)
	if !ok {
		return
	}
	record, err := h.store.ClockOut(r.Context(), actor.TenantID, employeeID, time.Now().UTC())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, record)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		var done bool
		if actor, employeeID, done = h.ownEmployeeID(w, r); !done {
			return
		}
	} else {
		// Viewing someone else's attendance needs the employee-read grant.
		own, err := h.orgStore.EmployeeByUserID(r.Context(), actor.TenantID, actor.UserID)
		if err != nil || own.ID != employeeID {
			allowed, permErr := h.authStore.HasPermission(r.Context(), actor.RoleID, domainauth.PermEmployeesRead)
			if permErr != nil {
				slog.Error("permission check failed", "err", permErr)
				api.Internal(w, r)
				return
			}
			if !allowed {
				api.Forbidden(w, r, "not allowed")
				return
			}
		}
	}

	now := time.Now().UTC()
	from, err := shared.ParseDateOr(r.URL.Query().Get("from"), now.AddDate(0, -1, 0))
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}
	to, err := shared.ParseDateOr(r.URL.Query().Get("to"), now)
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}

	records, err := h.store.List(r.Context(), actor.TenantID, employeeID, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	api.Success(w, r, records)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		api.NotFound(w, r, "attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrNotClockedIn):
		api.Fail(w, r, http.StatusBadRequest, "conflict", err.Error())
	default:
		slog.Error("attendance handler error", "err", err)
		api.Internal(w, r)
	}
}
