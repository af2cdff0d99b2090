package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/org"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	service  *leave.Service
	notifier *notifications.Service
	auditor  *audit.Service
}

func NewHandler(service *leave.Service, notifier *notifications.Service, auditor *audit.Service) *Handler {
	return &Handler{service: service, notifier: notifier, auditor: auditor}
}

func (h *Handler) Register(r chi.Router, authStore *domainauth.Store) {
	r.Route("/leave-requests", func(r chi.Router) {
		read := middleware.RequirePermission(domainauth.PermLeaveRead, authStore)
		write := middleware.RequirePermission(domainauth.PermLeaveWrite, authStore)

		r.With(read).Get("/", h.list)
		r.With(read).Get("/{id}", h.get)
		r.With(write).Post("/", h.create)
		r.With(write).Put("/{id}", h.update)
		r.With(write).Post("/{id}/cancel", h.cancel)
		r.With(middleware.RequirePermission(domainauth.PermLeaveApprove, authStore)).
			Post("/{id}/approve", h.approve)
		r.With(middleware.RequirePermission(domainauth.PermLeaveApprove, authStore)).
			Post("/{id}/reject", h.reject)
	})
	r.With(middleware.RequirePermission(domainauth.PermLeaveRead, authStore)).
		Get("/leave-balances", h.balances)
}

type requestPayload struct {
	EmployeeID string `json:"employeeId"`
	LeaveType  string `json:"leaveType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}

	result, err := h.service.CreateRequest(r.Context(), actor, leave.CreateInput{
		EmployeeID: payload.EmployeeID,
		LeaveType:  payload.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Reason:     payload.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.notifier.CreateMany(r.Context(), result.NotifyUserIDs, notifications.CreateInput{
		TenantID: actor.TenantID,
		Kind:     notifications.KindLeaveRequested,
		Title:    "New leave request",
		Body: fmt.Sprintf("%d %s day(s) requested from %s to %s",
			result.Request.DaysRequested, result.Request.LeaveType,
			result.Request.StartDate.Format("2006-01-02"), result.Request.EndDate.Format("2006-01-02")),
		Link: "/leave-requests/" + result.Request.ID,
	})
	h.auditor.Record(r.Context(), actor.TenantID, actor.UserID,
		"leave_request.created", "leave_request", result.Request.ID, result.Request)
	api.Created(w, r, result.Request)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}

	updated, err := h.service.UpdateRequest(r.Context(), actor, chi.URLParam(r, "id"), leave.UpdateInput{
		LeaveType: payload.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, updated)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.ApproveRequest, "approved")
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.RejectRequest, "rejected")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor domainauth.UserContext, id string) (leave.DecisionResult, error), verb string) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	result, err := op(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.notifier.Create(r.Context(), notifications.CreateInput{
		TenantID: actor.TenantID,
		UserID:   result.EmployeeUserID,
		Kind:     notifications.KindLeaveDecided,
		Title:    "Leave request " + verb,
		Body:     fmt.Sprintf("Your %s leave request was %s", result.Request.LeaveType, verb),
		Link:     "/leave-requests/" + result.Request.ID,
	})
	h.auditor.Record(r.Context(), actor.TenantID, actor.UserID,
		"leave_request."+verb, "leave_request", result.Request.ID, nil)
	api.Success(w, r, result.Request)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	result, err := h.service.CancelRequest(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if result.EmployeeUserID != "" && result.EmployeeUserID != actor.UserID {
		h.notifier.Create(r.Context(), notifications.CreateInput{
			TenantID: actor.TenantID,
			UserID:   result.EmployeeUserID,
			Kind:     notifications.KindLeaveCancelled,
			Title:    "Leave request cancelled",
			Body:     "Your leave request was cancelled",
			Link:     "/leave-requests/" + result.Request.ID,
		})
	}
	h.auditor.Record(r.Context(), actor.TenantID, actor.UserID,
		"leave_request.cancelled", "leave_request", result.Request.ID, nil)
	api.Success(w, r, result.Request)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	request, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, request)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	limit, offset := shared.Pagination(r)
	requests, err := h.service.ListRequests(r.Context(), actor, leave.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if requests == nil {
		requests = []leave.Request{}
	}
	api.Success(w, r, requests)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	asOf, err := shared.ParseDateOr(r.URL.Query().Get("asOf"), time.Now().UTC())
	if err != nil {
		api.BadRequest(w, r, err.Error())
		return
	}
	balances, err := h.service.Balances(r.Context(), actor, r.URL.Query().Get("employeeId"), asOf)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, r, balances)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, leave.ErrNotFound), errors.Is(err, org.ErrEmployeeNotFound):
		api.NotFound(w, r, "leave request not found")
	case errors.Is(err, leave.ErrInvalidType),
		errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrNoWorkingDays):
		api.BadRequest(w, r, err.Error())
	case errors.Is(err, leave.ErrOverlap),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrNotPending),
		errors.Is(err, leave.ErrInvalidTransition),
		errors.Is(err, leave.ErrAlreadyCancelled),
		errors.Is(err, leave.ErrTooLateToCancel):
		api.Fail(w, r, http.StatusBadRequest, "conflict", err.Error())
	case errors.Is(err, leave.ErrNotAllowed):
		api.Forbidden(w, r, "not allowed")
	default:
		slog.Error("leave handler error", "err", err)
		api.Internal(w, r)
	}
}
