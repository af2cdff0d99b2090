package payroll

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/payroll"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	service  *payroll.Service
	notifier *notifications.Service
	auditor  *audit.Service
}

func NewHandler(service *payroll.Service, notifier *notifications.Service, auditor *audit.Service) *Handler {
	return &Handler{service: service, notifier: notifier, auditor: auditor}
}

func (h *Handler) Register(r chi.Router, authStore *domainauth.Store) {
	r.Route("/payroll", func(r chi.Router) {
		read := middleware.RequirePermission(domainauth.PermPayrollRead, authStore)
		approve := middleware.RequirePermission(domainauth.PermPayrollApprove, authStore)

		r.With(read).Get("/records", h.list)
		r.With(read).Get("/records/{id}", h.get)
		r.With(middleware.RequirePermission(domainauth.PermPayrollGenerate, authStore)).
			Post("/generate", h.generate)
		r.With(approve).Post("/records/{id}/status", h.advanceStatus)

		configure := middleware.RequirePermission(domainauth.PermPayrollConfigure, authStore)
		r.With(configure).Get("/overrides/{employeeId}/{period}", h.getOverride)
		r.With(configure).Put("/overrides/{employeeId}/{period}", h.setOverride)
	})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	var input payroll.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return
	}

	result, err := h.service.Generate(r.Context(), actor, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	admins, err := h.service.AdminUserIDs(r.Context(), actor.TenantID)
	if err != nil {
		slog.Warn("resolve payroll admins failed", "err", err)
	}
	h.notifier.CreateMany(r.Context(), admins, notifications.CreateInput{
		TenantID: actor.TenantID,
		Kind:     notifications.KindPayrollBatch,
		Title:    "Payroll batch generated",
		Body: fmt.Sprintf("Period %s: %d record(s) generated, %d skipped, %d failed",
			result.PayPeriod, result.Generated, result.Skipped, len(result.Failures)),
		Link: "/payroll/records?payPeriod=" + result.PayPeriod,
	})
	h.auditor.Record(r.Context(), actor.TenantID, actor.UserID,
		"payroll.generated", "payroll_batch", result.PayPeriod, map[string]int{
			"generated": result.Generated,
			"skipped":   result.Skipped,
			"failed":    len(result.Failures),
		})
	api.Success(w, r, result)
}

func (h *Handler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}

	var input payroll.StatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return
	}

	record, err := h.service.AdvanceStatus(r.Context(), actor, chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if record.Status == payroll.StatusPaid {
		h.notifyPaid(r, actor, record)
	}
	h.auditor.Record(r.Context(), actor.TenantID, actor.UserID,
		"payroll.status_changed", "payroll_record", record.ID,
		map[string]string{"status": record.Status})
	api.Success(w, r, record)
}

func (h *Handler) notifyPaid(r *http.Request, actor domainauth.UserContext, record payroll.Record) {
	employeeUserID, err := h.service.EmployeeUserID(r.Context(), actor.TenantID, record.EmployeeID)
	if err != nil {
		slog.Warn("resolve employee user for paid notification failed", "err", err)
		return
	}
	h.notifier.Create(r.Context(), notifications.CreateInput{
		TenantID: actor.TenantID,
		UserID:   employeeUserID,
		Kind:     notifications.KindPayrollPaid,
		Title:    "Salary paid",
		Body:     fmt.Sprintf("Your salary for %s has been paid", record.PayPeriod),
		Link:     "/payroll/records/" + record.ID,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	record, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
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
	limit, offset := shared.Pagination(r)
	records, err := h.service.ListRecords(r.Context(), actor, payroll.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		PayPeriod:  r.URL.Query().Get("payPeriod"),
		Status:     r.URL.Query().Get("status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if records == nil {
		records = []payroll.Record{}
	}
	api.Success(w, r, records)
}

func (h *Handler) getOverride(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	raw, err := h.service.Override(r.Context(), actor, chi.URLParam(r, "employeeId"), chi.URLParam(r, "period"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if raw == nil {
		raw = json.RawMessage(`{}`)
	}
	api.Success(w, r, raw)
}

func (h *Handler) setOverride(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(r)
	if !ok {
		api.Unauthorized(w, r, "not authenticated")
		return
	}
	var rules json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		api.BadRequest(w, r, "invalid request body")
		return
	}
	if err := h.service.SetOverride(r.Context(), actor, chi.URLParam(r, "employeeId"), chi.URLParam(r, "period"), rules); err != nil {
		h.fail(w, r, err)
		return
	}
	api.NoContent(w, r)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, payroll.ErrNotFound):
		api.NotFound(w, r, "payroll record not found")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.BadRequest(w, r, err.Error())
	case errors.Is(err, payroll.ErrInvalidTransition),
		errors.Is(err, payroll.ErrPaymentDetailsRequired):
		api.Fail(w, r, http.StatusBadRequest, "conflict", err.Error())
	case errors.Is(err, payroll.ErrNotAllowed):
		api.Forbidden(w, r, "not allowed")
	default:
		slog.Error("payroll handler error", "err", err)
		api.Internal(w, r)
	}
}
