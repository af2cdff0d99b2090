package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hrms/internal/requestctx"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *errorBody `json:"error,omitempty"`
	RequestID string     `json:"requestId,omitempty"`
}

func write(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	body.RequestID = requestctx.GetRequestID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}

func Success(w http.ResponseWriter, r *http.Request, data any) {
	write(w, r, http.StatusOK, envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, r *http.Request, data any) {
	write(w, r, http.StatusCreated, envelope{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes an error envelope. Messages are user-facing; internal detail
// stays in the logs.
func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	write(w, r, status, envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusBadRequest, "bad_request", message)
}

func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusNotFound, "not_found", message)
}

func Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusForbidden, "forbidden", message)
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusUnauthorized, "unauthorized", message)
}

func Conflict(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusConflict, "conflict", message)
}

func Internal(w http.ResponseWriter, r *http.Request) {
	Fail(w, r, http.StatusInternalServerError, "internal_error", "something went wrong")
}
