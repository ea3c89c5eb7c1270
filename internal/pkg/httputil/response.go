// Package httputil standardizes the JSON envelope used by every endpoint.
// All responses carry {success, message}; extra fields ride alongside on the
// payload types themselves. Internal errors are logged, never exposed.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/techmoncton/hive/internal/pkg/logger"
)

// Response is the standard envelope for all API responses.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Sent    *int   `json:"sent,omitempty"`
	Failed  *int   `json:"failed,omitempty"`
	Event   string `json:"event,omitempty"`
	Events  any    `json:"events,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

// OK writes a 200 success envelope with the given message.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// Fail writes a failure envelope with the given status and message.
// Use for client errors where the message is safe to show the caller.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Response{Success: false, Message: message})
}

// BadRequest writes a 400 failure envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 failure envelope.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, message)
}

// Unauthorized writes a 401 failure envelope.
func Unauthorized(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, "Unauthorized")
}

// InternalError writes a 500 failure envelope with a generic message.
// The real error is logged, never sent to the caller.
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("internal error", "error", err)
	Fail(w, http.StatusInternalServerError, "An error occurred")
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}
