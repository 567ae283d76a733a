// Package httpx provides JSON response utilities for the HTTP boundary.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope returned for all error responses.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, label, message string) {
	JSON(w, status, ErrorBody{Error: label, Message: message})
}

// Unauthorized sends a 401 with a generic message. The message never reveals
// whether an account exists.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
}

// Forbidden sends a 403 carrying the policy denial reason.
func Forbidden(w http.ResponseWriter, reason string) {
	Error(w, http.StatusForbidden, "Forbidden", reason)
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
