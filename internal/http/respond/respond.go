// Package respond writes the {success, data | message} JSON envelope every endpoint returns.
package respond

import (
	"encoding/json"
	"net/http"
)

const ServerError = "Server error"

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a success envelope. data must be non-nil; use an empty slice for empty lists.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Data: data})
}

func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Message: message})
}

// Invalid writes a 400 carrying a machine-readable reason code.
func Invalid(w http.ResponseWriter, code, message string) {
	write(w, http.StatusBadRequest, envelope{Message: message, Code: code})
}

func Internal(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, ServerError)
}
