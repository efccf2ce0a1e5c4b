// Package api implements the HTTP handlers of the API emulator.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the ledger-style error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the body of an error envelope.
type ErrorDetail struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// AuthMiddleware validates the Authorization header against the configured
// token. The broker client sends the bare token, the ledger client a Bearer
// token; both are accepted.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got == "" || (token != "" && got != token) {
				writeJSONError(w, http.StatusUnauthorized, "401", "unauthorized", "Invalid or missing token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a ledger-style error envelope.
func writeJSONError(w http.ResponseWriter, status int, id, name, detail string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{ID: id, Name: name, Detail: detail}})
}
