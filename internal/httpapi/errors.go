package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"tetherworker/pkg/types"
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

// writeValidationError reports per-field problems with 422.
func writeValidationError(w http.ResponseWriter, fields url.Values) {
	writeJSON(w, http.StatusUnprocessableEntity, types.ValidationErrorResponse{
		ErrorResponse: types.ErrorResponse{Error: "request validation failed", Code: http.StatusUnprocessableEntity},
		Fields:        fields,
	})
}
