// Package httpx holds small HTTP plumbing shared by all handlers:
// JSON responses and the request-id / access-log middleware.
package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Failure writes the standard {success:false, error} envelope.
func Failure(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
