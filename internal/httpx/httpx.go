// Package httpx holds the JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a single opaque error message. Internal detail stays in the
// logs; only the message given here crosses the boundary.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// FieldErrors writes a validation failure with one message per failing field.
func FieldErrors(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fields})
}
