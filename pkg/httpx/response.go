package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform body every endpoint returns. Clients branch on
// Success and surface Message directly, so the shape never varies: data is
// always present, an empty object when an operation has nothing to return.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// WriteJSON writes a JSON response with the given status code.
// It sets Content-Type and no-store cache headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, code int, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	WriteJSON(w, code, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope. Data is an empty object, never absent.
func Fail(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Success: false, Message: message, Data: struct{}{}})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Token-bearing responses must never land in shared caches.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
