package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response is the single error body shape the API returns for every
// authentication, authorization and request failure. Failures differ only
// by status code and message.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
}

// NewResponse builds a Response for the given status code and message.
// Status and Reason are derived from the code so callers cannot drift.
func NewResponse(code int, message string) Response {
	text := http.StatusText(code)
	return Response{
		StatusCode: code,
		Status:     text,
		Reason:     strings.ToUpper(text),
		Message:    message,
	}
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the structured error body for code.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, NewResponse(code, message))
}

// NoCache marks a response as non-cacheable. Required for responses that
// carry tokens or fresh credentials.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
