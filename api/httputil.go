package api

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON document returned for every 4xx/5xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteError writes the structured error document with the given status.
func WriteError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: msg})
}

// WriteJSON writes v as a JSON response body.
func WriteJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
