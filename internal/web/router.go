package web

import (
	"encoding/json"
	"net/http"
)

// NewRouter creates the webhook router with all endpoints registered.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /slack/events", h.Events)
	mux.HandleFunc("POST /slack/interactions", h.Interactions)
	mux.HandleFunc("GET /healthz", h.Health)

	return mux
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
