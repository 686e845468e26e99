package handlers

import "net/http"

// HealthHandler reports liveness and which optional integrations are
// configured.
type HealthHandler struct {
	integrations map[string]bool
}

func NewHealthHandler(integrations map[string]bool) *HealthHandler {
	return &HealthHandler{integrations: integrations}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"integrations": h.integrations,
	})
}
