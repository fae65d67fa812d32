package handlers

import (
	"net/http"
)

// Health is the plain liveness probe.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Ready reports which optional components are configured.
func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"generator": a.Generator != nil,
		"audit_log": a.Stats != nil,
	})
}
