package handlers

import (
	"net/http"
	"time"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthStatus answers the legacy /health check.
func (a *App) HealthStatus(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(isoMillis),
	})
}

func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}

func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusNotFound, "Endpoint not found", "")
}
