package handlers

import (
	"net/http"
	"strconv"
)

// Generations lists recent render attempts, newest first.
func (a *App) Generations(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.error(w, http.StatusServiceUnavailable, "Generation history is not configured", "")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "Invalid limit parameter", "")
			return
		}
		limit = n
	}
	records, err := a.History.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("generations: list history")
		a.error(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"generations": records})
}
