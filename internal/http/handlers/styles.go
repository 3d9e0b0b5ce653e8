package handlers

import (
	"net/http"

	"scenerender/internal/domain"
	"scenerender/internal/styles"
)

type styleOption struct {
	Value  string             `json:"value"`
	Label  string             `json:"label"`
	Config domain.StylePreset `json:"config"`
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	presets := styles.List()
	out := make([]styleOption, 0, len(presets))
	for _, p := range presets {
		out = append(out, styleOption{Value: p.Key, Label: styles.Label(p.Key), Config: p})
	}
	a.json(w, http.StatusOK, out)
}
