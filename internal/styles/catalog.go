// Package styles holds the fixed scene presets offered to callers.
package styles

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scenerender/internal/domain"
)

var presets = []domain.StylePreset{
	{
		Key:        "studio_wit",
		Prompt:     "professional product photography in a clean white studio setting with soft even lighting",
		Lighting:   "soft studio lighting",
		Background: "clean white backdrop",
		Camera:     "product photography angle",
		Mood:       "clean and minimal",
	},
	{
		Key:        "scandinavisch",
		Prompt:     "cozy Scandinavian living room with natural wood, white walls, minimal decor, warm natural lighting",
		Lighting:   "warm natural window light",
		Background: "scandinavian interior with white walls and wood accents",
		Camera:     "lifestyle photography angle",
		Mood:       "cozy and natural",
	},
	{
		Key:        "modern_minimaal",
		Prompt:     "modern minimalist living room with clean lines, neutral colors, geometric shapes, bright lighting",
		Lighting:   "bright clean lighting",
		Background: "minimalist interior with clean lines",
		Camera:     "architectural photography angle",
		Mood:       "sleek and minimal",
	},
	{
		Key:        "warm_industrieel",
		Prompt:     "warm industrial loft with exposed brick, metal accents, Edison bulbs, warm ambient lighting",
		Lighting:   "warm ambient lighting with Edison bulbs",
		Background: "industrial loft with exposed brick and metal",
		Camera:     "atmospheric photography angle",
		Mood:       "warm and industrial",
	},
	{
		Key:        "japandi",
		Prompt:     "Japandi style room with natural materials, neutral tones, plants, zen aesthetics, soft lighting",
		Lighting:   "soft natural lighting",
		Background: "japandi interior with natural materials and plants",
		Camera:     "zen lifestyle photography angle",
		Mood:       "calm and natural",
	},
}

var byKey = func() map[string]domain.StylePreset {
	m := make(map[string]domain.StylePreset, len(presets))
	for _, p := range presets {
		m[p.Key] = p
	}
	return m
}()

// Lookup returns the preset registered under key.
func Lookup(key string) (domain.StylePreset, bool) {
	p, ok := byKey[strings.TrimSpace(key)]
	return p, ok
}

// List returns every preset in declaration order. The slice is a copy.
func List() []domain.StylePreset {
	out := make([]domain.StylePreset, len(presets))
	copy(out, presets)
	return out
}

// Label turns a style key into a display label, e.g. "studio_wit" -> "Studio Wit".
func Label(key string) string {
	spaced := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(key))
	return cases.Title(language.Und).String(spaced)
}
