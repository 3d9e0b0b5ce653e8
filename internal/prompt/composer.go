package prompt

import (
	"fmt"
	"strings"

	"scenerender/internal/domain"
)

// Template selects one of the fixed scene sentences.
type Template int

const (
	// TemplatePlaceNaturally is tuned for text-only models that receive no image.
	TemplatePlaceNaturally Template = iota
	// TemplatePlaceInto is tuned for image-conditioned models.
	TemplatePlaceInto
)

const qualityQualifier = "High quality, photorealistic, 4K resolution."

// Compose returns the final prompt for preset. It is deterministic.
func Compose(preset domain.StylePreset, tmpl Template) string {
	scene := strings.TrimSpace(preset.Prompt)
	switch tmpl {
	case TemplatePlaceInto:
		var lines []string
		lines = append(lines, fmt.Sprintf("Place this furniture into a %s.", scene))
		if v := strings.TrimSpace(preset.Lighting); v != "" {
			lines = append(lines, fmt.Sprintf("Lighting: %s.", v))
		}
		if v := strings.TrimSpace(preset.Background); v != "" {
			lines = append(lines, fmt.Sprintf("Background: %s.", v))
		}
		if v := strings.TrimSpace(preset.Camera); v != "" {
			lines = append(lines, fmt.Sprintf("Camera: %s.", v))
		}
		if v := strings.TrimSpace(preset.Mood); v != "" {
			lines = append(lines, fmt.Sprintf("Mood: %s.", v))
		}
		lines = append(lines, "Keep the furniture's shape, materials and colours unchanged.", qualityQualifier)
		return strings.Join(lines, " ")
	default:
		return fmt.Sprintf("Take this furniture piece and place it naturally in a %s. "+
			"The furniture should be the main focal point and fit perfectly in the space. "+
			"Make it look like professional interior design photography with realistic lighting and proportions. %s",
			scene, qualityQualifier)
	}
}
