package generation

import (
	"strings"
	"time"

	"golang.org/x/text/language"

	"scenerender/internal/domain"
	"scenerender/internal/styles"
)

// DefaultLocale matches the audience of the style names.
const DefaultLocale = "nl-NL"

var displayLayouts = map[string]string{
	"nl": "2-1-2006, 15:04:05",
	"en": "1/2/2006, 3:04:05 PM",
	"id": "2/1/2006, 15.04.05",
	"de": "2.1.2006, 15:04:05",
}

// Assemble packages a provider output with its preset metadata.
func Assemble(out Output, preset domain.StylePreset, styleKey, promptUsed string, now time.Time, locale string) domain.SceneResult {
	return domain.SceneResult{
		StyleKey:           styleKey,
		StyleLabel:         styles.Label(styleKey),
		Preset:             preset,
		ImageURL:           out.URL,
		RevisedPrompt:      out.RevisedPrompt,
		PromptUsed:         promptUsed,
		Model:              out.Model,
		JobID:              out.JobID,
		GeneratedAt:        now.UTC(),
		GeneratedAtDisplay: FormatTimestamp(now, locale),
	}
}

// FormatTimestamp renders t the way a browser would for locale.
// Unknown or empty locales fall back to DefaultLocale.
func FormatTimestamp(t time.Time, locale string) string {
	layout, ok := displayLayouts[baseLanguage(locale)]
	if !ok {
		layout = displayLayouts[baseLanguage(DefaultLocale)]
	}
	return t.Format(layout)
}

func baseLanguage(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
