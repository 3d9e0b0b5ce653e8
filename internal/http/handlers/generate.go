package handlers

import (
	"net/http"

	"scenerender/internal/domain"
	"scenerender/internal/middleware"
)

type sceneData struct {
	Style         string             `json:"style"`
	Config        domain.StylePreset `json:"config"`
	Timestamp     string             `json:"timestamp"`
	ImageURL      string             `json:"imageUrl"`
	RevisedPrompt *string            `json:"revised_prompt"`
	Prompt        string             `json:"prompt"`
	Model         string             `json:"model,omitempty"`
	JobID         string             `json:"jobId,omitempty"`
	ArchivedURL   string             `json:"archivedUrl,omitempty"`
}

type sceneMetadata struct {
	Style       string `json:"style"`
	GeneratedAt string `json:"generatedAt"`
	Prompt      string `json:"prompt"`
}

type GenerateResponse struct {
	Success   bool          `json:"success"`
	ImageURL  string        `json:"imageUrl"`
	SceneData sceneData     `json:"sceneData"`
	Metadata  sceneMetadata `json:"metadata"`
}

// Generate renders the uploaded furniture image into the requested style.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())
	log := a.Logger.With().Str("request_id", requestID).Logger()

	upload, err := a.Ingestor.FromRequest(w, r)
	if err != nil {
		log.Info().Err(err).Msg("generate: upload rejected")
		a.fail(w, err)
		return
	}
	defer func() {
		if err := upload.Release(); err != nil {
			log.Warn().Err(err).Str("key", upload.Key()).Msg("generate: release upload")
		}
	}()

	locale := middleware.LocaleFromContext(r.Context())
	result, err := a.Service.Render(r.Context(), upload.Request(locale, requestID))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, NewGenerateResponse(result))
}

// isoMillis is RFC 3339 in UTC with fixed millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NewGenerateResponse shapes a render result for JSON clients.
func NewGenerateResponse(res *domain.SceneResult) GenerateResponse {
	var revised *string
	if res.RevisedPrompt != "" {
		v := res.RevisedPrompt
		revised = &v
	}
	return GenerateResponse{
		Success:  true,
		ImageURL: res.ImageURL,
		SceneData: sceneData{
			Style:         res.StyleKey,
			Config:        res.Preset,
			Timestamp:     res.GeneratedAt.UTC().Format(isoMillis),
			ImageURL:      res.ImageURL,
			RevisedPrompt: revised,
			Prompt:        res.PromptUsed,
			Model:         res.Model,
			JobID:         res.JobID,
			ArchivedURL:   res.ArchivedURL,
		},
		Metadata: sceneMetadata{
			Style:       res.StyleLabel,
			GeneratedAt: res.GeneratedAtDisplay,
			Prompt:      res.Preset.Prompt,
		},
	}
}
