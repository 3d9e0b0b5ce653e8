package domain

import "time"

// GenerationRequest carries a single render call from ingest to the provider.
type GenerationRequest struct {
	StyleKey  string
	Image     []byte
	MIMEType  string
	Filename  string
	Locale    string
	RequestID string
}

// SceneResult is the caller-facing outcome of a successful render.
type SceneResult struct {
	StyleKey           string
	StyleLabel         string
	Preset             StylePreset
	ImageURL           string
	RevisedPrompt      string
	PromptUsed         string
	Model              string
	JobID              string
	GeneratedAt        time.Time
	GeneratedAtDisplay string
	ArchivedURL        string
}
