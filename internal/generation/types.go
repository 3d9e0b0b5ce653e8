package generation

import (
	"context"

	"scenerender/internal/prompt"
)

// Request is the provider-neutral input to a Generator.
type Request struct {
	Prompt    string
	Image     []byte
	MIMEType  string
	RequestID string
}

// Output is what a provider produced for one Request.
type Output struct {
	URL           string
	RevisedPrompt string
	Model         string
	JobID         string
}

// Generator is implemented by every scene generation provider.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Output, error)
	// Provider names the backing service, e.g. "openai".
	Provider() string
	Model() string
	// Template selects the prompt wording suited to the provider's model.
	Template() prompt.Template
}
