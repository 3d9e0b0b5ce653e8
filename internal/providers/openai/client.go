// Package openai implements the synchronous image generation provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	"scenerender/internal/domain"
	"scenerender/internal/generation"
	"scenerender/internal/prompt"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = fmt.Errorf("openai: api key %w", domain.ErrNotConfigured)

const (
	providerName      = "openai"
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = goopenai.CreateImageModelDallE3
	defaultSize       = goopenai.CreateImageSize1024x1024
	defaultQuality    = goopenai.CreateImageQualityStandard
	fallbackErrorText = "Failed to generate image"
)

// Options configures the OpenAI images client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	Size           string
	Quality        string
	Organization   string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Client calls the OpenAI image generation endpoint once per request.
type Client struct {
	api     *goopenai.Client
	apiKey  string
	baseURL string
	model   string
	size    string
	quality string
	logger  zerolog.Logger
}

// NewClient constructs a client with defaults applied.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiKey := strings.TrimSpace(opts.APIKey)

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.OrgID = strings.TrimSpace(opts.Organization)
	cfg.HTTPClient = httpClient

	return &Client{
		api:     goopenai.NewClientWithConfig(cfg),
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   orDefault(opts.Model, defaultModel),
		size:    orDefault(opts.Size, defaultSize),
		quality: orDefault(opts.Quality, defaultQuality),
		logger:  opts.Logger,
	}
}

// Provider implements generation.Generator.
func (c *Client) Provider() string { return providerName }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Template implements generation.Generator. The images endpoint never sees
// the upload, so the prompt describes the whole scene.
func (c *Client) Template() prompt.Template { return prompt.TemplatePlaceNaturally }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.apiKey != "" }

// Generate submits the prompt and returns the first image URL.
func (c *Client) Generate(ctx context.Context, req generation.Request) (*generation.Output, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	text := strings.TrimSpace(req.Prompt)
	if text == "" {
		return nil, errors.New("openai: prompt is required")
	}
	resp, err := c.api.CreateImage(ctx, goopenai.ImageRequest{
		Model:          c.model,
		Prompt:         text,
		N:              1,
		Size:           c.size,
		Quality:        c.quality,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		if perr := rejection(err); perr != nil {
			c.logger.Warn().Int("status", perr.Status).Str("message", perr.Message).Msg("openai: image request rejected")
			return nil, perr
		}
		return nil, fmt.Errorf("openai: create image: %w", err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		return nil, &domain.GenerationFailure{Provider: providerName, Detail: "empty image url"}
	}
	first := resp.Data[0]
	c.logger.Debug().
		Str("model", c.model).
		Str("request_id", req.RequestID).
		Msg("openai: generated image")
	return &generation.Output{
		URL:           strings.TrimSpace(first.URL),
		RevisedPrompt: strings.TrimSpace(first.RevisedPrompt),
		Model:         c.model,
	}, nil
}

// rejection converts a non-2xx SDK error into a ProviderError. Transport
// failures return nil.
func rejection(err error) *domain.ProviderError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = fallbackErrorText
		}
		return &domain.ProviderError{Provider: providerName, Status: apiErr.HTTPStatusCode, Message: msg}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &domain.ProviderError{Provider: providerName, Status: reqErr.HTTPStatusCode, Message: fallbackErrorText}
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

var _ generation.Generator = (*Client)(nil)
