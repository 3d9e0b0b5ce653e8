// Package replicate implements the asynchronous, poll-based scene provider.
package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"scenerender/internal/domain"
	"scenerender/internal/generation"
	"scenerender/internal/prompt"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = fmt.Errorf("replicate: api token %w", domain.ErrNotConfigured)

const (
	providerName        = "replicate"
	defaultBaseURL      = "https://api.replicate.com/v1"
	defaultSteps        = 50
	defaultGuidance     = 7.5
	defaultAspectRatio  = "1:1"
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 60
	fallbackErrorText   = "Failed to generate image"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Options configures the Replicate predictions client.
type Options struct {
	Token          string
	BaseURL        string
	Version        string
	Model          string
	InferenceSteps int
	GuidanceScale  float64
	AspectRatio    string
	PollInterval   time.Duration
	MaxAttempts    int
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	Sleep          Sleeper
	RequestTimeout time.Duration
}

// Client submits predictions and polls them to a terminal state.
type Client struct {
	token       string
	baseURL     string
	version     string
	model       string
	steps       int
	guidance    float64
	aspectRatio string
	interval    time.Duration
	maxAttempts int
	httpClient  *http.Client
	logger      zerolog.Logger
	sleep       Sleeper
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Image             string  `json:"image"`
	Prompt            string  `json:"prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	AspectRatio       string  `json:"aspect_ratio"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// NewClient constructs a client with defaults applied.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		token:       strings.TrimSpace(opts.Token),
		baseURL:     baseURL,
		version:     strings.TrimSpace(opts.Version),
		model:       strings.TrimSpace(opts.Model),
		steps:       opts.InferenceSteps,
		guidance:    opts.GuidanceScale,
		aspectRatio: strings.TrimSpace(opts.AspectRatio),
		interval:    opts.PollInterval,
		maxAttempts: opts.MaxAttempts,
		httpClient:  httpClient,
		logger:      opts.Logger,
		sleep:       opts.Sleep,
	}
	if c.steps <= 0 {
		c.steps = defaultSteps
	}
	if c.guidance <= 0 {
		c.guidance = defaultGuidance
	}
	if c.aspectRatio == "" {
		c.aspectRatio = defaultAspectRatio
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.model == "" {
		c.model = c.version
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

// Provider implements generation.Generator.
func (c *Client) Provider() string { return providerName }

// Model returns the model name, or the version hash when no name is set.
func (c *Client) Model() string { return c.model }

// Template implements generation.Generator. The model is image-conditioned.
func (c *Client) Template() prompt.Template { return prompt.TemplatePlaceInto }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.token != "" }

// Generate submits a prediction and waits for it to finish.
func (c *Client) Generate(ctx context.Context, req generation.Request) (*generation.Output, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingToken
	}
	if c.version == "" {
		return nil, errors.New("replicate: model version is required")
	}
	if len(req.Image) == 0 {
		return nil, errors.New("replicate: image is required")
	}
	job, err := c.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("prediction_id", job.ID).Str("status", string(job.Status)).Str("request_id", req.RequestID).Msg("replicate: prediction submitted")
	job, err = c.await(ctx, job)
	if err != nil {
		return nil, err
	}
	return &generation.Output{URL: job.OutputURL, Model: c.model, JobID: job.ID}, nil
}

func (c *Client) submit(ctx context.Context, req generation.Request) (domain.GenerationJob, error) {
	body, err := json.Marshal(predictionRequest{
		Version: c.version,
		Input: predictionInput{
			Image:             dataURL(req.MIMEType, req.Image),
			Prompt:            strings.TrimSpace(req.Prompt),
			NumInferenceSteps: c.steps,
			GuidanceScale:     c.guidance,
			AspectRatio:       c.aspectRatio,
		},
	})
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallbackErrorText
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			if d := strings.TrimSpace(detail.Detail); d != "" {
				msg = d
			} else if t := strings.TrimSpace(detail.Title); t != "" {
				msg = t
			}
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", msg).Msg("replicate: prediction rejected")
		return domain.GenerationJob{}, &domain.ProviderError{Provider: providerName, Status: resp.StatusCode, Message: msg}
	}
	job, err := decodePrediction(raw)
	if err != nil {
		return domain.GenerationJob{}, err
	}
	if job.ID == "" {
		return domain.GenerationJob{}, errors.New("replicate: prediction id missing")
	}
	return job, nil
}

func (c *Client) fetch(ctx context.Context, id string) (domain.GenerationJob, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predictions/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: build status request: %w", err)
	}
	c.authorize(httpReq)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: status request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: read status: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.GenerationJob{}, fmt.Errorf("replicate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return decodePrediction(raw)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Token "+c.token)
}

func decodePrediction(raw []byte) (domain.GenerationJob, error) {
	var decoded predictionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.GenerationJob{}, fmt.Errorf("replicate: decode prediction: %w", err)
	}
	status, canceled := normalizeStatus(decoded.Status)
	job := domain.GenerationJob{
		ID:        strings.TrimSpace(decoded.ID),
		Status:    status,
		OutputURL: firstOutput(decoded.Output),
		Error:     errorText(decoded.Error),
	}
	if canceled && job.Error == "" {
		job.Error = "prediction canceled"
	}
	return job, nil
}

// normalizeStatus maps provider states onto domain.JobStatus. Unknown
// states keep the job polling.
func normalizeStatus(status string) (domain.JobStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "starting", "pending", "queued":
		return domain.JobStatusPending, false
	case "succeeded", "successful":
		return domain.JobStatusSucceeded, false
	case "failed":
		return domain.JobStatusFailed, false
	case "canceled", "cancelled", "aborted":
		return domain.JobStatusFailed, true
	default:
		return domain.JobStatusProcessing, false
	}
}

// firstOutput accepts either a single URL or a list of URLs.
func firstOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, item := range many {
			if s := firstOutput(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func errorText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return trimmed
}

func dataURL(mimeType string, data []byte) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ generation.Generator = (*Client)(nil)
