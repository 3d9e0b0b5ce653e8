package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"scenerender/internal/domain"
	"scenerender/internal/generation"
	"scenerender/internal/ingest"
)

const internalErrorMessage = "Internal server error during image generation"

// HistoryLister exposes the recent render attempts.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error)
}

type App struct {
	Logger   zerolog.Logger
	Service  *generation.Service
	Ingestor *ingest.Ingestor
	History  HistoryLister
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg, details string) {
	a.json(w, code, errorResponse{Error: msg, Details: details})
}

// fail converts err into the JSON error response for its failure class.
func (a *App) fail(w http.ResponseWriter, err error) {
	code, msg, details := a.classify(err)
	a.error(w, code, msg, details)
}

func (a *App) classify(err error) (int, string, string) {
	var (
		verr    *domain.ValidationError
		perr    *domain.ProviderError
		failure *domain.GenerationFailure
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, a.validationMessage(verr), ""
	case errors.As(err, &perr):
		code := perr.Status
		if code < 400 || code > 599 {
			code = http.StatusBadGateway
		}
		return code, perr.Message, ""
	case errors.As(err, &failure):
		return http.StatusBadGateway, "Image generation failed", failure.Detail
	case errors.Is(err, domain.ErrGenerationTimeout):
		return http.StatusGatewayTimeout, "Image generation timed out", err.Error()
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Image generation is not configured", ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Image generation timed out", err.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage, err.Error()
	}
}

func (a *App) validationMessage(verr *domain.ValidationError) string {
	switch {
	case errors.Is(verr, domain.ErrMissingImage):
		return "No image file provided"
	case errors.Is(verr, domain.ErrInvalidStyle):
		return "Invalid or missing style parameter"
	case errors.Is(verr, domain.ErrImageTooLarge):
		return fmt.Sprintf("File too large (max %dMB)", a.maxUploadMB())
	case errors.Is(verr, domain.ErrUnsupportedMedia):
		return "Only image files are allowed"
	default:
		return verr.Error()
	}
}

func (a *App) maxUploadMB() int64 {
	max := int64(ingest.DefaultMaxBytes)
	if a.Ingestor != nil {
		max = a.Ingestor.MaxBytes()
	}
	return max >> 20
}
