package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scenerender/internal/domain"
	"scenerender/internal/prompt"
	"scenerender/internal/styles"
)

// Archiver copies a generated image to storage owned by the service.
type Archiver interface {
	Archive(ctx context.Context, imageURL, styleKey string) (string, error)
}

// Recorder stores one history row per render attempt.
type Recorder interface {
	Create(ctx context.Context, rec *domain.GenerationRecord) error
}

// Options configures a Service. Only Generator is required.
type Options struct {
	Generator     Generator
	Archiver      Archiver
	Recorder      Recorder
	Logger        zerolog.Logger
	Now           func() time.Time
	DefaultLocale string
}

// Service runs the render pipeline: preset lookup, prompt composition,
// provider call and response assembly.
type Service struct {
	gen           Generator
	archiver      Archiver
	recorder      Recorder
	logger        zerolog.Logger
	now           func() time.Time
	defaultLocale string
}

// NewService builds a Service from opts.
func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	locale := opts.DefaultLocale
	if locale == "" {
		locale = DefaultLocale
	}
	return &Service{
		gen:           opts.Generator,
		archiver:      opts.Archiver,
		recorder:      opts.Recorder,
		logger:        opts.Logger,
		now:           now,
		defaultLocale: locale,
	}
}

// Render produces a scene for req. Validation failures never reach the provider.
func (s *Service) Render(ctx context.Context, req domain.GenerationRequest) (*domain.SceneResult, error) {
	if len(req.Image) == 0 {
		return nil, domain.Invalid("image", domain.ErrMissingImage)
	}
	preset, ok := styles.Lookup(req.StyleKey)
	if !ok {
		return nil, domain.Invalid("style", domain.ErrInvalidStyle)
	}
	if s.gen == nil {
		return nil, fmt.Errorf("generation: provider %w", domain.ErrNotConfigured)
	}

	start := s.now()
	promptText := prompt.Compose(preset, s.gen.Template())
	log := s.logger.With().
		Str("request_id", req.RequestID).
		Str("style", preset.Key).
		Str("provider", s.gen.Provider()).
		Logger()
	log.Info().Msg("generation: rendering scene")

	out, err := s.gen.Generate(ctx, Request{
		Prompt:    promptText,
		Image:     req.Image,
		MIMEType:  req.MIMEType,
		RequestID: req.RequestID,
	})
	if err == nil && (out == nil || out.URL == "") {
		err = &domain.GenerationFailure{Provider: s.gen.Provider(), Detail: "provider returned no image"}
	}
	if err != nil {
		log.Error().Err(err).Dur("elapsed", s.now().Sub(start)).Msg("generation: render failed")
		s.record(ctx, req, start, "", err)
		return nil, err
	}

	locale := req.Locale
	if locale == "" {
		locale = s.defaultLocale
	}
	result := Assemble(*out, preset, preset.Key, promptText, s.now(), locale)
	if result.Model == "" {
		result.Model = s.gen.Model()
	}

	if s.archiver != nil {
		archived, err := s.archiver.Archive(ctx, result.ImageURL, preset.Key)
		if err != nil {
			log.Warn().Err(err).Msg("generation: archive failed")
		} else {
			result.ArchivedURL = archived
		}
	}

	log.Info().Dur("elapsed", s.now().Sub(start)).Msg("generation: scene rendered")
	s.record(ctx, req, start, result.ImageURL, nil)
	return &result, nil
}

func (s *Service) record(ctx context.Context, req domain.GenerationRequest, start time.Time, imageURL string, genErr error) {
	if s.recorder == nil {
		return
	}
	rec := &domain.GenerationRecord{
		ID:         uuid.NewString(),
		RequestID:  req.RequestID,
		StyleKey:   req.StyleKey,
		Provider:   s.gen.Provider(),
		Model:      s.gen.Model(),
		Status:     RecordStatus(genErr),
		ImageURL:   imageURL,
		DurationMS: s.now().Sub(start).Milliseconds(),
		CreatedAt:  start.UTC(),
	}
	if genErr != nil {
		rec.ErrorMessage = genErr.Error()
	}
	// recorded even after the caller disconnects
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Create(recCtx, rec); err != nil {
		s.logger.Warn().Err(err).Str("request_id", req.RequestID).Msg("generation: record history")
	}
}

// RecordStatus classifies a render outcome for the history.
func RecordStatus(err error) domain.RecordStatus {
	switch {
	case err == nil:
		return domain.RecordStatusSucceeded
	case errors.Is(err, domain.ErrProviderRejected):
		return domain.RecordStatusRejected
	case errors.Is(err, domain.ErrGenerationTimeout):
		return domain.RecordStatusTimedOut
	case errors.Is(err, domain.ErrGenerationFailed):
		return domain.RecordStatusFailed
	default:
		return domain.RecordStatusError
	}
}
