package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"scenerender/internal/adapter/repo"
	"scenerender/internal/generation"
	"scenerender/internal/infra"
	"scenerender/internal/infra/credentials"
	"scenerender/internal/ingest"
	"scenerender/internal/media"
	"scenerender/internal/providers/openai"
	"scenerender/internal/providers/replicate"
	"scenerender/internal/storage"
)

// Runtime holds the long-lived dependencies shared by the API server and
// the CLI.
type Runtime struct {
	Config      *infra.Config
	Logger      zerolog.Logger
	Pool        *pgxpool.Pool
	SQL         infra.SQLExecutor
	Credentials *credentials.Store
	History     *repo.GenerationRepositoryPG
	Generator   generation.Generator
	Service     *generation.Service
	Ingestor    *ingest.Ingestor
}

// New connects the optional database, resolves provider credentials and
// builds the render pipeline.
func New(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		rt.Pool = pool
		rt.SQL = infra.NewSQLRunner(pool, logger)
		if err := infra.EnsureSchema(ctx, rt.SQL); err != nil {
			pool.Close()
			return nil, err
		}
		rt.Credentials = credentials.NewStore(rt.SQL)
		rt.History = repo.NewGenerationRepository(rt.SQL)
	}

	store, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	rt.Ingestor = ingest.NewIngestor(store, cfg.MaxUploadBytes, logger)

	gen, err := NewGenerator(ctx, cfg, rt.Credentials, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Generator = gen

	opts := generation.Options{
		Generator:     gen,
		Logger:        logger,
		DefaultLocale: cfg.DefaultLocale,
	}
	if rt.History != nil {
		opts.Recorder = rt.History
	}
	if cfg.HasArchive() {
		uploader, err := media.NewUploader(ctx, media.Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicURL:      cfg.S3PublicURL,
			KeyPrefix:      cfg.S3KeyPrefix,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		opts.Archiver = media.NewArchiver(media.ArchiverOptions{
			Uploader:   uploader,
			HTTPClient: &http.Client{Timeout: cfg.ProviderTimeout},
			Logger:     logger,
		})
	}
	rt.Service = generation.NewService(opts)
	return rt, nil
}

// NewGenerator builds the provider selected by SCENE_PROVIDER. Credentials
// missing from the environment are looked up in store when it is non-nil.
func NewGenerator(ctx context.Context, cfg *infra.Config, store *credentials.Store, logger zerolog.Logger) (generation.Generator, error) {
	switch cfg.SceneProvider {
	case infra.ProviderReplicate:
		token, err := credentials.Resolve(ctx, store, credentials.ProviderReplicate, cfg.ReplicateAPIToken)
		if err != nil {
			return nil, fmt.Errorf("resolve replicate token: %w", err)
		}
		client := replicate.NewClient(replicate.Options{
			Token:          token,
			BaseURL:        cfg.ReplicateBaseURL,
			Version:        cfg.ReplicateModelVersion,
			InferenceSteps: cfg.ReplicateInferenceSteps,
			GuidanceScale:  cfg.ReplicateGuidanceScale,
			AspectRatio:    cfg.ReplicateAspectRatio,
			PollInterval:   cfg.ReplicatePollInterval,
			MaxAttempts:    cfg.ReplicateMaxPolls,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if !client.HasCredentials() {
			logger.Warn().Msg("replicate: no api token configured, renders will fail")
		}
		return client, nil
	default:
		key, err := credentials.Resolve(ctx, store, credentials.ProviderOpenAI, cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("resolve openai key: %w", err)
		}
		client := openai.NewClient(openai.Options{
			APIKey:         key,
			BaseURL:        cfg.OpenAIBaseURL,
			Model:          cfg.OpenAIImageModel,
			Size:           cfg.OpenAIImageSize,
			Quality:        cfg.OpenAIImageQuality,
			Organization:   cfg.OpenAIOrg,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if !client.HasCredentials() {
			logger.Warn().Msg("openai: no api key configured, renders will fail")
		}
		return client, nil
	}
}

// Close releases the database pool.
func (rt *Runtime) Close() {
	if rt != nil && rt.Pool != nil {
		rt.Pool.Close()
	}
}
