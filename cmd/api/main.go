package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"scenerender/internal/bootstrap"
	"scenerender/internal/http/handlers"
	httpapi "scenerender/internal/http/httpapi"
	"scenerender/internal/infra"
	"scenerender/internal/infra/geoip"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise runtime")
	}
	defer rt.Close()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := &handlers.App{
		Logger:   logger,
		Service:  rt.Service,
		Ingestor: rt.Ingestor,
	}
	if rt.History != nil {
		app.History = rt.History
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info().
			Str("provider", rt.Generator.Provider()).
			Str("model", rt.Generator.Model()).
			Bool("history", rt.History != nil).
			Msgf("API listening on %s", server.Addr())
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		// in-flight renders may still be polling the provider
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RenderBudget()+10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
