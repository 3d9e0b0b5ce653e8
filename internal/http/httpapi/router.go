package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"scenerender/internal/http/handlers"
	"scenerender/internal/middleware"
)

// Options carries the cross-cutting settings of the HTTP surface.
type Options struct {
	CORSOrigins     []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	// Health
	r.Get("/health", app.HealthStatus)
	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/styles", app.Styles)
		r.Get("/generations", app.Generations)
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/generate", app.Generate)
	})

	return r
}
