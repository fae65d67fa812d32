package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"posterstudio/internal/http/handlers"
	"posterstudio/internal/middleware"
)

// NewRouter wires the HTTP surface: the generate endpoint, probes, stats,
// API docs and the static browser client.
func NewRouter(app *handlers.App, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS,
	)
	r.NotFound(app.Static)
	r.MethodNotAllowed(app.MethodNotAllowed)

	rateLimit, maxBody := 0, int64(0)
	if app.Config != nil {
		rateLimit, maxBody = app.Config.RateLimitPerMin, app.Config.MaxBodyBytes
	}

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(
			middleware.RateLimit(rateLimit, time.Minute),
			middleware.BodyLimit(maxBody),
		).Post("/generate", app.Generate)
		r.Get("/health", app.Ready)
		r.Get("/stats", app.StatsSummary)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
	})

	return r
}
