package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"posterstudio/internal/adapter/repo"
	"posterstudio/internal/generation"
	"posterstudio/internal/http/handlers"
	httpapi "posterstudio/internal/http/httpapi"
	"posterstudio/internal/infra"
	"posterstudio/internal/infra/credentials"
	"posterstudio/internal/prompt"
	"posterstudio/internal/providers/gemini"
	"posterstudio/internal/qrcode"
)

const serviceName = "poster-api"

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infra.SetupTracing(ctx, cfg, serviceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	app := handlers.NewApp(cfg, logger)

	// The database is optional: without it there is no audit log, no
	// stats and no stored API key.
	var (
		recorder generation.Recorder
		keys     *credentials.Store
	)
	pool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Info().Msg("DATABASE_URL not set; generation log disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer pool.Close()
		recorder, keys = wireDatabase(ctx, pool, app, logger)
	}

	apiKey, err := keys.ResolveGeminiKey(ctx, cfg.ModelAPIKey())
	if err != nil {
		logger.Warn().Err(err).Msg("could not read stored gemini key")
	}
	if apiKey == "" {
		logger.Error().Msg("API_KEY is not set; /api/generate will answer with a configuration error")
	} else {
		svc, err := newGenerationService(ctx, cfg, apiKey, recorder, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create gemini client")
		}
		app.Generator = svc
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// wireDatabase sets up the generation log and the stats endpoint.
func wireDatabase(ctx context.Context, pool *pgxpool.Pool, app *handlers.App, logger zerolog.Logger) (generation.Recorder, *credentials.Store) {
	runner := infra.NewSQLRunner(pool, logger)
	generations := repo.NewGenerationRepository(runner)
	if err := generations.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare schema")
	}
	app.Stats = generations
	return generations, credentials.NewStore(runner)
}

func newGenerationService(ctx context.Context, cfg *infra.Config, apiKey string, recorder generation.Recorder, logger *infra.Logger) (*generation.Service, error) {
	model, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:  apiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	qr := qrcode.NewClient(qrcode.Options{
		BaseURL:  cfg.QRBaseURL,
		CacheTTL: cfg.QRCacheTTL,
		Logger:   logger,
	})
	builder := prompt.NewBuilder(prompt.Options{QR: qr, Logger: logger})
	retries := cfg.MaxRetries
	if retries == 0 {
		// CallerOptions reads zero as "use the default".
		retries = -1
	}
	caller := generation.NewCaller(model, generation.CallerOptions{
		MaxRetries: retries,
		BaseDelay:  cfg.RetryBaseDelay,
		Logger:     logger,
		Tracer:     otel.Tracer("posterstudio/generation"),
	})
	return generation.NewService(builder, caller, generation.ServiceOptions{
		Recorder: recorder,
		Logger:   logger,
	}), nil
}
