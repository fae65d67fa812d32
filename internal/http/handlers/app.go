package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"posterstudio/internal/adapter/repo"
	"posterstudio/internal/generation"
	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

// Generator produces a poster for a decoded request.
type Generator interface {
	Generate(ctx context.Context, requestID string, req poster.Request) (*generation.Outcome, error)
}

// StatsReader serves the rolling usage summary.
type StatsReader interface {
	Summary(ctx context.Context) (*repo.GenerationStats, error)
}

// App holds handler dependencies. Generator is nil when no API key is
// configured and Stats is nil when no database is configured.
type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	Generator Generator
	Stats     StatsReader
}

func NewApp(cfg *infra.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Error: message, Kind: kind})
}

// MethodNotAllowed answers routes that exist under another method.
func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}
