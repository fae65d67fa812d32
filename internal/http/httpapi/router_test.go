package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"posterstudio/internal/generation"
	"posterstudio/internal/http/handlers"
	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

type fixedGenerator struct{ calls int }

func (f *fixedGenerator) Generate(ctx context.Context, requestID string, req poster.Request) (*generation.Outcome, error) {
	f.calls++
	return &generation.Outcome{Image: &poster.Image{MIMEType: "image/png", Data: []byte("p")}, Attempts: 1}, nil
}

func newServer(t *testing.T, cfg *infra.Config) (*httptest.Server, *fixedGenerator) {
	t.Helper()
	gen := &fixedGenerator{}
	app := handlers.NewApp(cfg, zerolog.Nop())
	app.Generator = gen
	srv := httptest.NewServer(NewRouter(app, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, gen
}

func TestRouterGenerate(t *testing.T) {
	srv, gen := newServer(t, &infra.Config{MaxBodyBytes: 1 << 20, RateLimitPerMin: 30})

	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(`{"request":{"type":"Movie"}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || gen.calls != 1 {
		t.Fatalf("status = %d calls = %d", resp.StatusCode, gen.calls)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	srv, _ := newServer(t, &infra.Config{MaxBodyBytes: 1 << 20})
	resp, err := http.Get(srv.URL + "/api/generate")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRouterPreflight(t *testing.T) {
	srv, gen := newServer(t, &infra.Config{MaxBodyBytes: 1 << 20})
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || gen.calls != 0 {
		t.Fatalf("status = %d calls = %d", resp.StatusCode, gen.calls)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestRouterBodyLimit(t *testing.T) {
	srv, gen := newServer(t, &infra.Config{MaxBodyBytes: 16})
	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(`{"request":{"type":"Movie","name":"long enough"}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge || gen.calls != 0 {
		t.Fatalf("status = %d calls = %d", resp.StatusCode, gen.calls)
	}
}

func TestRouterHealthAndUnknownAPI(t *testing.T) {
	srv, _ := newServer(t, &infra.Config{})
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown api = %d", resp.StatusCode)
	}
}
