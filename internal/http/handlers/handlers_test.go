package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"posterstudio/internal/adapter/repo"
	"posterstudio/internal/generation"
	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

type stubGenerator struct {
	req   poster.Request
	rid   string
	out   *generation.Outcome
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, requestID string, req poster.Request) (*generation.Outcome, error) {
	s.calls++
	s.req = req
	s.rid = requestID
	return s.out, s.err
}

type stubStats struct {
	stats *repo.GenerationStats
	err   error
}

func (s stubStats) Summary(ctx context.Context) (*repo.GenerationStats, error) {
	return s.stats, s.err
}

func newTestApp(gen Generator) *App {
	app := NewApp(&infra.Config{StaticDir: ""}, zerolog.Nop())
	if gen != nil {
		app.Generator = gen
	}
	return app
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

const validBody = `{"request":{"type":"Birthday","aspectRatio":"6:4","name":" Asha ","customDate":"1 Jan","userImage":"data:image/png;base64,AQID"}}`

func TestGenerateSuccess(t *testing.T) {
	gen := &stubGenerator{out: &generation.Outcome{Image: &poster.Image{MIMEType: "image/png", Data: []byte{9, 9}}, Attempts: 2}}
	app := newTestApp(gen)

	rec := httptest.NewRecorder()
	app.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validBody)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Image != "data:image/png;base64,CQk=" || resp.Attempts != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gen.req.Name != "Asha" || gen.req.AspectRatio != poster.RatioPrintWide || gen.req.Image == nil {
		t.Fatalf("unexpected decoded request %+v", gen.req)
	}
	if gen.req.Occasion.(poster.Birthday).Date != "1 Jan" {
		t.Fatalf("date lost")
	}
}

func TestGenerateAcceptsStringEncodedBody(t *testing.T) {
	gen := &stubGenerator{out: &generation.Outcome{Image: &poster.Image{MIMEType: "image/png", Data: []byte{1}}}}
	app := newTestApp(gen)

	rec := httptest.NewRecorder()
	app.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(strconv.Quote(validBody))))
	if rec.Code != http.StatusOK || gen.calls != 1 {
		t.Fatalf("status = %d calls = %d body = %s", rec.Code, gen.calls, rec.Body.String())
	}
}

func TestGenerateRejectsBadBodies(t *testing.T) {
	cases := map[string]string{
		"not json":      `{nope`,
		"missing field": `{"other":1}`,
		"null request":  `{"request":null}`,
		"bad type":      `{"request":{"type":"Wedding"}}`,
		"bad ratio":     `{"request":{"type":"Movie","aspectRatio":"5:5"}}`,
		"bad image":     `{"request":{"type":"Movie","userImage":"garbage"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{}
			rec := httptest.NewRecorder()
			newTestApp(gen).Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := decodeError(t, rec); !strings.HasPrefix(got.Error, "Invalid request body") {
				t.Fatalf("error = %q", got.Error)
			}
			if gen.calls != 0 {
				t.Fatalf("generator called for bad body")
			}
		})
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestApp(nil).Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validBody)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "Server configuration error: API Key missing." || body.Kind != "configuration" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestGenerateMapsFailureKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{generation.NewError(generation.KindRateLimited, errors.New("429")), http.StatusTooManyRequests, msgQuotaExceeded},
		{generation.NewError(generation.KindSafetyBlocked, generation.ErrSafetyBlocked), http.StatusUnprocessableEntity, msgSafetyBlocked},
		{generation.NewError(generation.KindEmptyResponse, generation.ErrNoImageData), http.StatusBadGateway, generation.ErrNoImageData.Error()},
		{generation.NewError(generation.KindTransport, errors.New("dial tcp: refused")), http.StatusInternalServerError, "dial tcp: refused"},
	}
	for _, tc := range tests {
		t.Run(string(generation.KindOf(tc.err)), func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestApp(&stubGenerator{err: tc.err}).Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validBody)))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			body := decodeError(t, rec)
			if body.Error != tc.msg || body.Kind != string(generation.KindOf(tc.err)) {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}

func TestGenerateBodyTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validBody))
	req.Body = http.MaxBytesReader(rec, req.Body, 8)
	newTestApp(&stubGenerator{}).Generate(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestApp(nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStatsSummary(t *testing.T) {
	app := newTestApp(nil)
	rec := httptest.NewRecorder()
	app.StatsSummary(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status without db = %d", rec.Code)
	}

	app.Stats = stubStats{stats: &repo.GenerationStats{Total: 3, Succeeded: 2}}
	rec = httptest.NewRecorder()
	app.StatsSummary(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":3`) {
		t.Fatalf("stats = %d %s", rec.Code, rec.Body.String())
	}

	app.Stats = stubStats{err: errors.New("boom")}
	rec = httptest.NewRecorder()
	app.StatsSummary(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status on error = %d", rec.Code)
	}
}

func TestStaticFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	app := NewApp(&infra.Config{StaticDir: dir}, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.Static(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Fatalf("asset = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	app.Static(rec, httptest.NewRequest(http.MethodGet, "/history/42", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "app") {
		t.Fatalf("fallback = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	app.Static(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("api miss = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Static(rec, httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "app") {
		t.Fatalf("traversal should resolve inside root: %d %q", rec.Code, rec.Body.String())
	}
}
