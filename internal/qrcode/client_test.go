package qrcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRenderFetchesAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/v1/create-qr-code/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("data") != "https://example.com/pay?x=1" || q.Get("size") != "300x300" || q.Get("margin") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("pngdata"))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	for i := 0; i < 3; i++ {
		img, err := c.Render(context.Background(), "https://example.com/pay?x=1")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if img.MIMEType != "image/png" || string(img.Data) != "pngdata" {
			t.Fatalf("unexpected image %+v", img)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("upstream hits = %d, want 1", got)
	}
}

func TestRenderConcurrentCallersShareResult(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("qr"))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Render(context.Background(), "same"); err != nil {
				t.Errorf("Render: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := atomic.LoadInt32(&hits); got < 1 || got > 8 {
		t.Fatalf("unexpected hits %d", got)
	}
}

func TestRenderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	if _, err := c.Render(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := c.Render(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestRenderEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := NewClient(Options{BaseURL: srv.URL}).Render(context.Background(), "x"); err != ErrEmptyImage {
		t.Fatalf("err = %v, want ErrEmptyImage", err)
	}
}
