package qrcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

const (
	DefaultBaseURL  = "https://api.qrserver.com"
	DefaultSize     = 300
	DefaultMargin   = 10
	DefaultCacheTTL = 30 * time.Minute

	maxImageBytes = 2 << 20
)

var ErrEmptyImage = errors.New("qr service returned no image")

// Options controls how the QR client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Size       int
	Margin     int
	CacheTTL   time.Duration
	Logger     *infra.Logger
}

// Client renders QR codes through a public HTTP renderer. Results are cached
// per target and concurrent requests for the same target share one fetch.
type Client struct {
	baseURL    string
	httpClient *http.Client
	size       int
	margin     int
	cache      *cache.Cache
	group      singleflight.Group
	logger     zerolog.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		size:       opts.Size,
		margin:     opts.Margin,
		logger:     zerolog.Nop(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.size <= 0 {
		c.size = DefaultSize
	}
	if c.margin < 0 {
		c.margin = 0
	} else if c.margin == 0 {
		c.margin = DefaultMargin
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c.cache = cache.New(ttl, 2*ttl)
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "qrcode").Logger()
	}
	return c
}

// Render returns the QR code image for target.
func (c *Client) Render(ctx context.Context, target string) (*poster.Image, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("qr target is required")
	}
	if v, ok := c.cache.Get(target); ok {
		return v.(*poster.Image), nil
	}

	v, err, shared := c.group.Do(target, func() (any, error) {
		img, err := c.fetch(ctx, target)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(target, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Bool("shared", shared).Int("bytes", len(v.(*poster.Image).Data)).Msg("qr code rendered")
	return v.(*poster.Image), nil
}

// RenderURL is the renderer address for target.
func (c *Client) RenderURL(target string) string {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", c.size, c.size))
	q.Set("data", target)
	q.Set("margin", strconv.Itoa(c.margin))
	return c.baseURL + "/v1/create-qr-code/?" + q.Encode()
}

func (c *Client) fetch(ctx context.Context, target string) (*poster.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RenderURL(target), nil)
	if err != nil {
		return nil, fmt.Errorf("build qr request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch qr code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("qr service status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read qr code: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	mimeType := "image/png"
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && strings.HasPrefix(mt, "image/") {
		mimeType = mt
	}
	return &poster.Image{MIMEType: mimeType, Data: data}, nil
}
