package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"posterstudio/internal/generation"
	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultTimeout = 3 * time.Minute
)

const (
	msgTimeout       = "Server timed out (504). The image generation took too long. Please try again."
	msgEmptyResponse = "Server returned an empty response. Please try again."
	msgTooLarge      = "Image too large (413). Please use a smaller photo."
	msgServerCrash   = "Internal Server Error (500). The server encountered an issue processing the request."
	msgNoImage       = "Server returned success but no image data."
)

// Options controls how the Client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Now        func() time.Time
	Logger     *infra.Logger
}

// Client calls the generate endpoint of a running server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	logger     zerolog.Logger
}

func New(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		now:        opts.Now,
		logger:     zerolog.Nop(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "client").Logger()
	}
	return c
}

type responseBody struct {
	Image string `json:"image"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Generate posts req and returns the poster as a data URL. Failures are
// *generation.Error values whose message is fit to show a person.
func (c *Client) Generate(ctx context.Context, req poster.Request) (string, error) {
	body, err := json.Marshal(map[string]poster.Wire{"request": req.Wire()})
	if err != nil {
		return "", generation.NewError(generation.KindTransport, err)
	}

	// The timestamp keeps intermediaries from serving a cached response.
	url := c.baseURL + "/api/generate?t=" + strconv.FormatInt(c.now().UnixMilli(), 10)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", generation.NewError(generation.KindTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", generation.NewError(generation.KindTransport, fmt.Errorf("connection failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", generation.NewError(generation.KindTransport, fmt.Errorf("read response: %w", err))
	}
	c.logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(raw)).Msg("generate response")
	return interpret(resp.StatusCode, resp.Status, raw)
}

// interpret classifies a generate response by status and body shape.
func interpret(status int, statusText string, raw []byte) (string, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		if status == http.StatusGatewayTimeout {
			return "", generation.NewError(generation.KindTransport, errors.New(msgTimeout))
		}
		return "", generation.NewError(generation.KindTransport, errors.New(msgEmptyResponse))
	}

	var body responseBody
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		switch status {
		case http.StatusRequestEntityTooLarge:
			return "", generation.NewError(generation.KindTransport, errors.New(msgTooLarge))
		case http.StatusGatewayTimeout:
			return "", generation.NewError(generation.KindTransport, errors.New(msgTimeout))
		case http.StatusInternalServerError:
			return "", generation.NewError(generation.KindTransport, errors.New(msgServerCrash))
		case http.StatusTooManyRequests:
			return "", generation.NewError(generation.KindRateLimited, errors.New(generation.MessageRateLimited))
		}
		return "", generation.NewError(generation.KindTransport, fmt.Errorf("Connection failed (%d). Server returned invalid data.", status))
	}

	if status < 200 || status > 299 {
		kind := generation.KindTransport
		switch {
		case status == http.StatusTooManyRequests:
			kind = generation.KindRateLimited
		case body.Kind != "":
			kind = generation.ParseKind(body.Kind)
		}
		msg := body.Error
		if msg == "" {
			msg = "Server Error: " + statusText
		}
		return "", generation.NewError(kind, errors.New(msg))
	}

	if body.Image == "" {
		return "", generation.NewError(generation.KindEmptyResponse, errors.New(msgNoImage))
	}
	return body.Image, nil
}
