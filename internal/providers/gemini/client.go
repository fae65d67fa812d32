package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"posterstudio/internal/generation"
	"posterstudio/internal/infra"
	"posterstudio/internal/prompt"
)

const DefaultModel = "gemini-2.5-flash-image"

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// contentGenerator is the slice of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client adapts the Gemini SDK to generation.Model.
type Client struct {
	models contentGenerator
	model  string
	logger zerolog.Logger
}

var _ generation.Model = (*Client)(nil)

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, generation.NewError(generation.KindConfiguration, generation.ErrMissingAPIKey)
	}
	cfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, generation.NewError(generation.KindConfiguration, fmt.Errorf("create gemini client: %w", err))
	}
	return newClient(sdk.Models, opts), nil
}

func newClient(models contentGenerator, opts Options) *Client {
	c := &Client{models: models, model: opts.Model, logger: zerolog.Nop()}
	if c.model == "" {
		c.model = DefaultModel
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("provider", "gemini").Str("model", c.model).Logger()
	}
	return c
}

// Generate sends one request to the model. Quota exhaustion is reported as a
// rate-limited generation error; everything else is a transport error.
func (c *Client) Generate(ctx context.Context, payload prompt.Payload) (*generation.Response, error) {
	c.logger.Debug().
		Int("attachments", len(payload.Attachments)).
		Str("aspect_ratio", string(payload.AspectRatio)).
		Msg("gemini generate")

	resp, err := c.models.GenerateContent(ctx, c.model, buildContents(payload), buildConfig(payload))
	if err != nil {
		return nil, classifyError(err)
	}
	return convertResponse(resp), nil
}

func buildContents(payload prompt.Payload) []*genai.Content {
	parts := make([]*genai.Part, 0, len(payload.Attachments)+1)
	for _, a := range payload.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(payload.Text))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func buildConfig(payload prompt.Payload) *genai.GenerateContentConfig {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	safety := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		safety = append(safety, &genai.SafetySetting{Category: cat, Threshold: genai.HarmBlockThresholdBlockOnlyHigh})
	}
	cfg := &genai.GenerateContentConfig{SafetySettings: safety}
	if payload.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: string(payload.AspectRatio)}
	}
	return cfg
}

func convertResponse(resp *genai.GenerateContentResponse) *generation.Response {
	out := &generation.Response{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		c := generation.Candidate{FinishReason: generation.FinishReason(cand.FinishReason)}
		if cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				part := generation.Part{Text: p.Text}
				if p.InlineData != nil {
					part.MIMEType = p.InlineData.MIMEType
					part.Data = p.InlineData.Data
				}
				c.Parts = append(c.Parts, part)
			}
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}

func classifyError(err error) error {
	code, status := 0, ""
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, status = apiErrPtr.Code, apiErrPtr.Status
	}
	if code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" {
		return generation.NewError(generation.KindRateLimited, fmt.Errorf("%w: %v", generation.ErrQuotaExceeded, err))
	}
	return generation.NewError(generation.KindTransport, fmt.Errorf("gemini: %w", err))
}
