package generation

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
	"posterstudio/internal/prompt"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// CallerOptions controls retry behaviour. Zero values pick the defaults.
type CallerOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
	Sleep      SleepFunc
	Logger     *infra.Logger
	Tracer     trace.Tracer
}

// Caller invokes a Model and retries only on rate limiting, doubling the
// wait each time.
type Caller struct {
	model      Model
	maxRetries int
	baseDelay  time.Duration
	sleep      SleepFunc
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// Result is the outcome of Call. Attempts is filled on failure too.
type Result struct {
	Image    *poster.Image
	Attempts int
}

func NewCaller(model Model, opts CallerOptions) *Caller {
	c := &Caller{
		model:      model,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		sleep:      opts.Sleep,
		logger:     zerolog.Nop(),
		tracer:     opts.Tracer,
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	} else if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "generation").Logger()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("posterstudio/generation")
	}
	return c
}

// Call sends payload to the model. At most MaxRetries+1 attempts are made;
// safety blocks and every other failure end the call immediately.
func (c *Caller) Call(ctx context.Context, payload prompt.Payload) (Result, error) {
	schedule := c.schedule()
	var (
		res     Result
		lastErr error
	)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		res.Attempts = attempt + 1

		img, err := c.attempt(ctx, payload, attempt)
		if err == nil {
			res.Image = img
			return res, nil
		}
		lastErr = err

		kind := KindOf(err)
		if kind != KindRateLimited {
			c.logger.Warn().Err(err).Str("kind", string(kind)).Int("attempt", attempt).Msg("generation failed")
			break
		}
		if attempt == c.maxRetries {
			c.logger.Warn().Int("attempts", res.Attempts).Msg("rate limit retries exhausted")
			break
		}

		wait := schedule.NextBackOff()
		c.logger.Info().Dur("wait", wait).Int("attempt", attempt).Msg("rate limited, backing off")
		if err := c.sleep(ctx, wait); err != nil {
			lastErr = NewError(KindTransport, err)
			break
		}
	}

	var ge *Error
	if !errors.As(lastErr, &ge) {
		lastErr = NewError(KindTransport, lastErr)
	}
	return res, lastErr
}

func (c *Caller) attempt(ctx context.Context, payload prompt.Payload, attempt int) (*poster.Image, error) {
	ctx, span := c.tracer.Start(ctx, "generation.attempt", trace.WithAttributes(
		attribute.Int("attempt", attempt),
		attribute.String("aspect_ratio", string(payload.AspectRatio)),
		attribute.Int("attachments", len(payload.Attachments)),
	))
	defer span.End()

	resp, err := c.model.Generate(ctx, payload)
	if err == nil {
		var img *poster.Image
		img, err = resp.FirstImage()
		if err == nil {
			return img, nil
		}
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String("failure_kind", string(KindOf(err))))
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// schedule yields BaseDelay, 2*BaseDelay, 4*BaseDelay, ... without jitter.
func (c *Caller) schedule() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = c.baseDelay << uint(c.maxRetries)
	b.Reset()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
