package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
	"posterstudio/internal/prompt"
)

// Builder turns a request into a model payload.
type Builder interface {
	Build(ctx context.Context, req poster.Request) prompt.Payload
}

// Record is one audit entry for a generation request. Nothing of the user's
// text or images is kept.
type Record struct {
	ID               string
	RequestID        string
	PosterType       poster.Type
	AspectRatio      poster.AspectRatio
	ModelAspectRatio poster.AspectRatio
	HasImage         bool
	HasQRCode        bool
	Attempts         int
	Kind             Kind
	Error            string
	Duration         time.Duration
	CreatedAt        time.Time
}

// Succeeded reports whether the generation produced an image.
func (r Record) Succeeded() bool { return r.Kind == "" }

type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// NopRecorder discards records.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Record) error { return nil }

// Outcome is a successful generation.
type Outcome struct {
	Image    *poster.Image
	Attempts int
	Duration time.Duration
}

type ServiceOptions struct {
	Recorder Recorder
	Logger   *infra.Logger
	Now      func() time.Time
}

// Service ties the prompt builder to the caller and records every request.
type Service struct {
	builder  Builder
	caller   *Caller
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(builder Builder, caller *Caller, opts ServiceOptions) *Service {
	s := &Service{
		builder:  builder,
		caller:   caller,
		recorder: opts.Recorder,
		logger:   zerolog.Nop(),
		now:      opts.Now,
	}
	if s.recorder == nil {
		s.recorder = NopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "generation").Logger()
	}
	return s
}

// Generate builds the prompt for req and calls the model.
func (s *Service) Generate(ctx context.Context, requestID string, req poster.Request) (*Outcome, error) {
	start := s.now()
	payload := s.builder.Build(ctx, req)
	res, err := s.caller.Call(ctx, payload)
	elapsed := s.now().Sub(start)

	rec := Record{
		ID:               uuid.NewString(),
		RequestID:        requestID,
		PosterType:       req.Type(),
		AspectRatio:      payload.RequestedAspectRatio,
		ModelAspectRatio: payload.AspectRatio,
		HasImage:         payload.HasSubject,
		HasQRCode:        payload.HasQRCode,
		Attempts:         res.Attempts,
		Duration:         elapsed,
		CreatedAt:        start.UTC(),
	}
	if err != nil {
		rec.Kind = KindOf(err)
		rec.Error = err.Error()
	}
	if recErr := s.recorder.Record(ctx, rec); recErr != nil {
		s.logger.Warn().Err(recErr).Str("request_id", requestID).Msg("failed to record generation")
	}

	if err != nil {
		s.logger.Error().Err(err).
			Str("request_id", requestID).
			Str("kind", string(rec.Kind)).
			Int("attempts", res.Attempts).
			Msg("poster generation failed")
		return nil, err
	}
	s.logger.Info().
		Str("request_id", requestID).
		Str("type", string(rec.PosterType)).
		Int("attempts", res.Attempts).
		Dur("duration", elapsed).
		Msg("poster generated")
	return &Outcome{Image: res.Image, Attempts: res.Attempts, Duration: elapsed}, nil
}
