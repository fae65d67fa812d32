package generation

import (
	"context"

	"posterstudio/internal/poster"
	"posterstudio/internal/prompt"
)

type FinishReason string

const (
	FinishReasonStop   FinishReason = "STOP"
	FinishReasonSafety FinishReason = "SAFETY"
)

// Part is one piece of model output. Exactly one of Text or Data is set.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

type Candidate struct {
	FinishReason FinishReason
	Parts        []Part
}

// Response is the provider-neutral model reply.
type Response struct {
	Candidates []Candidate
}

// Model performs a single generation round trip. Implementations report
// quota exhaustion as an *Error of KindRateLimited.
type Model interface {
	Generate(ctx context.Context, payload prompt.Payload) (*Response, error)
}

// FirstImage extracts the image of the first candidate.
func (r *Response) FirstImage() (*poster.Image, error) {
	if r == nil || len(r.Candidates) == 0 {
		return nil, NewError(KindEmptyResponse, ErrNoCandidate)
	}
	c := r.Candidates[0]
	if c.FinishReason == FinishReasonSafety {
		return nil, NewError(KindSafetyBlocked, ErrSafetyBlocked)
	}
	for _, part := range c.Parts {
		if len(part.Data) == 0 {
			continue
		}
		// The image is always labelled PNG regardless of what the model
		// reports.
		return &poster.Image{MIMEType: "image/png", Data: part.Data}, nil
	}
	return nil, NewError(KindEmptyResponse, ErrNoImageData)
}
