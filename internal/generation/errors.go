package generation

import (
	"errors"
	"net/http"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindSafetyBlocked Kind = "safety_blocked"
	KindRateLimited   Kind = "rate_limited"
	KindEmptyResponse Kind = "empty_response"
	KindTransport     Kind = "transport"
	KindConfiguration Kind = "configuration"
)

var (
	ErrSafetyBlocked = errors.New("safety block: image blocked due to content filters")
	ErrNoCandidate   = errors.New("empty response from AI")
	ErrNoImageData   = errors.New("no image data found in response")
	ErrQuotaExceeded = errors.New("server busy (quota exceeded), please wait 1 minute and try again")
	ErrMissingAPIKey = errors.New("server configuration error: API key missing")
)

// Error is a classified failure. Err keeps the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err. Unclassified errors count as
// transport failures; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindTransport
}

// HTTPStatus is the response status used when a failure of kind k reaches an
// HTTP client.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindSafetyBlocked:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ParseKind maps a wire value back to a Kind. Unknown values become
// transport failures.
func ParseKind(s string) Kind {
	switch k := Kind(s); k {
	case KindSafetyBlocked, KindRateLimited, KindEmptyResponse, KindTransport, KindConfiguration:
		return k
	}
	return KindTransport
}
