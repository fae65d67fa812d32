package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"posterstudio/internal/generation"
	"posterstudio/internal/middleware"
	"posterstudio/internal/poster"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgTooLarge      = "Request body too large. Please use a smaller image."
	msgMissingKey    = "Server configuration error: API Key missing."
	msgQuotaExceeded = "Server busy (Quota Exceeded). Please wait 1 minute and try again."
	msgSafetyBlocked = "Safety Block: Image blocked due to content filters."
	msgGeneric       = "Failed to generate poster"
)

type generateEnvelope struct {
	Request json.RawMessage `json:"request"`
}

type generateResponse struct {
	Image    string `json:"image"`
	Attempts int    `json:"attempts,omitempty"`
}

var errEmptyRequest = errors.New("request is required")

// Generate handles POST /api/generate.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	if a.Generator == nil {
		a.error(w, http.StatusInternalServerError, string(generation.KindConfiguration), msgMissingKey)
		return
	}

	req, err := decodeGenerateRequest(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", msgTooLarge)
			return
		}
		a.Logger.Debug().Err(err).Msg("invalid generate request")
		a.error(w, http.StatusBadRequest, "bad_request", invalidBodyMessage(err))
		return
	}

	rid := middleware.RequestIDFromContext(r.Context())
	out, err := a.Generator.Generate(r.Context(), rid, req)
	if err != nil {
		kind := generation.KindOf(err)
		a.error(w, kind.HTTPStatus(), string(kind), failureMessage(kind, err))
		return
	}
	a.json(w, http.StatusOK, generateResponse{Image: out.Image.DataURL(), Attempts: out.Attempts})
}

// decodeGenerateRequest accepts either a JSON object or a JSON string that
// itself contains the object.
func decodeGenerateRequest(body io.Reader) (poster.Request, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return poster.Request{}, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return poster.Request{}, err
		}
		raw = bytes.TrimSpace([]byte(inner))
	}

	var env generateEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return poster.Request{}, err
	}
	if len(env.Request) == 0 || bytes.Equal(env.Request, []byte("null")) {
		return poster.Request{}, errEmptyRequest
	}
	var wire poster.Wire
	if err := json.Unmarshal(env.Request, &wire); err != nil {
		return poster.Request{}, err
	}
	req, err := poster.FromWire(wire)
	if err != nil {
		return poster.Request{}, err
	}
	return poster.Normalize(req), nil
}

func invalidBodyMessage(err error) string {
	switch {
	case errors.Is(err, poster.ErrUnknownType),
		errors.Is(err, poster.ErrUnknownAspectRatio),
		errors.Is(err, poster.ErrInvalidImage):
		return fmt.Sprintf("%s: %v", msgInvalidBody, err)
	}
	return msgInvalidBody
}

func failureMessage(kind generation.Kind, err error) string {
	switch kind {
	case generation.KindRateLimited:
		return msgQuotaExceeded
	case generation.KindSafetyBlocked:
		return msgSafetyBlocked
	case generation.KindConfiguration:
		return msgMissingKey
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return msgGeneric
}
