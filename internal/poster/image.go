package poster

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

const defaultImageMIME = "image/jpeg"

var dataURLMIME = regexp.MustCompile(`^data:([a-zA-Z0-9]+/[a-zA-Z0-9\-.+]+)`)

// Image is decoded image bytes plus their media type. Values are treated as
// immutable once built so snapshots may share them.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string. When the
// header carries no recognisable media type the image is assumed to be JPEG.
func ParseDataURL(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return nil, ErrInvalidImage
	}
	header, payload := s[:idx], strings.TrimSpace(s[idx+1:])
	if payload == "" {
		return nil, ErrInvalidImage
	}

	mime := defaultImageMIME
	if m := dataURLMIME.FindStringSubmatch(header); len(m) == 2 {
		mime = m[1]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return &Image{MIMEType: mime, Data: data}, nil
}

// DataURL encodes the image back into a base64 data URL.
func (i *Image) DataURL() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	mime := i.MIMEType
	if mime == "" {
		mime = defaultImageMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Extension returns a file extension for the media type, including the dot.
func (i *Image) Extension() string {
	if i == nil {
		return ".bin"
	}
	switch strings.ToLower(i.MIMEType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
