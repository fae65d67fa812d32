package poster

import (
	"errors"
	"fmt"
	"strings"
)

// Type identifies the occasion a poster is made for. The string value is the
// wire representation shared with the browser client.
type Type string

const (
	TypeBirthday    Type = "Birthday"
	TypeFestival    Type = "Festival"
	TypeAnniversary Type = "Marriage"
	TypeCustom      Type = "Custom"
	TypeMovie       Type = "Movie"
)

// Types lists every supported poster type in display order.
var Types = []Type{TypeBirthday, TypeFestival, TypeAnniversary, TypeCustom, TypeMovie}

var (
	ErrUnknownType        = errors.New("unknown poster type")
	ErrUnknownAspectRatio = errors.New("unknown aspect ratio")
	ErrMissingImage       = errors.New("subject image is required")
	ErrInvalidImage       = errors.New("invalid image data url")
)

// ParseType accepts the wire value or a case-insensitive alias.
func ParseType(v string) (Type, error) {
	s := strings.TrimSpace(v)
	for _, t := range Types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	if strings.EqualFold(s, "anniversary") {
		return TypeAnniversary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, v)
}

// Label is the human facing name of the type.
func (t Type) Label() string {
	if t == TypeAnniversary {
		return "Anniversary"
	}
	return string(t)
}

// AspectRatio is the frame the user picked.
type AspectRatio string

const (
	RatioSquare    AspectRatio = "1:1"
	RatioPortrait  AspectRatio = "9:16"
	RatioLandscape AspectRatio = "16:9"
	RatioStandard  AspectRatio = "4:3"
	RatioTall      AspectRatio = "3:4"
	RatioPrintWide AspectRatio = "6:4"
	RatioPrintTall AspectRatio = "4:6"
)

const DefaultAspectRatio = RatioPortrait

// AspectRatios lists every ratio the user can choose.
var AspectRatios = []AspectRatio{
	RatioSquare, RatioPortrait, RatioLandscape, RatioStandard, RatioTall, RatioPrintWide, RatioPrintTall,
}

func ParseAspectRatio(v string) (AspectRatio, error) {
	s := strings.TrimSpace(v)
	for _, r := range AspectRatios {
		if s == string(r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAspectRatio, v)
}

// ModelRatio maps print ratios onto the closest ratio the image model
// accepts. 6:4 becomes 4:3 and 4:6 becomes 3:4; everything else passes
// through unchanged.
func (r AspectRatio) ModelRatio() AspectRatio {
	switch r {
	case RatioPrintWide:
		return RatioStandard
	case RatioPrintTall:
		return RatioTall
	default:
		return r
	}
}
