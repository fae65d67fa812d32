package poster

import "fmt"

// Request is everything the user filled in for one poster.
type Request struct {
	Occasion    Occasion
	AspectRatio AspectRatio
	Image       *Image
	// Theme is the free-text description. An empty theme is replaced by the
	// type's default when the prompt is built.
	Theme     string
	Name      string
	Age       string
	Year      string
	FontStyle string
	QRCodeURL string
}

// NewRequest returns an empty request of type t in the default frame.
func NewRequest(t Type) Request {
	return Request{Occasion: NewOccasion(t), AspectRatio: DefaultAspectRatio}
}

func (r Request) Type() Type {
	if r.Occasion == nil {
		return TypeBirthday
	}
	return r.Occasion.Type()
}

// WithType switches the request to type t. Fields that belong only to the
// previous type are dropped; the shared fields and the custom date (when both
// types carry one) are kept.
func (r Request) WithType(t Type) Request {
	if r.Occasion != nil && r.Occasion.Type() == t {
		return r
	}
	date := occasionDate(r.Occasion)
	r.Occasion = withDate(NewOccasion(t), date)
	return r
}

// Validate checks the structural fields. The image is checked separately by
// callers that require one.
func (r Request) Validate() error {
	if r.Occasion == nil {
		return fmt.Errorf("%w: missing occasion", ErrUnknownType)
	}
	if _, err := ParseType(string(r.Occasion.Type())); err != nil {
		return err
	}
	if _, err := ParseAspectRatio(string(r.AspectRatio)); err != nil {
		return err
	}
	return nil
}

// RequireImage reports ErrMissingImage when no subject photo is attached.
func (r Request) RequireImage() error {
	if r.Image == nil || len(r.Image.Data) == 0 {
		return ErrMissingImage
	}
	return nil
}
