package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

const DefaultWatermark = "DS"

// Attachment is an image sent alongside the instruction text.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Payload is the model-ready form of a poster request. Attachments are
// ordered: the subject photo first when present, then the QR code.
type Payload struct {
	Text                 string
	Attachments          []Attachment
	AspectRatio          poster.AspectRatio
	RequestedAspectRatio poster.AspectRatio
	HasSubject           bool
	HasQRCode            bool
}

// QRRenderer turns an arbitrary string into a QR code image.
type QRRenderer interface {
	Render(ctx context.Context, target string) (*poster.Image, error)
}

// Options controls how the Builder is configured.
type Options struct {
	QR        QRRenderer
	Watermark string
	Logger    *infra.Logger
}

// Builder assembles the instruction text and attachments. It never fails:
// a QR code that cannot be rendered is logged and left out.
type Builder struct {
	qr        QRRenderer
	watermark string
	logger    zerolog.Logger
}

func NewBuilder(opts Options) *Builder {
	b := &Builder{qr: opts.QR, watermark: opts.Watermark, logger: zerolog.Nop()}
	if b.watermark == "" {
		b.watermark = DefaultWatermark
	}
	if opts.Logger != nil {
		b.logger = opts.Logger.With().Str("component", "prompt").Logger()
	}
	return b
}

func (b *Builder) Build(ctx context.Context, req poster.Request) Payload {
	p := Payload{
		RequestedAspectRatio: req.AspectRatio,
		AspectRatio:          req.AspectRatio.ModelRatio(),
	}

	if req.Image != nil && len(req.Image.Data) > 0 {
		p.Attachments = append(p.Attachments, Attachment{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
		p.HasSubject = true
	}
	if url := strings.TrimSpace(req.QRCodeURL); url != "" && b.qr != nil {
		img, err := b.qr.Render(ctx, url)
		if err != nil {
			b.logger.Warn().Err(err).Msg("qr code unavailable, continuing without it")
		} else if img != nil && len(img.Data) > 0 {
			p.Attachments = append(p.Attachments, Attachment{MIMEType: img.MIMEType, Data: img.Data})
			p.HasQRCode = true
		}
	}

	p.Text = b.text(req, p)
	return p
}

func (b *Builder) text(req poster.Request, p Payload) string {
	var sb strings.Builder
	put := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
	}

	t := req.Type()
	if t == poster.TypeMovie {
		put("Create a high-quality, cinematic movie poster. ")
	} else {
		put("Create a high-quality, professional poster for a %s celebration. ", t)
	}

	festival, _ := req.Occasion.(poster.Festival)
	switch {
	case festival.FestivalName != "":
		put("Occasion: %s. Use traditional elements. Text: \"Happy %s\". ", festival.FestivalName, festival.FestivalName)
	case t != poster.TypeMovie:
		put("Theme: %s. ", req.EffectiveTheme())
	}

	switch o := req.Occasion.(type) {
	case poster.Anniversary:
		if o.Theme != "" {
			put("Theme: %s. Authentic traditional elements. ", o.Theme)
		}
	case poster.Custom:
		if o.Template != "" {
			put("Template: %q. ", o.Template)
		}
	case poster.Movie:
		if o.Genre != "" {
			put("GENRE: %s. ", o.Genre)
		}
		if o.Template != "" {
			put("STYLE: %s. ", o.Template)
		}
	case poster.Birthday:
		put("Include \"Happy Birthday\". ")
	}

	if req.Name != "" {
		put("Feature name %q prominently. ", req.Name)
	}
	if o, ok := req.Occasion.(poster.Anniversary); ok && o.HusbandName != "" && o.WifeName != "" {
		put("Feature names: \"%s Weds %s\". ", o.HusbandName, o.WifeName)
		if o.Theme == poster.AnniversaryTheme {
			put("Text: \"Happy Marriage Anniversary\". ")
		} else {
			put("Text: \"Shubh Vivah\". ")
		}
	}
	if req.Age != "" {
		put("Highlight number %q. ", req.Age)
	}
	if date := dateOf(req.Occasion); date != "" {
		put("Include date %q. ", date)
	}
	if req.Year != "" {
		put("Include year %q. ", req.Year)
	}
	if o, ok := req.Occasion.(poster.Movie); ok && o.Tagline != "" {
		put("Include tagline %q. ", o.Tagline)
	}
	if req.FontStyle != "" {
		put("Use %q font. ", req.FontStyle)
	}

	if p.HasSubject {
		put("IMPORTANT: The FIRST attached image is the MAIN SUBJECT. Integrate it seamlessly. Do not cover faces. ")
	}
	put("Aspect Ratio: %s. Watermark %q bottom-right. ", p.RequestedAspectRatio, b.watermark)
	if p.HasQRCode {
		put("Include the %s image (QR Code) in a corner clearly. ", ordinal(len(p.Attachments)))
	}

	return strings.TrimSpace(sb.String())
}

func dateOf(o poster.Occasion) string {
	switch v := o.(type) {
	case poster.Birthday:
		return v.Date
	case poster.Anniversary:
		return v.Date
	}
	return ""
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "FIRST"
	case 2:
		return "SECOND"
	default:
		return fmt.Sprintf("#%d", n)
	}
}
