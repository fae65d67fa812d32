package poster

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Normalize trims every text field and folds it to NFC so names typed on
// different keyboards render identically in the prompt.
func Normalize(r Request) Request {
	r.Theme = clean(r.Theme)
	r.Name = clean(r.Name)
	r.Age = clean(r.Age)
	r.Year = clean(r.Year)
	r.FontStyle = clean(r.FontStyle)
	r.QRCodeURL = strings.TrimSpace(r.QRCodeURL)

	switch o := r.Occasion.(type) {
	case Birthday:
		o.Date = clean(o.Date)
		r.Occasion = o
	case Festival:
		o.FestivalName = clean(o.FestivalName)
		r.Occasion = o
	case Anniversary:
		o.HusbandName = clean(o.HusbandName)
		o.WifeName = clean(o.WifeName)
		o.Theme = clean(o.Theme)
		o.Date = clean(o.Date)
		r.Occasion = o
	case Custom:
		o.Template = clean(o.Template)
		r.Occasion = o
	case Movie:
		o.Genre = clean(o.Genre)
		o.Tagline = clean(o.Tagline)
		o.Template = clean(o.Template)
		r.Occasion = o
	}
	return r
}
