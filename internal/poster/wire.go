package poster

// Wire is the flat JSON shape exchanged with clients and stored in history.
// Every text field is always present; absent values are empty strings.
type Wire struct {
	Prompt         string `json:"prompt" yaml:"prompt"`
	Type           string `json:"type" yaml:"type"`
	AspectRatio    string `json:"aspectRatio" yaml:"aspectRatio"`
	UserImage      string `json:"userImage,omitempty" yaml:"userImage,omitempty"`
	Age            string `json:"age" yaml:"age"`
	Year           string `json:"year" yaml:"year"`
	CustomDate     string `json:"customDate" yaml:"customDate"`
	Name           string `json:"name" yaml:"name"`
	FestivalName   string `json:"festivalName" yaml:"festivalName"`
	HusbandName    string `json:"husbandName" yaml:"husbandName"`
	WifeName       string `json:"wifeName" yaml:"wifeName"`
	MarriageTheme  string `json:"marriageTheme" yaml:"marriageTheme"`
	CustomTemplate string `json:"customTemplate" yaml:"customTemplate"`
	MovieGenre     string `json:"movieGenre" yaml:"movieGenre"`
	MovieTagline   string `json:"movieTagline" yaml:"movieTagline"`
	MovieTemplate  string `json:"movieTemplate" yaml:"movieTemplate"`
	FontStyle      string `json:"fontStyle" yaml:"fontStyle"`
	QRCodeURL      string `json:"qrCodeUrl" yaml:"qrCodeUrl"`
}

// Wire flattens the request.
func (r Request) Wire() Wire {
	w := Wire{
		Prompt:      r.Theme,
		Type:        string(r.Type()),
		AspectRatio: string(r.AspectRatio),
		UserImage:   r.Image.DataURL(),
		Age:         r.Age,
		Year:        r.Year,
		Name:        r.Name,
		FontStyle:   r.FontStyle,
		QRCodeURL:   r.QRCodeURL,
	}
	switch o := r.Occasion.(type) {
	case Birthday:
		w.CustomDate = o.Date
	case Festival:
		w.FestivalName = o.FestivalName
	case Anniversary:
		w.HusbandName = o.HusbandName
		w.WifeName = o.WifeName
		w.MarriageTheme = o.Theme
		w.CustomDate = o.Date
	case Custom:
		w.CustomTemplate = o.Template
	case Movie:
		w.MovieGenre = o.Genre
		w.MovieTagline = o.Tagline
		w.MovieTemplate = o.Template
	}
	return w
}

// FromWire rebuilds a request. Fields belonging to other poster types are
// ignored. An empty type defaults to Birthday and an empty ratio to 9:16.
func FromWire(w Wire) (Request, error) {
	t := TypeBirthday
	if w.Type != "" {
		parsed, err := ParseType(w.Type)
		if err != nil {
			return Request{}, err
		}
		t = parsed
	}
	ratio := DefaultAspectRatio
	if w.AspectRatio != "" {
		parsed, err := ParseAspectRatio(w.AspectRatio)
		if err != nil {
			return Request{}, err
		}
		ratio = parsed
	}

	req := Request{
		AspectRatio: ratio,
		Theme:       w.Prompt,
		Name:        w.Name,
		Age:         w.Age,
		Year:        w.Year,
		FontStyle:   w.FontStyle,
		QRCodeURL:   w.QRCodeURL,
	}
	if w.UserImage != "" {
		img, err := ParseDataURL(w.UserImage)
		if err != nil {
			return Request{}, err
		}
		req.Image = img
	}

	switch t {
	case TypeFestival:
		req.Occasion = Festival{FestivalName: w.FestivalName}
	case TypeAnniversary:
		req.Occasion = Anniversary{
			HusbandName: w.HusbandName,
			WifeName:    w.WifeName,
			Theme:       w.MarriageTheme,
			Date:        w.CustomDate,
		}
	case TypeCustom:
		req.Occasion = Custom{Template: w.CustomTemplate}
	case TypeMovie:
		req.Occasion = Movie{Genre: w.MovieGenre, Tagline: w.MovieTagline, Template: w.MovieTemplate}
	default:
		req.Occasion = Birthday{Date: w.CustomDate}
	}
	return req, nil
}
