package poster

// AnniversaryTheme is the marriage theme that switches the greeting from a
// wedding to an anniversary.
const AnniversaryTheme = "Marriage Anniversary"

// Occasion carries the fields that only make sense for a single poster type.
// Switching type replaces the occasion, so fields of another type can never
// leak into a request.
type Occasion interface {
	Type() Type
	isOccasion()
}

type Birthday struct {
	Date string
}

type Festival struct {
	FestivalName string
}

type Anniversary struct {
	HusbandName string
	WifeName    string
	Theme       string
	Date        string
}

// Custom is a free-form poster with an optional template description.
type Custom struct {
	Template string
}

type Movie struct {
	Genre    string
	Tagline  string
	Template string
}

func (Birthday) Type() Type    { return TypeBirthday }
func (Festival) Type() Type    { return TypeFestival }
func (Anniversary) Type() Type { return TypeAnniversary }
func (Custom) Type() Type      { return TypeCustom }
func (Movie) Type() Type       { return TypeMovie }

func (Birthday) isOccasion()    {}
func (Festival) isOccasion()    {}
func (Anniversary) isOccasion() {}
func (Custom) isOccasion()      {}
func (Movie) isOccasion()       {}

// NewOccasion returns the empty occasion for t. Unknown types fall back to a
// birthday.
func NewOccasion(t Type) Occasion {
	switch t {
	case TypeFestival:
		return Festival{}
	case TypeAnniversary:
		return Anniversary{}
	case TypeCustom:
		return Custom{}
	case TypeMovie:
		return Movie{}
	default:
		return Birthday{}
	}
}

// occasionDate returns the custom date carried by birthday and anniversary
// occasions.
func occasionDate(o Occasion) string {
	switch v := o.(type) {
	case Birthday:
		return v.Date
	case Anniversary:
		return v.Date
	}
	return ""
}

func withDate(o Occasion, date string) Occasion {
	switch v := o.(type) {
	case Birthday:
		v.Date = date
		return v
	case Anniversary:
		v.Date = date
		return v
	}
	return o
}
