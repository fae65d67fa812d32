package poster

import "strings"

// DefaultTheme is the description used when the user leaves the theme empty.
func DefaultTheme(r Request) string {
	switch o := r.Occasion.(type) {
	case Festival:
		return "traditional decorations, glowing lights, patterns, and a culturally rich atmosphere."
	case Anniversary:
		return "elegant floral arrangements, soft lighting, golden accents, hearts, and a premium romantic atmosphere."
	case Custom:
		if t := strings.TrimSpace(o.Template); t != "" {
			return "A professional " + t + " poster design."
		}
		return "professional design with modern elements."
	case Movie:
		words := []string{"cinematic"}
		if g := strings.TrimSpace(o.Genre); g != "" {
			words = append(words, g)
		}
		words = append(words, "movie poster")
		s := strings.Join(words, " ")
		if t := strings.TrimSpace(o.Template); t != "" {
			s += " in style of " + t
		}
		return s + "."
	default:
		return "balloons, confetti, cake, and vibrant, cheerful colors."
	}
}

// EffectiveTheme returns the user's theme or the type default.
func (r Request) EffectiveTheme() string {
	if t := strings.TrimSpace(r.Theme); t != "" {
		return t
	}
	return DefaultTheme(r)
}
