package studio

import (
	"fmt"
	"time"
)

// Settings are the user's preferences.
type Settings struct {
	Notifications       bool `json:"notifications"`
	HighQualityPreviews bool `json:"highQualityPreviews"`
	SaveHistory         bool `json:"saveHistory"`
	BiometricEnabled    bool `json:"biometricEnabled"`
}

func DefaultSettings() Settings {
	return Settings{Notifications: true, HighQualityPreviews: true, SaveHistory: true}
}

// Profile is the locally stored user profile.
type Profile struct {
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	JoinedAt       time.Time `json:"joinedAt"`
	Settings       Settings  `json:"settings"`
	IsGuest        bool      `json:"isGuest"`
}

// Setting names one toggle in Settings.
type Setting string

const (
	SettingNotifications       Setting = "notifications"
	SettingHighQualityPreviews Setting = "highQualityPreviews"
	SettingSaveHistory         Setting = "saveHistory"
	SettingBiometric           Setting = "biometricEnabled"
)

// Toggle flips the named setting and returns its new value.
func (s *Settings) Toggle(name Setting) (bool, error) {
	var p *bool
	switch name {
	case SettingNotifications:
		p = &s.Notifications
	case SettingHighQualityPreviews:
		p = &s.HighQualityPreviews
	case SettingSaveHistory:
		p = &s.SaveHistory
	case SettingBiometric:
		p = &s.BiometricEnabled
	default:
		return false, fmt.Errorf("unknown setting %q", name)
	}
	*p = !*p
	return *p, nil
}
