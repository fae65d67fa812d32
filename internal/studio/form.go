package studio

import (
	"encoding/json"

	"posterstudio/internal/poster"
)

// Form is the poster request being edited.
type Form = poster.Request

type snapshotJSON struct {
	Form           poster.Wire `json:"form"`
	GeneratedImage string      `json:"generatedImage,omitempty"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{Form: s.Form.Wire(), GeneratedImage: s.GeneratedImage})
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	form, err := poster.FromWire(raw.Form)
	if err != nil {
		return err
	}
	s.Form = form
	s.GeneratedImage = raw.GeneratedImage
	return nil
}
