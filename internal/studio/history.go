package studio

import (
	"encoding/json"
	"errors"
	"time"

	"posterstudio/internal/poster"
)

// HistoryLimit is the number of generations kept, newest first.
const HistoryLimit = 10

var ErrHistoryItemNotFound = errors.New("history item not found")

// HistoryItem is one past generation. Image is empty when it had to be
// dropped to fit storage.
type HistoryItem struct {
	ID        string
	CreatedAt time.Time
	Request   poster.Request
	Image     string
}

type historyItemJSON struct {
	ID             string      `json:"id"`
	Timestamp      int64       `json:"timestamp"`
	Request        poster.Wire `json:"request"`
	GeneratedImage *string     `json:"generatedImage"`
}

func (h HistoryItem) MarshalJSON() ([]byte, error) {
	raw := historyItemJSON{ID: h.ID, Timestamp: h.CreatedAt.UnixMilli(), Request: h.Request.Wire()}
	if h.Image != "" {
		img := h.Image
		raw.GeneratedImage = &img
	}
	return json.Marshal(raw)
}

func (h *HistoryItem) UnmarshalJSON(b []byte) error {
	var raw historyItemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	req, err := poster.FromWire(raw.Request)
	if err != nil {
		return err
	}
	*h = HistoryItem{ID: raw.ID, CreatedAt: time.UnixMilli(raw.Timestamp).UTC(), Request: req}
	if raw.GeneratedImage != nil {
		h.Image = *raw.GeneratedImage
	}
	return nil
}

// prependHistory puts item first and trims to HistoryLimit.
func prependHistory(item HistoryItem, history []HistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, HistoryLimit)
	out = append(out, item)
	for _, h := range history {
		if len(out) == HistoryLimit {
			break
		}
		out = append(out, h)
	}
	return out
}
