package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"posterstudio/internal/poster"
	"posterstudio/internal/studio/kv"
)

type sessionJSON struct {
	Current Snapshot   `json:"current"`
	Past    []Snapshot `json:"past"`
	Future  []Snapshot `json:"future"`
}

// addToHistory is a no-op when the user disabled history. If storage is
// full the new entry is kept without its image; if even that fails the
// history is left as it was.
func (s *Studio) addToHistory(ctx context.Context, req poster.Request, img string) {
	if s.profile != nil && !s.profile.Settings.SaveHistory {
		return
	}
	item := HistoryItem{ID: s.newID(), CreatedAt: s.now().UTC(), Request: req, Image: img}
	next := prependHistory(item, s.history)
	err := s.putJSON(ctx, KeyHistory, next)
	if errors.Is(err, kv.ErrQuotaExceeded) {
		next[0].Image = ""
		err = s.putJSON(ctx, KeyHistory, next)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("history not saved")
		return
	}
	s.history = next
}

func (s *Studio) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Set(ctx, key, string(b))
}

// History returns the saved generations, newest first.
func (s *Studio) History() []HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}

// LoadHistoryItem restores a past generation into the editor.
func (s *Studio) LoadHistoryItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.history {
		if h.ID == id {
			s.record()
			s.form = h.Request
			s.generated = h.Image
			s.errMsg = ""
			return nil
		}
	}
	return ErrHistoryItemNotFound
}

func (s *Studio) DeleteHistoryItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]HistoryItem, 0, len(s.history))
	for _, h := range s.history {
		if h.ID != id {
			next = append(next, h)
		}
	}
	if len(next) == len(s.history) {
		return ErrHistoryItemNotFound
	}
	if err := s.putJSON(ctx, KeyHistory, next); err != nil {
		return err
	}
	s.history = next
	return nil
}

func (s *Studio) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(ctx, KeyHistory); err != nil {
		return err
	}
	s.history = nil
	s.notify("History cleared.")
	return nil
}

// ExportHistory returns the history as indented JSON.
func (s *Studio) ExportHistory() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.history
	if items == nil {
		items = []HistoryItem{}
	}
	return json.MarshalIndent(items, "", "  ")
}

// SaveDraft stores the form. When storage is full it retries without the
// subject photo.
func (s *Studio) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := s.form
	err := s.putJSON(ctx, KeyDraft, draft.Wire())
	if errors.Is(err, kv.ErrQuotaExceeded) && draft.Image != nil {
		draft.Image = nil
		err = s.putJSON(ctx, KeyDraft, draft.Wire())
		if err == nil {
			s.notify("Draft saved without the photo (storage full).")
			return nil
		}
	}
	if err != nil {
		s.errMsg = MessageDraftFull
		return err
	}
	s.notify("Draft saved.")
	return nil
}

// LoadDraft replaces the form with the saved draft. It reports false when
// there is none.
func (s *Studio) LoadDraft(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.store.Get(ctx, KeyDraft)
	if err != nil || !ok {
		return false, err
	}
	var w poster.Wire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return false, fmt.Errorf("decode draft: %w", err)
	}
	form, err := poster.FromWire(w)
	if err != nil {
		return false, fmt.Errorf("decode draft: %w", err)
	}
	s.record()
	s.form = form
	s.notify("Draft loaded.")
	return true, nil
}

func (s *Studio) HasDraft(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Get(ctx, KeyDraft)
	return ok, err
}

// Profile returns a copy of the profile, or nil before one is created.
func (s *Studio) Profile() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// CreateProfile starts a profile with default settings. An empty name
// creates a guest.
func (s *Studio) CreateProfile(ctx context.Context, name, email, phone string) (*Profile, error) {
	p := Profile{
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		JoinedAt:    s.now().UTC(),
		Settings:    DefaultSettings(),
	}
	if p.Name == "" {
		p.Name = "Guest"
		p.IsGuest = true
	}
	if err := s.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Studio) SaveProfile(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putJSON(ctx, KeyProfile, p); err != nil {
		return err
	}
	s.profile = &p
	return nil
}

// Logout forgets the profile. History and drafts stay.
func (s *Studio) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(ctx, KeyProfile); err != nil {
		return err
	}
	s.profile = nil
	return nil
}

func (s *Studio) ToggleSetting(ctx context.Context, name Setting) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return false, errors.New("no profile")
	}
	p := *s.profile
	v, err := p.Settings.Toggle(name)
	if err != nil {
		return false, err
	}
	if err := s.putJSON(ctx, KeyProfile, p); err != nil {
		return false, err
	}
	s.profile = &p
	return v, nil
}

// CheckVersion records the running version. A first run just stores it; a
// different stored version marks an update as available.
func (s *Studio) CheckVersion(ctx context.Context) error {
	stored, ok, err := s.store.Get(ctx, KeyVersion)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		return s.store.Set(ctx, KeyVersion, s.version)
	}
	s.updateAvailable = stored != s.version
	return nil
}

func (s *Studio) UpdateAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateAvailable
}

// ApplyUpdate stores the running version and clears the update flag.
func (s *Studio) ApplyUpdate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, KeyVersion, s.version); err != nil {
		return err
	}
	s.updateAvailable = false
	return nil
}

// Reset wipes all stored state and starts over with an empty form.
func (s *Studio) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.form = poster.NewRequest(poster.TypeBirthday)
	s.generated = ""
	s.errMsg = ""
	s.history = nil
	s.profile = nil
	s.updateAvailable = false
	s.timeline = NewTimeline(s.undoLimit)
	return s.store.Set(ctx, KeyVersion, s.version)
}

// SaveSession persists the editor state and undo stacks so a later Open
// resumes where this one stopped.
func (s *Studio) SaveSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := sessionJSON{Current: s.snapshot(), Past: s.timeline.past, Future: s.timeline.future}
	return s.putJSON(ctx, KeySession, sess)
}
