// Package studio holds the poster editor state: the form being edited with
// undo and redo, the generation history, drafts, the user profile and the
// app version marker. State is persisted in a Store.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"posterstudio/internal/generation"
	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
)

const (
	KeyHistory = "poster_history"
	KeyDraft   = "poster_current_draft"
	KeyProfile = "poster_user_profile"
	KeyVersion = "app_version"
	KeySession = "poster_session"

	DefaultVersion = "1.0.0"

	MessageMissingImage = "Please upload an image first."
	MessageDraftFull    = "Failed to save draft. Storage full."
)

var ErrGenerationInProgress = errors.New("a generation is already in progress")

// Store is the persistence the studio needs. kv.Memory and kv.SQLite
// implement it.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Generator turns a request into a poster data URL.
type Generator interface {
	Generate(ctx context.Context, req poster.Request) (string, error)
}

// Options controls how the Studio is configured.
type Options struct {
	Version   string
	UndoLimit int
	Now       func() time.Time
	NewID     func() string
	Logger    *infra.Logger
}

// Studio is safe for concurrent use. Only one generation runs at a time.
type Studio struct {
	mu sync.Mutex

	store   Store
	version string
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger

	form            Form
	generated       string
	errMsg          string
	notification    string
	history         []HistoryItem
	profile         *Profile
	updateAvailable bool
	generating      bool
	timeline        *Timeline
	undoLimit       int
}

// Open loads persisted state from store.
func Open(ctx context.Context, store Store, opts Options) (*Studio, error) {
	s := &Studio{
		store:     store,
		version:   opts.Version,
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    zerolog.Nop(),
		form:      poster.NewRequest(poster.TypeBirthday),
		undoLimit: opts.UndoLimit,
	}
	if s.version == "" {
		s.version = DefaultVersion
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "studio").Logger()
	}
	s.timeline = NewTimeline(s.undoLimit)

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	if err := s.CheckVersion(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Studio) load(ctx context.Context) error {
	if raw, ok, err := s.store.Get(ctx, KeyHistory); err != nil {
		return fmt.Errorf("load history: %w", err)
	} else if ok {
		var items []HistoryItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.logger.Warn().Err(err).Msg("discarding unreadable history")
		} else {
			if len(items) > HistoryLimit {
				items = items[:HistoryLimit]
			}
			s.history = items
		}
	}

	if raw, ok, err := s.store.Get(ctx, KeyProfile); err != nil {
		return fmt.Errorf("load profile: %w", err)
	} else if ok {
		var p Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.Warn().Err(err).Msg("discarding unreadable profile")
		} else {
			s.profile = &p
		}
	}

	if raw, ok, err := s.store.Get(ctx, KeySession); err != nil {
		return fmt.Errorf("load session: %w", err)
	} else if ok {
		var sess sessionJSON
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			s.logger.Warn().Err(err).Msg("discarding unreadable session")
		} else {
			s.form = sess.Current.Form
			s.generated = sess.Current.GeneratedImage
			s.timeline = NewTimeline(s.undoLimit)
			s.timeline.past = sess.Past
			s.timeline.future = sess.Future
		}
	}
	return nil
}

func (s *Studio) snapshot() Snapshot {
	return Snapshot{Form: s.form, GeneratedImage: s.generated}
}

func (s *Studio) restore(snap Snapshot) {
	s.form = snap.Form
	s.generated = snap.GeneratedImage
}

func (s *Studio) record() {
	s.timeline.Record(s.snapshot())
}

func (s *Studio) notify(msg string) {
	if s.profile != nil && !s.profile.Settings.Notifications {
		return
	}
	s.notification = msg
}

// Form returns the request being edited.
func (s *Studio) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// GeneratedImage is the data URL of the current poster, if any.
func (s *Studio) GeneratedImage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generated
}

// Error is the last user-facing error message.
func (s *Studio) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Notification returns and clears the pending notification.
func (s *Studio) Notification() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notification
	s.notification = ""
	return n
}

func (s *Studio) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.CanUndo()
}

func (s *Studio) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.CanRedo()
}

// SetType switches the poster type, dropping fields of the previous type.
func (s *Studio) SetType(t poster.Type) error {
	t, err := poster.ParseType(string(t))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.Type() == t {
		return nil
	}
	s.record()
	s.form = s.form.WithType(t)
	return nil
}

func (s *Studio) SetAspectRatio(r poster.AspectRatio) error {
	r, err := poster.ParseAspectRatio(string(r))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.AspectRatio == r {
		return nil
	}
	s.record()
	s.form.AspectRatio = r
	return nil
}

// SetImage attaches the subject photo. Nil removes it.
func (s *Studio) SetImage(img *poster.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record()
	s.form.Image = img
	s.errMsg = ""
}

// Edit applies fn to a copy of the form as one undoable step.
func (s *Studio) Edit(fn func(f *Form)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record()
	next := s.form
	fn(&next)
	s.form = next
}

// Replace swaps in a whole form, for example one loaded from a preset.
func (s *Studio) Replace(f Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record()
	s.form = f
}

func (s *Studio) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.timeline.Undo(s.snapshot())
	if ok {
		s.restore(prev)
	}
	return ok
}

func (s *Studio) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.timeline.Redo(s.snapshot())
	if ok {
		s.restore(next)
	}
	return ok
}

// Generate sends the current form to gen. Without a subject photo it fails
// before any network call. On success the poster is shown and added to the
// history; on failure the form is left untouched.
func (s *Studio) Generate(ctx context.Context, gen Generator) error {
	s.mu.Lock()
	if err := s.form.RequireImage(); err != nil {
		s.errMsg = MessageMissingImage
		s.mu.Unlock()
		return err
	}
	if s.generating {
		s.mu.Unlock()
		return ErrGenerationInProgress
	}
	s.record()
	s.generating = true
	s.generated = ""
	s.errMsg = ""
	req := s.form
	s.mu.Unlock()

	img, err := gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		s.errMsg = generation.UserMessage(err)
		s.logger.Warn().Err(err).Msg("generation failed")
		return err
	}
	s.generated = img
	s.addToHistory(ctx, req, img)
	s.notify("Poster generated successfully!")
	return nil
}
