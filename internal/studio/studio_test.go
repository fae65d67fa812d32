package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"posterstudio/internal/generation"
	"posterstudio/internal/poster"
	"posterstudio/internal/studio/kv"
)

type stubGenerator struct {
	calls int
	image string
	err   error
}

func (g *stubGenerator) Generate(ctx context.Context, req poster.Request) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.image, nil
}

func openTestStudio(t *testing.T, store Store) *Studio {
	t.Helper()
	n := 0
	s, err := Open(context.Background(), store, Options{
		Now: func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func testImage() *poster.Image {
	return &poster.Image{MIMEType: "image/jpeg", Data: []byte("photo")}
}

func TestGenerateWithoutImageSkipsGenerator(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(0))
	gen := &stubGenerator{image: "data:image/png;base64,AAAA"}

	err := s.Generate(context.Background(), gen)
	if !errors.Is(err, poster.ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times", gen.calls)
	}
	if s.Error() != MessageMissingImage {
		t.Fatalf("unexpected error message %q", s.Error())
	}
}

func TestGenerateAddsHistoryNewestFirstCapped(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(0))
	s.SetImage(testImage())
	for i := 0; i < HistoryLimit+2; i++ {
		gen := &stubGenerator{image: fmt.Sprintf("img-%d", i)}
		if err := s.Generate(context.Background(), gen); err != nil {
			t.Fatalf("Generate %d: %v", i, err)
		}
	}
	h := s.History()
	if len(h) != HistoryLimit {
		t.Fatalf("expected %d items, got %d", HistoryLimit, len(h))
	}
	if h[0].Image != fmt.Sprintf("img-%d", HistoryLimit+1) {
		t.Fatalf("newest item not first: %q", h[0].Image)
	}
	if s.GeneratedImage() != h[0].Image {
		t.Fatalf("generated image not shown")
	}
}

func TestGenerateFailureSetsMessage(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(0))
	s.SetImage(testImage())
	gen := &stubGenerator{err: generation.NewError(generation.KindSafetyBlocked, generation.ErrSafetyBlocked)}

	if err := s.Generate(context.Background(), gen); err == nil {
		t.Fatalf("expected error")
	}
	if s.Error() != generation.MessageSafetyBlocked {
		t.Fatalf("unexpected message %q", s.Error())
	}
	if len(s.History()) != 0 {
		t.Fatalf("failed generation must not be recorded")
	}
}

func TestHistoryQuotaDropsNewImage(t *testing.T) {
	store := kv.NewMemory(2048)
	s := openTestStudio(t, store)
	s.SetImage(testImage())

	big := strings.Repeat("x", 4096)
	if err := s.Generate(context.Background(), &stubGenerator{image: big}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	h := s.History()
	if len(h) != 1 {
		t.Fatalf("expected one item, got %d", len(h))
	}
	if h[0].Image != "" {
		t.Fatalf("image should have been dropped")
	}
	if s.GeneratedImage() != big {
		t.Fatalf("poster should still be shown")
	}
}

func TestSaveHistoryDisabled(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(0))
	ctx := context.Background()
	if _, err := s.CreateProfile(ctx, "Asha", "", ""); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if v, err := s.ToggleSetting(ctx, SettingSaveHistory); err != nil || v {
		t.Fatalf("ToggleSetting = %v, %v", v, err)
	}
	s.SetImage(testImage())
	if err := s.Generate(ctx, &stubGenerator{image: "img"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(s.History()) != 0 {
		t.Fatalf("history should stay empty")
	}
}

func TestHistoryPersistsAcrossOpen(t *testing.T) {
	store := kv.NewMemory(0)
	s := openTestStudio(t, store)
	s.SetImage(testImage())
	if err := s.SetType(poster.TypeFestival); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if err := s.Generate(context.Background(), &stubGenerator{image: "img"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	reopened := openTestStudio(t, store)
	h := reopened.History()
	if len(h) != 1 || h[0].Request.Type() != poster.TypeFestival || h[0].Image != "img" {
		t.Fatalf("unexpected history %+v", h)
	}
	if err := reopened.LoadHistoryItem(h[0].ID); err != nil {
		t.Fatalf("LoadHistoryItem: %v", err)
	}
	if reopened.GeneratedImage() != "img" {
		t.Fatalf("history image not restored")
	}
	if err := reopened.DeleteHistoryItem(context.Background(), "missing"); !errors.Is(err, ErrHistoryItemNotFound) {
		t.Fatalf("expected ErrHistoryItemNotFound, got %v", err)
	}
}

func TestUndoRedoAcrossTypeChange(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(0))
	s.Edit(func(f *Form) { f.Name = "Ravi" })
	if err := s.SetType(poster.TypeMovie); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if s.Form().Type() != poster.TypeMovie {
		t.Fatalf("type not changed")
	}
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if s.Form().Type() != poster.TypeBirthday || s.Form().Name != "Ravi" {
		t.Fatalf("unexpected form after undo: %+v", s.Form())
	}
	if !s.Redo() || s.Form().Type() != poster.TypeMovie {
		t.Fatalf("redo did not restore movie type")
	}
	if s.CanRedo() {
		t.Fatalf("redo stack should be empty")
	}
}

func TestDraftFallsBackWithoutImage(t *testing.T) {
	store := kv.NewMemory(600)
	s := openTestStudio(t, store)
	ctx := context.Background()
	s.SetImage(&poster.Image{MIMEType: "image/jpeg", Data: []byte(strings.Repeat("p", 1024))})
	s.Edit(func(f *Form) { f.Name = "Meera" })

	if err := s.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	raw, ok, _ := store.Get(ctx, KeyDraft)
	if !ok {
		t.Fatalf("draft not stored")
	}
	var w poster.Wire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if w.UserImage != "" || w.Name != "Meera" {
		t.Fatalf("unexpected draft %+v", w)
	}

	s.Edit(func(f *Form) { f.Name = "" })
	if ok, err := s.LoadDraft(ctx); !ok || err != nil {
		t.Fatalf("LoadDraft = %v, %v", ok, err)
	}
	if s.Form().Name != "Meera" {
		t.Fatalf("draft not loaded")
	}
}

func TestDraftStorageFull(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(40))
	s.Edit(func(f *Form) { f.Name = strings.Repeat("n", 100) })
	if err := s.SaveDraft(context.Background()); !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if s.Error() != MessageDraftFull {
		t.Fatalf("unexpected message %q", s.Error())
	}
}

func TestCheckVersion(t *testing.T) {
	store := kv.NewMemory(0)
	ctx := context.Background()
	s, err := Open(ctx, store, Options{Version: "1.0.0"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.UpdateAvailable() {
		t.Fatalf("first run should not flag an update")
	}

	s, err = Open(ctx, store, Options{Version: "1.1.0"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.UpdateAvailable() {
		t.Fatalf("expected update flag")
	}
	if err := s.ApplyUpdate(ctx); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if v, _, _ := store.Get(ctx, KeyVersion); v != "1.1.0" {
		t.Fatalf("stored version %q", v)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := kv.NewMemory(0)
	ctx := context.Background()
	s := openTestStudio(t, store)
	s.Edit(func(f *Form) { f.Name = "First" })
	s.Edit(func(f *Form) { f.Name = "Second" })
	if err := s.SaveSession(ctx); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	r := openTestStudio(t, store)
	if r.Form().Name != "Second" {
		t.Fatalf("form not restored: %q", r.Form().Name)
	}
	if !r.Undo() || r.Form().Name != "First" {
		t.Fatalf("undo stack not restored")
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := kv.NewMemory(0)
	ctx := context.Background()
	s := openTestStudio(t, store)
	s.SetImage(testImage())
	_ = s.Generate(ctx, &stubGenerator{image: "img"})
	if _, err := s.CreateProfile(ctx, "", "", ""); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(s.History()) != 0 || s.Profile() != nil || s.Form().Image != nil {
		t.Fatalf("state not cleared")
	}
	if keys := store.Keys(); len(keys) != 1 || keys[0] != KeyVersion {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestNotificationsRespectSetting(t *testing.T) {
	s := openTestStudio(t, kv.NewMemory(0))
	ctx := context.Background()
	p, err := s.CreateProfile(ctx, "", "", "")
	if err != nil || !p.IsGuest {
		t.Fatalf("CreateProfile = %+v, %v", p, err)
	}
	if _, err := s.ToggleSetting(ctx, SettingNotifications); err != nil {
		t.Fatalf("ToggleSetting: %v", err)
	}
	if err := s.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if n := s.Notification(); n != "" {
		t.Fatalf("unexpected notification %q", n)
	}
}
