package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// openTestStore opens a fresh, fully migrated database in a temp dir.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTranslationsInSaveOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	for i, text := range []string{"Hello", "Thank you", "Love"} {
		if err := store.AddTranslation(ctx, text, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("AddTranslation: %v", err)
		}
	}

	got, err := store.Translations(ctx)
	if err != nil {
		t.Fatalf("Translations: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d translations, want 3", len(got))
	}
	if got[0].Text != "Hello" || got[2].Text != "Love" {
		t.Errorf("order = %q, %q, %q", got[0].Text, got[1].Text, got[2].Text)
	}
	if !got[1].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("timestamp = %v", got[1].Timestamp)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("ids should be unique and set: %q %q", got[0].ID, got[1].ID)
	}
}

func TestTranslationsEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Translations(context.Background())
	if err != nil {
		t.Fatalf("Translations: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d translations, want 0", len(got))
	}
}

func TestDeleteTranslationByIndex(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, text := range []string{"Yes", "No", "Please"} {
		store.AddTranslation(ctx, text, now)
	}

	if err := store.DeleteTranslation(ctx, 1); err != nil {
		t.Fatalf("DeleteTranslation: %v", err)
	}
	got, _ := store.Translations(ctx)
	if len(got) != 2 || got[0].Text != "Yes" || got[1].Text != "Please" {
		t.Errorf("after delete: %+v", got)
	}

	for _, idx := range []int{-1, 2, 99} {
		if err := store.DeleteTranslation(ctx, idx); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeleteTranslation(%d) = %v, want ErrNotFound", idx, err)
		}
	}
}

func TestCreateUserAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	u := &User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Error("CreateUser should assign an ID")
	}

	got, err := store.UserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.Name != "Ada" || got.PasswordHash != "hash" {
		t.Errorf("user = %+v", got)
	}

	dup := &User{Name: "Other", Email: "ada@example.com", PasswordHash: "x"}
	if err := store.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate CreateUser = %v, want ErrDuplicateEmail", err)
	}

	if _, err := store.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing UserByEmail = %v, want ErrNotFound", err)
	}
}

func TestPreferences(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var theme string
	ok, err := store.Preference(ctx, PrefTheme, &theme)
	if err != nil || ok {
		t.Fatalf("unset preference = %v, %v", ok, err)
	}

	if err := store.SetPreference(ctx, PrefTheme, "dark"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if err := store.SetPreference(ctx, PrefTheme, "light"); err != nil {
		t.Fatalf("SetPreference overwrite: %v", err)
	}
	ok, err = store.Preference(ctx, PrefTheme, &theme)
	if err != nil || !ok || theme != "light" {
		t.Errorf("theme = %q (%v, %v), want light", theme, ok, err)
	}

	cu := CurrentUser{Name: "Ada", Email: "ada@example.com", LoggedInAt: time.Now().UTC()}
	store.SetPreference(ctx, PrefCurrentUser, cu)
	var back CurrentUser
	if ok, _ := store.Preference(ctx, PrefCurrentUser, &back); !ok || back.Email != cu.Email {
		t.Errorf("current user = %+v", back)
	}

	if err := store.DeletePreference(ctx, PrefCurrentUser); err != nil {
		t.Fatalf("DeletePreference: %v", err)
	}
	if ok, _ := store.Preference(ctx, PrefCurrentUser, &back); ok {
		t.Error("preference should be gone after delete")
	}
	if err := store.DeletePreference(ctx, "never-set"); err != nil {
		t.Errorf("deleting unset key = %v", err)
	}
}

func TestProgress(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.SetCompleted(ctx, "ada@example.com", "hello", true)
	store.SetCompleted(ctx, "ada@example.com", "love", true)
	store.SetCompleted(ctx, "ada@example.com", "hello", true)
	store.SetCompleted(ctx, "bob@example.com", "sad", true)

	got, err := store.CompletedGestures(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("CompletedGestures: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("completed = %v, want 2 entries", got)
	}

	store.SetCompleted(ctx, "ada@example.com", "love", false)
	got, _ = store.CompletedGestures(ctx, "ada@example.com")
	if _, ok := got["love"]; ok || len(got) != 1 {
		t.Errorf("after unmark: %v", got)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.sqlite")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.AddTranslation(ctx, "Family", time.Now())
	store.Close()

	store, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	got, _ := store.Translations(ctx)
	if len(got) != 1 || got[0].Text != "Family" {
		t.Errorf("after reopen: %+v", got)
	}
}
