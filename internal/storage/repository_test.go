package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "fedi.db"))
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	return repo
}

func TestRepository_PreferencesDefaultAndRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("LoadPreferences returned error: %v", err)
	}
	if p != DefaultPreferences {
		t.Fatalf("expected defaults, got %+v", p)
	}

	want := Preferences{RelativeTime: false, ShowNumbers: false, Compact: true}
	if err := repo.SavePreferences(ctx, want); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	got, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("LoadPreferences returned error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected preferences: got %+v want %+v", got, want)
	}

	want.RelativeTime = true
	if err := repo.SavePreferences(ctx, want); err != nil {
		t.Fatalf("second SavePreferences returned error: %v", err)
	}
	got, _ = repo.LoadPreferences(ctx)
	if got != want {
		t.Fatalf("expected upsert, got %+v", got)
	}
}

func TestRepository_DraftsPerReplyTarget(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, ok, err := repo.LoadDraft(ctx, "alice@example.social", ""); err != nil || ok {
		t.Fatalf("expected no draft, got ok=%v err=%v", ok, err)
	}

	if err := repo.SaveDraft(ctx, Draft{Account: "alice@example.social", Content: "top level"}); err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
	if err := repo.SaveDraft(ctx, Draft{Account: "alice@example.social", InReplyToID: "42", Content: "@bob hi", Visibility: "unlisted"}); err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
	if err := repo.SaveDraft(ctx, Draft{Account: "alice@example.social", InReplyToID: "42", Content: "@bob hello", Visibility: "unlisted"}); err != nil {
		t.Fatalf("SaveDraft upsert returned error: %v", err)
	}

	reply, ok, err := repo.LoadDraft(ctx, "alice@example.social", "42")
	if err != nil || !ok {
		t.Fatalf("expected reply draft, got ok=%v err=%v", ok, err)
	}
	if reply.Content != "@bob hello" || reply.Visibility != "unlisted" || reply.UpdatedAt.IsZero() {
		t.Fatalf("unexpected reply draft: %+v", reply)
	}

	if err := repo.DeleteDraft(ctx, "alice@example.social", "42"); err != nil {
		t.Fatalf("DeleteDraft returned error: %v", err)
	}
	if _, ok, _ := repo.LoadDraft(ctx, "alice@example.social", "42"); ok {
		t.Fatal("expected reply draft to be deleted")
	}
	top, ok, _ := repo.LoadDraft(ctx, "alice@example.social", "")
	if !ok || top.Content != "top level" {
		t.Fatalf("expected top-level draft to remain, got %+v", top)
	}
	if _, ok, _ := repo.LoadDraft(ctx, "bob@example.social", ""); ok {
		t.Fatal("drafts must be scoped per account")
	}
}

func TestRepository_SaveDraftRequiresAccount(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.SaveDraft(context.Background(), Draft{Content: "x"}); err == nil {
		t.Fatal("expected error without account")
	}
}
