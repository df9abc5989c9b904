package translationconfig

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepositoryCRUDEvents(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := repo.Get(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	settings := Settings{AutoLoad: true, AutoSave: true}
	if _, err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	assertEvent(t, events, ChangeCreated)

	if _, err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert() unchanged error = %v", err)
	}
	assertNoEvent(t, events)

	settings.AutoSave = false
	if _, err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	assertEvent(t, events, ChangeUpdated)

	fetched, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fetched != settings {
		t.Fatalf("Get() returned %+v, want %+v", fetched, settings)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, ChangeDeleted)

	if err := repo.Delete(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound on second delete, got %v", err)
	}
}

func TestStateOverridesAndWatch(t *testing.T) {
	off := false
	state := NewState(Settings{AutoLoad: true, AutoSave: true}, map[string]AttributeOverride{
		"post.slug": {AutoSave: &off},
	})

	if state.AutoSave("post", "slug") {
		t.Fatalf("expected override to disable auto save for post.slug")
	}
	if !state.AutoSave("post", "body") || !state.AutoLoad("post", "slug") {
		t.Fatalf("expected other switches to keep global values")
	}

	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := state.Watch(ctx, repo); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if _, err := repo.Upsert(ctx, Settings{AutoLoad: false, AutoSave: true}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	deadline := time.After(time.Second)
	for state.AutoLoad("post", "body") {
		select {
		case <-deadline:
			t.Fatal("expected watched change to disable auto load")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNilStateKeepsTranslationsOn(t *testing.T) {
	var state *State
	if !state.AutoLoad("post", "body") || !state.AutoSave("post", "body") {
		t.Fatalf("expected nil state to leave switches on")
	}
}

func assertEvent(t *testing.T, events <-chan ChangeEvent, want ChangeType) {
	t.Helper()
	select {
	case evt := <-events:
		if evt.Type != want {
			t.Fatalf("expected event %s, got %s", want, evt.Type)
		}
	default:
		t.Fatalf("expected event %s, got none", want)
	}
}

func assertNoEvent(t *testing.T, events <-chan ChangeEvent) {
	t.Helper()
	select {
	case evt := <-events:
		t.Fatalf("expected no event, got %s", evt.Type)
	default:
	}
}
