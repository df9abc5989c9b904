package translatable_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	translatable "github.com/goliatone/go-translatable"
)

func newModule(t *testing.T) *translatable.Module {
	t.Helper()
	cfg := translatable.DefaultConfig()
	cfg.Locales = []string{"en", "fr", "es"}
	cfg.Storage = translatable.StorageConfig{}
	cfg.Features.Commands = true

	module, err := translatable.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleSeedAndRead(t *testing.T) {
	module := newModule(t)
	fx, err := translatable.DefaultFixture()
	if err != nil {
		t.Fatalf("DefaultFixture() error = %v", err)
	}
	created, err := module.Seed(translatable.WithLocale(context.Background(), "en"), fx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	var (
		mu     sync.Mutex
		misses []translatable.NotFoundEvent
	)
	module.OnMissingTranslation(func(_ context.Context, evt translatable.NotFoundEvent) {
		mu.Lock()
		defer mu.Unlock()
		misses = append(misses, evt)
	})

	esCtx := translatable.WithLocale(context.Background(), "es")
	post, err := module.Posts().Get(esCtx, created[0].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if body, _ := post.GetString(esCtx, "body"); body != "Hola, mundo" {
		t.Fatalf("expected spanish body, got %q", body)
	}
	if slug, _ := post.GetString(esCtx, "slug"); slug != "hello-world" {
		t.Fatalf("expected native slug fallback, got %q", slug)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(misses) != 1 || misses[0].Attribute != "slug" || misses[0].Locale != "es" {
		t.Fatalf("expected one missing slug event, got %+v", misses)
	}
}

func TestModuleRejectsUndeclaredAttribute(t *testing.T) {
	module := newModule(t)
	ctx := translatable.WithLocale(context.Background(), "en")
	post, err := module.Posts().Create(ctx, translatable.CreatePostRequest{Slug: "hello", Body: "Hello"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = post.Capability().Translate(ctx, "title", "Titre", "fr")
	if !errors.Is(err, translatable.ErrNotTranslatableAttribute) {
		t.Fatalf("expected ErrNotTranslatableAttribute, got %v", err)
	}
	var typed *translatable.NotTranslatableAttributeError
	if !errors.As(err, &typed) || typed.Attribute != "title" {
		t.Fatalf("expected typed error naming the attribute, got %v", err)
	}
}

func TestModuleCommandsAndSettings(t *testing.T) {
	module := newModule(t)
	ctx := translatable.WithLocale(context.Background(), "en")
	post, err := module.Posts().Create(ctx, translatable.CreatePostRequest{Slug: "hello", Body: "Hello"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	value := "Bonjour"
	if err := module.TranslateHandler().Execute(ctx, translatable.TranslateCommand{
		PostID: post.ID, Attribute: "body", Locale: "fr", Value: &value,
	}); err != nil {
		t.Fatalf("translate: %v", err)
	}

	if _, err := module.UpdateSettings(ctx, translatable.Settings{AutoLoad: false, AutoSave: true}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for module.Settings().AutoLoad {
		if time.Now().After(deadline) {
			t.Fatal("settings change was not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	frCtx := translatable.WithLocale(context.Background(), "fr")
	fresh, err := module.Posts().Get(frCtx, post.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if body, _ := fresh.GetString(frCtx, "body"); body != "Hello" {
		t.Fatalf("expected native body with auto-load off, got %q", body)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := translatable.DefaultConfig()
	cfg.Locales = []string{"fr"}
	if _, err := translatable.New(context.Background(), cfg); !errors.Is(err, translatable.ErrDefaultLocaleNotListed) {
		t.Fatalf("expected ErrDefaultLocaleNotListed, got %v", err)
	}
}
