package translationcmd

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-translatable/internal/commands"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/posts"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/internal/translations/translationstest"
	"github.com/goliatone/go-translatable/internal/translator"
)

// Subscriptions go through the process-wide dispatcher registry, so these
// tests do not run in parallel.

func newDispatchService(t *testing.T) (posts.Service, *translationstest.Repository) {
	t.Helper()
	repo := translationstest.Wrap(translations.NewMemoryRepository())
	resolver := locale.NewResolver(locale.Config{DefaultLocale: "en", Locales: []string{"en", "fr"}})
	tr, err := translator.NewService(repo, translator.WithResolver(resolver))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return posts.NewService(posts.NewMemoryRepository(), tr), repo
}

func TestDispatchedTranslateRetriesTransientStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo := newDispatchService(t)
	post, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "hello", Body: "Hello"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo.FailNextUpserts = 1

	handler := NewTranslateHandler(svc, nil, commands.WithTimeout[TranslateCommand](time.Second))
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(ctx, TranslateCommand{
		PostID: post.ID, Attribute: posts.AttributeBody, Locale: "fr", Value: strPtr("Bonjour"),
	}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if upserts := repo.Counts().Upserts; upserts != 2 {
		t.Fatalf("expected 2 flush attempts, got %d", upserts)
	}

	row, err := repo.Find(ctx, translations.Key{OwnerType: posts.OwnerType, OwnerID: post.OwnerID()}, posts.AttributeBody, "fr")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if row.Value == nil || *row.Value != "Bonjour" {
		t.Fatalf("expected stored translation, got %+v", row.Value)
	}
}

func TestDispatchedTranslateManyExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	svc, repo := newDispatchService(t)
	post, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "hello", Body: "Hello"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo.FailUpserts = true

	handler := NewTranslateManyHandler(svc, nil, commands.WithTimeout[TranslateManyCommand](time.Second))
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err = dispatcher.Dispatch(ctx, TranslateManyCommand{
		PostID: post.ID, Locale: "fr", Values: map[string]*string{"body": strPtr("Salut"), "slug": strPtr("salut")},
	})
	if err == nil {
		t.Fatal("expected dispatch to fail after exhausting retries")
	}
	if upserts := repo.Counts().Upserts; upserts != 3 {
		t.Fatalf("expected 3 flush attempts, got %d", upserts)
	}

	repo.FailUpserts = false
	rows, err := repo.ListForOwner(ctx, translations.Key{OwnerType: posts.OwnerType, OwnerID: post.OwnerID()}, "")
	if err != nil {
		t.Fatalf("ListForOwner() error = %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows after failed flushes, got %d", len(rows))
	}
}

func TestDispatchedForceDeleteRemovesTranslations(t *testing.T) {
	ctx := context.Background()
	svc, repo := newDispatchService(t)
	post, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "hello", Body: "Hello"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	frCtx := locale.WithLocale(ctx, "fr")
	if err := post.Capability().Translate(frCtx, posts.AttributeBody, "Bonjour", "fr"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	sub := dispatcher.SubscribeCommand(NewDeletePostHandler(svc, nil))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(ctx, DeletePostCommand{PostID: post.ID, Force: true}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.Get(ctx, post.ID); !posts.IsNotFound(err) {
		t.Fatalf("expected post removed, got %v", err)
	}
	rows, err := repo.ListForOwner(ctx, translations.Key{OwnerType: posts.OwnerType, OwnerID: post.OwnerID()}, "")
	if err != nil {
		t.Fatalf("ListForOwner() error = %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected translations removed, got %d", len(rows))
	}
}
