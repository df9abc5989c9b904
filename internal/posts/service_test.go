package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/eagerload"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/translatable"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/internal/translations/translationstest"
	"github.com/goliatone/go-translatable/internal/translator"
	"github.com/goliatone/go-translatable/pkg/testsupport"
)

type harness struct {
	svc          Service
	translations *translationstest.Repository
}

func newHarnesses(t *testing.T) map[string]*harness {
	t.Helper()
	resolver := locale.NewResolver(locale.Config{DefaultLocale: "en", Locales: []string{"en", "fr", "de"}})
	policy := eagerload.NewPolicy(resolver, nil)

	build := func(postRepo Repository, trRepo translations.Repository) *harness {
		counting := translationstest.Wrap(trRepo)
		tr, err := translator.NewService(counting, translator.WithResolver(resolver))
		if err != nil {
			t.Fatalf("NewService() error = %v", err)
		}
		return &harness{
			svc:          NewService(postRepo, tr, WithPolicy(policy)),
			translations: counting,
		}
	}

	schemaDB := func() *bun.DB {
		db := testsupport.NewBunDB(t)
		ctx := context.Background()
		if err := translations.CreateSchema(ctx, db); err != nil {
			t.Fatalf("translations schema: %v", err)
		}
		if err := CreateSchema(ctx, db); err != nil {
			t.Fatalf("posts schema: %v", err)
		}
		return db
	}

	cacheService, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService() error = %v", err)
	}

	db := schemaDB()
	cachedDB := schemaDB()
	return map[string]*harness{
		"memory": build(NewMemoryRepository(), translations.NewMemoryRepository()),
		"bun":    build(NewBunRepository(db, policy), translations.NewBunRepository(db)),
		"bun_cached": build(
			NewBunRepositoryWithCache(cachedDB, policy, cacheService, cache.NewDefaultKeySerializer()),
			translations.NewBunRepository(cachedDB),
		),
	}
}

var (
	enCtx = locale.WithLocale(context.Background(), "en")
	frCtx = locale.WithLocale(context.Background(), "fr")
)

func TestCreateNormalizesSlug(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "Hello World", Body: "Hello"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if post.Slug != "hello-world" {
				t.Fatalf("expected normalized slug, got %q", post.Slug)
			}
			if _, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello-world"}); !errors.Is(err, ErrSlugExists) {
				t.Fatalf("expected ErrSlugExists, got %v", err)
			}
			if _, err := h.svc.Create(enCtx, CreatePostRequest{}); !errors.Is(err, ErrSlugRequired) {
				t.Fatalf("expected ErrSlugRequired, got %v", err)
			}
		})
	}
}

func TestTranslateRoundTripAndFallback(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := post.Capability().Translate(frCtx, AttributeBody, "Bonjour", "fr"); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}

			fresh, err := h.svc.Get(frCtx, post.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if body, _ := fresh.GetString(frCtx, AttributeBody); body != "Bonjour" {
				t.Fatalf("expected translated body, got %q", body)
			}
			if slug, _ := fresh.GetString(frCtx, AttributeSlug); slug != "hello" {
				t.Fatalf("expected slug fallback, got %q", slug)
			}

			native, err := h.svc.Get(enCtx, post.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if body, _ := native.GetString(enCtx, AttributeBody); body != "Hello" {
				t.Fatalf("expected native body, got %q", body)
			}
		})
	}
}

func TestSetThroughPostStagesUntilSave(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := post.Set(frCtx, AttributeBody, "Bonjour"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if post.Body != "Hello" {
				t.Fatalf("expected native body untouched, got %q", post.Body)
			}
			if pending := post.Capability().Pending(); len(pending) != 1 {
				t.Fatalf("expected one pending write, got %+v", pending)
			}
			if _, err := h.svc.Save(frCtx, post); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if pending := post.Capability().Pending(); len(pending) != 0 {
				t.Fatalf("expected buffer drained, got %+v", pending)
			}

			out, err := post.ToMap(frCtx)
			if err != nil {
				t.Fatalf("ToMap() error = %v", err)
			}
			if out[AttributeBody] != "Bonjour" || out[AttributeSlug] != "hello" {
				t.Fatalf("unexpected serialized post %+v", out)
			}
		})
	}
}

func TestSaveSlugConflictKeepsStagedTranslations(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"}); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "other", Body: "Other"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := post.Set(frCtx, AttributeBody, "Autre"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := post.Set(enCtx, AttributeSlug, "hello"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if _, err := h.svc.Save(enCtx, post); !errors.Is(err, ErrSlugExists) {
				t.Fatalf("expected ErrSlugExists, got %v", err)
			}
			if pending := post.Capability().Pending(); len(pending) != 1 {
				t.Fatalf("expected staged write kept, got %+v", pending)
			}
			assertRows(t, h, translations.Key{OwnerType: OwnerType, OwnerID: post.OwnerID()}, 0)
		})
	}
}

func TestBlankTranslationFallsBackAfterReload(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := post.Capability().Translate(frCtx, AttributeBody, "Bonjour", "fr"); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if err := post.Capability().Translate(frCtx, AttributeBody, "", "fr"); err != nil {
				t.Fatalf("Translate(blank) error = %v", err)
			}

			fresh, err := h.svc.Get(frCtx, post.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if body, _ := fresh.GetString(frCtx, AttributeBody); body != "Hello" {
				t.Fatalf("expected native body after reload, got %q", body)
			}
			out, err := fresh.ToMap(frCtx)
			if err != nil {
				t.Fatalf("ToMap() error = %v", err)
			}
			if out[AttributeBody] != "Hello" {
				t.Fatalf("expected native body in map, got %+v", out)
			}
		})
	}
}

func TestListPreloadsTranslationsOnce(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			for _, slug := range []string{"one", "two", "three"} {
				post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: slug, Body: slug})
				if err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				if err := post.Capability().Translate(frCtx, AttributeBody, slug+"-fr", "fr"); err != nil {
					t.Fatalf("Translate() error = %v", err)
				}
			}
			h.translations.Reset()

			records, err := h.svc.List(frCtx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			for _, post := range records {
				body, err := post.GetString(frCtx, AttributeBody)
				if err != nil {
					t.Fatalf("GetString() error = %v", err)
				}
				if body != post.Slug+"-fr" {
					t.Fatalf("expected %s-fr, got %q", post.Slug, body)
				}
				if slug, _ := post.GetString(frCtx, AttributeSlug); slug != post.Slug {
					t.Fatalf("expected slug fallback, got %q", slug)
				}
			}
			counts := h.translations.Counts()
			if counts.Finds != 0 || counts.Lists > 1 {
				t.Fatalf("expected one batched fetch at most, got %+v", counts)
			}

			h.translations.Reset()
			if _, err := h.svc.List(enCtx); err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total := h.translations.Counts().Total(); total != 0 {
				t.Fatalf("expected default locale list to skip translations, got %d calls", total)
			}
		})
	}
}

func TestGetBySlugResolvesTranslatedSlug(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := post.Capability().Translate(frCtx, AttributeSlug, "Bonjour Tout", "fr"); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}

			found, err := h.svc.GetBySlug(frCtx, "bonjour-tout")
			if err != nil || found.ID != post.ID {
				t.Fatalf("GetBySlug(fr) = %v, %v", found, err)
			}
			found, err = h.svc.GetBySlug(frCtx, "hello")
			if err != nil || found.ID != post.ID {
				t.Fatalf("expected native slug fallback, got %v, %v", found, err)
			}
			if _, err := h.svc.GetBySlug(enCtx, "bonjour-tout"); !IsNotFound(err) {
				t.Fatalf("expected translated slug to be unknown in en, got %v", err)
			}
		})
	}
}

func TestDeleteLifecycle(t *testing.T) {
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := post.Capability().Translate(frCtx, AttributeBody, "Bonjour", "fr"); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			key := translations.Key{OwnerType: OwnerType, OwnerID: post.OwnerID()}
			if _, err := h.svc.Get(enCtx, post.ID); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if _, err := h.svc.GetBySlug(enCtx, "hello"); err != nil {
				t.Fatalf("GetBySlug() error = %v", err)
			}

			if err := h.svc.Delete(enCtx, post.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := h.svc.Get(enCtx, post.ID); !IsNotFound(err) {
				t.Fatalf("expected soft-deleted post hidden, got %v", err)
			}
			if _, err := h.svc.GetBySlug(enCtx, "hello"); !IsNotFound(err) {
				t.Fatalf("expected soft-deleted slug hidden, got %v", err)
			}
			if err := h.svc.Delete(enCtx, post.ID); !IsNotFound(err) {
				t.Fatalf("expected not found on second delete, got %v", err)
			}
			assertRows(t, h, key, 1)

			restored, err := h.svc.Restore(frCtx, post.ID)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if body, _ := restored.GetString(frCtx, AttributeBody); body != "Bonjour" {
				t.Fatalf("expected translation after restore, got %q", body)
			}
			if _, err := h.svc.Get(enCtx, post.ID); err != nil {
				t.Fatalf("expected restored post visible, got %v", err)
			}

			if err := h.svc.ForceDelete(enCtx, post.ID); err != nil {
				t.Fatalf("ForceDelete() error = %v", err)
			}
			assertRows(t, h, key, 0)
			if _, err := h.svc.Get(enCtx, post.ID); !IsNotFound(err) {
				t.Fatalf("expected force-deleted post gone, got %v", err)
			}
			if err := h.svc.ForceDelete(enCtx, post.ID); !IsNotFound(err) {
				t.Fatalf("expected not found on second force delete, got %v", err)
			}
		})
	}
}

func TestUndeclaredAttributeGuard(t *testing.T) {
	h := newHarnesses(t)["memory"]
	post, err := h.svc.Create(enCtx, CreatePostRequest{Slug: "hello", Body: "Hello"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := post.Capability().GetTranslation(frCtx, "title", "fr"); !errors.Is(err, translatable.ErrNotTranslatableAttribute) {
		t.Fatalf("expected ErrNotTranslatableAttribute, got %v", err)
	}
}

func assertRows(t *testing.T, h *harness, key translations.Key, want int) {
	t.Helper()
	rows, err := h.translations.ListForOwner(context.Background(), key, "")
	if err != nil {
		t.Fatalf("ListForOwner() error = %v", err)
	}
	if len(rows) != want {
		t.Fatalf("expected %d translation rows, got %d", want, len(rows))
	}
}
