package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/translations/translationstest"
	"github.com/goliatone/go-translatable/pkg/attributes"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

type carrierRecord struct {
	*attributes.Record
	locale string
	rows   []interfaces.LoadedTranslation
}

func (c *carrierRecord) LoadedTranslations(code string) ([]interfaces.LoadedTranslation, bool) {
	if c.locale == "" || c.locale != code {
		return nil, false
	}
	return c.rows, true
}

func strPtr(s string) *string { return &s }

func newService(t *testing.T) (*Service, *translationstest.Repository) {
	t.Helper()
	repo := translationstest.Wrap(nil)
	svc, err := NewService(repo, WithResolver(locale.NewResolver(locale.Config{DefaultLocale: "en", Locales: []string{"en", "fr"}})))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, repo
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil); !errors.Is(err, ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired, got %v", err)
	}
}

func TestSaveEmptyBatchIssuesNoQuery(t *testing.T) {
	svc, repo := newService(t)
	owner := attributes.NewRecord("post", "1", []string{"title"}, nil)

	saved, err := svc.Save(context.Background(), owner, nil)
	if err != nil || saved != nil {
		t.Fatalf("expected no-op save, got %v, %v", saved, err)
	}
	if total := repo.Counts().Total(); total != 0 {
		t.Fatalf("expected no store calls, got %d", total)
	}
}

func TestSaveThenGet(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	owner := attributes.NewRecord("post", "1", []string{"title", "body"}, nil)

	_, err := svc.Save(ctx, owner, []Entry{
		{Locale: "fr", Attribute: "title", Value: strPtr("Bonjour")},
		{Locale: "fr", Attribute: "body", Value: strPtr("Corps")},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	counts := repo.Counts()
	if counts.Upserts != 1 || counts.LastBatch != 2 {
		t.Fatalf("expected one batched upsert of 2 rows, got %+v", counts)
	}

	value, found, err := svc.Get(ctx, owner, "title", "fr")
	if err != nil || !found || *value != "Bonjour" {
		t.Fatalf("Get() = %v, %v, %v", value, found, err)
	}

	if _, found, err := svc.Get(ctx, owner, "title", "de"); err != nil || found {
		t.Fatalf("expected absent translation, got found=%v err=%v", found, err)
	}
}

func TestGetUsesEagerLoadedRows(t *testing.T) {
	svc, repo := newService(t)
	owner := &carrierRecord{
		Record: attributes.NewRecord("post", "1", []string{"title"}, nil),
		locale: "fr",
		rows:   []interfaces.LoadedTranslation{{Attribute: "title", Locale: "fr", Value: strPtr("Salut")}},
	}

	value, found, err := svc.Get(context.Background(), owner, "title", "fr")
	if err != nil || !found || *value != "Salut" {
		t.Fatalf("Get() = %v, %v, %v", value, found, err)
	}
	if _, found, _ := svc.Get(context.Background(), owner, "body", "fr"); found {
		t.Fatalf("expected missing eager-loaded attribute to be absent")
	}
	if total := repo.Counts().Total(); total != 0 {
		t.Fatalf("expected eager-loaded rows to avoid the store, got %d calls", total)
	}

	if _, _, err := svc.Get(context.Background(), owner, "title", "de"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if finds := repo.Counts().Finds; finds != 1 {
		t.Fatalf("expected other locale to hit the store once, got %d", finds)
	}
}

func TestSaveFailurePropagates(t *testing.T) {
	svc, repo := newService(t)
	repo.FailUpserts = true
	owner := attributes.NewRecord("post", "1", []string{"title"}, nil)

	_, err := svc.Save(context.Background(), owner, []Entry{{Locale: "fr", Attribute: "title", Value: strPtr("x")}})
	if !errors.Is(err, translationstest.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestPreloadGroupsByOwner(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	first := attributes.NewRecord("post", "1", []string{"title"}, nil)
	second := attributes.NewRecord("post", "2", []string{"title"}, nil)
	if _, err := svc.Save(ctx, first, []Entry{{Locale: "fr", Attribute: "title", Value: strPtr("Un")}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	repo.Reset()

	grouped, err := svc.Preload(ctx, "post", []string{first.ID, second.ID}, "fr")
	if err != nil {
		t.Fatalf("Preload() error = %v", err)
	}
	if repo.Counts().Lists != 1 {
		t.Fatalf("expected one batched list, got %+v", repo.Counts())
	}
	if len(grouped["1"]) != 1 || *grouped["1"][0].Value != "Un" {
		t.Fatalf("unexpected rows for owner 1: %+v", grouped["1"])
	}
	if rows, ok := grouped["2"]; !ok || len(rows) != 0 {
		t.Fatalf("expected empty entry for owner 2, got %+v", rows)
	}
}

func TestDeleteRemovesOwnerRows(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	owner := attributes.NewRecord("post", "1", []string{"title"}, nil)
	if _, err := svc.Save(ctx, owner, []Entry{{Locale: "fr", Attribute: "title", Value: strPtr("Un")}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	removed, err := svc.Delete(ctx, owner)
	if err != nil || removed != 1 {
		t.Fatalf("Delete() = %d, %v", removed, err)
	}
}

func TestNotifyMissingRecoversObserverPanics(t *testing.T) {
	svc, _ := newService(t)
	var seen []NotFoundEvent
	svc.OnMissing(func(context.Context, NotFoundEvent) { panic("observer failure") })
	svc.OnMissing(func(_ context.Context, evt NotFoundEvent) { seen = append(seen, evt) })

	svc.NotifyMissing(context.Background(), NotFoundEvent{OwnerType: "post", OwnerID: "1", Attribute: "title", Locale: "fr"})

	if len(seen) != 1 || seen[0].Attribute != "title" {
		t.Fatalf("expected second observer to run, got %+v", seen)
	}
}

func TestIsDefaultLocale(t *testing.T) {
	svc, _ := newService(t)
	if !svc.IsDefaultLocale("EN") || svc.IsDefaultLocale("fr") {
		t.Fatalf("unexpected default locale answers")
	}
	ctx := locale.WithLocale(context.Background(), "fr")
	if got := svc.Locale(ctx); got != "fr" {
		t.Fatalf("expected context locale fr, got %q", got)
	}
}
