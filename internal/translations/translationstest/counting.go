// Package translationstest provides helpers for exercising translation
// repositories in tests.
package translationstest

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-translatable/internal/translations"
)

// ErrInjected is returned by a Repository whose FailUpserts or
// FailNextUpserts is set.
var ErrInjected = errors.New("translationstest: injected failure")

// Repository wraps a translations.Repository and counts store round trips.
type Repository struct {
	translations.Repository

	mu          sync.Mutex
	finds       int
	lists       int
	upserts     int
	deletes     int
	lastBatch   int
	FailUpserts bool
	// FailNextUpserts fails that many upcoming upserts, then passes through.
	FailNextUpserts int
}

// Wrap decorates base. A nil base uses a fresh memory repository.
func Wrap(base translations.Repository) *Repository {
	if base == nil {
		base = translations.NewMemoryRepository()
	}
	return &Repository{Repository: base}
}

func (r *Repository) Find(ctx context.Context, key translations.Key, attribute, locale string) (*translations.Translation, error) {
	r.bump(&r.finds)
	return r.Repository.Find(ctx, key, attribute, locale)
}

func (r *Repository) ListForOwner(ctx context.Context, key translations.Key, locale string) ([]*translations.Translation, error) {
	r.bump(&r.lists)
	return r.Repository.ListForOwner(ctx, key, locale)
}

func (r *Repository) ListForOwners(ctx context.Context, ownerType string, ownerIDs []string, locale string) ([]*translations.Translation, error) {
	r.bump(&r.lists)
	return r.Repository.ListForOwners(ctx, ownerType, ownerIDs, locale)
}

func (r *Repository) Upsert(ctx context.Context, rows []*translations.Translation) ([]*translations.Translation, error) {
	r.mu.Lock()
	r.upserts++
	r.lastBatch = len(rows)
	fail := r.FailUpserts || r.FailNextUpserts > 0
	if r.FailNextUpserts > 0 {
		r.FailNextUpserts--
	}
	r.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return r.Repository.Upsert(ctx, rows)
}

func (r *Repository) DeleteForOwner(ctx context.Context, key translations.Key) (int, error) {
	r.bump(&r.deletes)
	return r.Repository.DeleteForOwner(ctx, key)
}

// Counts reports the number of calls per operation.
type Counts struct {
	Finds     int
	Lists     int
	Upserts   int
	Deletes   int
	LastBatch int
}

// Total sums every store call.
func (c Counts) Total() int {
	return c.Finds + c.Lists + c.Upserts + c.Deletes
}

// Counts returns a snapshot of the counters.
func (r *Repository) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{
		Finds:     r.finds,
		Lists:     r.lists,
		Upserts:   r.upserts,
		Deletes:   r.deletes,
		LastBatch: r.lastBatch,
	}
}

// Reset zeroes the counters.
func (r *Repository) Reset() {
	r.mu.Lock()
	r.finds, r.lists, r.upserts, r.deletes, r.lastBatch = 0, 0, 0, 0, 0
	r.mu.Unlock()
}

func (r *Repository) bump(counter *int) {
	r.mu.Lock()
	*counter++
	r.mu.Unlock()
}
