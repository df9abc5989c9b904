package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/eagerload"
)

// NewPostRepository builds the generic go-repository-bun repository for posts.
func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}

// BunRepository persists posts with bun. Reads in a non-default locale run
// the eager-load policy and bypass the read cache because their result
// depends on the active locale. Delete is a soft delete.
type BunRepository struct {
	db     *bun.DB
	repo   repository.Repository[*Post]
	policy *eagerload.Policy
}

// NewBunRepository creates a post repository without caching.
func NewBunRepository(db *bun.DB, policy *eagerload.Policy) *BunRepository {
	return NewBunRepositoryWithCache(db, policy, nil, nil)
}

// NewBunRepositoryWithCache creates a post repository with caching services.
func NewBunRepositoryWithCache(db *bun.DB, policy *eagerload.Policy, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewPostRepository(db)
	return &BunRepository{
		db:     db,
		repo:   wrapWithCache(base, cacheService, keySerializer),
		policy: policy,
	}
}

func (r *BunRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	created, err := r.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	return clonePost(created), nil
}

func (r *BunRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	post.UpdatedAt = time.Now().UTC()
	updated, err := r.repo.Update(ctx, post,
		repository.UpdateByID(post.ID.String()),
		repository.UpdateColumns("slug", "body", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, post.ID.String())
	}
	return clonePost(updated), nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	if code, ok := r.eagerLocale(ctx); ok {
		return r.selectOne(ctx, code, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id = ?", id)
		}, id.String())
	}
	post, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return clonePost(post), nil
}

func (r *BunRepository) GetWithDeleted(ctx context.Context, id uuid.UUID) (*Post, error) {
	post := new(Post)
	err := r.db.NewSelect().
		Model(post).
		Where("?TableAlias.id = ?", id).
		WhereAllWithDeleted().
		Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return post, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	if code, ok := r.eagerLocale(ctx); ok {
		return r.selectOne(ctx, code, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}, slug)
	}
	post, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	return clonePost(post), nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Post, error) {
	if code, ok := r.eagerLocale(ctx); ok {
		var records []*Post
		q := r.db.NewSelect().Model(&records).OrderExpr("?TableAlias.slug ASC")
		if err := r.policy.Apply(ctx, q, describer).Scan(ctx); err != nil {
			return nil, fmt.Errorf("post repository error: %w", err)
		}
		for _, post := range records {
			post.markLoaded(code)
		}
		return records, nil
	}

	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.slug ASC")
	}))
	if err != nil {
		return nil, err
	}
	out := make([]*Post, 0, len(records))
	for _, post := range records {
		out = append(out, clonePost(post))
	}
	return out, nil
}

// Delete, ForceDelete and Restore write through the cache-aware repository
// with the full record so cached id and slug reads are evicted.
func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := r.GetWithDeleted(ctx, id)
	if err != nil {
		return err
	}
	if post.IsDeleted() {
		return notFound(id.String())
	}
	if err := r.repo.Delete(ctx, post); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func (r *BunRepository) ForceDelete(ctx context.Context, id uuid.UUID) error {
	post, err := r.GetWithDeleted(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.ForceDelete(ctx, post); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func (r *BunRepository) Restore(ctx context.Context, id uuid.UUID) error {
	post, err := r.GetWithDeleted(ctx, id)
	if err != nil {
		return err
	}
	post.DeletedAt = time.Time{}
	post.UpdatedAt = time.Now().UTC()
	if _, err := r.repo.Update(ctx, post,
		repository.UpdateDeletedAlso(),
		repository.UpdateColumns("deleted_at", "updated_at"),
	); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func (r *BunRepository) eagerLocale(ctx context.Context) (string, bool) {
	if r.policy == nil {
		return "", false
	}
	return r.policy.ShouldLoad(ctx, describer)
}

func (r *BunRepository) selectOne(ctx context.Context, code string, filter func(*bun.SelectQuery) *bun.SelectQuery, key string) (*Post, error) {
	post := new(Post)
	q := filter(r.db.NewSelect().Model(post))
	if err := r.policy.Apply(ctx, q, describer).Limit(1).Scan(ctx); err != nil {
		return nil, mapRepositoryError(err, key)
	}
	post.markLoaded(code)
	return post, nil
}

var describer = &Post{}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return notFound(key)
	}
	return fmt.Errorf("post repository error: %w", err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
