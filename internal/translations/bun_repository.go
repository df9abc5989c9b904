package translations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-translatable/internal/identity"
)

// NewTranslationRepository builds the generic go-repository-bun repository
// for translation rows.
func NewTranslationRepository(db *bun.DB) repository.Repository[*Translation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Translation]{
		NewRecord: func() *Translation { return &Translation{} },
		GetID: func(t *Translation) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Translation, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(t *Translation) string {
			if t == nil {
				return ""
			}
			return t.ID.String()
		},
	})
}

// BunRepository persists translation rows with bun.
type BunRepository struct {
	db    *bun.DB
	repo  repository.Repository[*Translation]
	clock func() time.Time
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:    db,
		repo:  NewTranslationRepository(db),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (r *BunRepository) Find(ctx context.Context, key Key, attribute, locale string) (*Translation, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	record, err := r.repo.Get(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return whereOwner(q, key)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.attribute = ?", attribute).
				Where("?TableAlias.locale = ?", locale)
		}),
	)
	if err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Key: key, Attribute: attribute, Locale: locale}
		}
		return nil, fmt.Errorf("translation repository error: %w", err)
	}
	return record, nil
}

func (r *BunRepository) ListForOwner(ctx context.Context, key Key, locale string) ([]*Translation, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = whereOwner(q, key)
			if locale != "" {
				q = q.Where("?TableAlias.locale = ?", locale)
			}
			return q.OrderExpr("?TableAlias.locale ASC, ?TableAlias.attribute ASC")
		}),
	)
	return records, err
}

func (r *BunRepository) ListForOwners(ctx context.Context, ownerType string, ownerIDs []string, locale string) ([]*Translation, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.owner_type = ?", ownerType).
				Where("?TableAlias.owner_id IN (?)", bun.In(ownerIDs)).
				Where("?TableAlias.locale = ?", locale).
				OrderExpr("?TableAlias.owner_id ASC, ?TableAlias.attribute ASC")
		}),
	)
	return records, err
}

// Upsert writes the batch with one INSERT .. ON CONFLICT statement. Row ids
// derive from the uniqueness key so retries and concurrent writers converge
// on the same row.
func (r *BunRepository) Upsert(ctx context.Context, rows []*Translation) ([]*Translation, error) {
	batch := dedupe(rows)
	if len(batch) == 0 {
		return nil, nil
	}

	now := r.clock()
	models := make([]*Translation, 0, len(batch))
	for _, row := range batch {
		if err := validateKey(Key{OwnerType: row.OwnerType, OwnerID: row.OwnerID}); err != nil {
			return nil, err
		}
		model := cloneTranslation(row)
		model.ID = identity.TranslationUUID(row.OwnerType, row.OwnerID, row.Attribute, row.Locale)
		model.CreatedAt = now
		model.UpdatedAt = now
		models = append(models, model)
	}

	query := r.db.NewInsert().Model(&models)
	if r.db.Dialect().Name() == dialect.MySQL {
		query = query.On("DUPLICATE KEY UPDATE").
			Set("value = VALUES(value)").
			Set("updated_at = VALUES(updated_at)")
	} else {
		query = query.On("CONFLICT (owner_type, owner_id, attribute, locale) DO UPDATE").
			Set("value = EXCLUDED.value").
			Set("updated_at = EXCLUDED.updated_at")
	}
	if _, err := query.Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert translations: %w", err)
	}
	return models, nil
}

func (r *BunRepository) DeleteForOwner(ctx context.Context, key Key) (int, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	result, err := r.db.NewDelete().
		Model((*Translation)(nil)).
		Where("?TableAlias.owner_type = ?", key.OwnerType).
		Where("?TableAlias.owner_id = ?", key.OwnerID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete translations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("translations delete rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *BunRepository) FindOwnerIDs(ctx context.Context, ownerType, attribute, locale, value string) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*Translation)(nil)).
		Column("owner_id").
		Where("?TableAlias.owner_type = ?", ownerType).
		Where("?TableAlias.attribute = ?", attribute).
		Where("?TableAlias.locale = ?", locale).
		Where("?TableAlias.value = ?", value).
		OrderExpr("?TableAlias.owner_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("find translation owners: %w", err)
	}
	return ids, nil
}

func whereOwner(q *bun.SelectQuery, key Key) *bun.SelectQuery {
	return q.Where("?TableAlias.owner_type = ?", key.OwnerType).
		Where("?TableAlias.owner_id = ?", key.OwnerID)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}
