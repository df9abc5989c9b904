package translations

import (
	"context"

	"github.com/uptrace/bun"
)

// UniqueIndexName names the index enforcing one row per attribute and locale.
const UniqueIndexName = "translations_owner_attribute_locale_idx"

// CreateSchema creates the translations table and its unique index.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Translation)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().
		Model((*Translation)(nil)).
		Index(UniqueIndexName).
		Unique().
		IfNotExists().
		Column("owner_type", "owner_id", "attribute", "locale").
		Exec(ctx)
	return err
}
