package posts

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateSchema creates the posts table and its slug index.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Post)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().
		Model((*Post)(nil)).
		Index("posts_slug_idx").
		IfNotExists().
		Column("slug").
		Exec(ctx)
	return err
}
