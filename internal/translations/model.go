package translations

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Translation stores the value of one attribute of one owner record in one
// locale. At most one row exists per (owner_type, owner_id, attribute, locale).
type Translation struct {
	bun.BaseModel `bun:"table:translations,alias:tr"`

	ID        uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	OwnerID   string    `bun:"owner_id,notnull"             json:"owner_id"`
	OwnerType string    `bun:"owner_type,notnull"           json:"owner_type"`
	Attribute string    `bun:"attribute,notnull"            json:"attribute"`
	Locale    string    `bun:"locale,notnull"               json:"locale"`
	Value     *string   `bun:"value"                        json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Key identifies an owner record across owner types.
type Key struct {
	OwnerType string
	OwnerID   string
}

// KeyOf returns the key of an owner record.
func KeyOf(owner interfaces.Owner) Key {
	return Key{OwnerType: owner.OwnerType(), OwnerID: owner.OwnerID()}
}

// Loaded converts rows into the owner-facing LoadedTranslation view.
func Loaded(rows []*Translation) []interfaces.LoadedTranslation {
	out := make([]interfaces.LoadedTranslation, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, interfaces.LoadedTranslation{
			Attribute: row.Attribute,
			Locale:    row.Locale,
			Value:     cloneString(row.Value),
		})
	}
	return out
}

func cloneTranslation(src *Translation) *Translation {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Value = cloneString(src.Value)
	return &copied
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
