package posts

import (
	"context"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/translatable"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// OwnerType is the discriminator stored on post translation rows.
const OwnerType = "post"

const (
	AttributeBody = "body"
	AttributeSlug = "slug"
)

var translatableAttributes = []string{AttributeBody, AttributeSlug}

// Post is a soft-deletable blog post with translatable body and slug.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID           uuid.UUID                   `bun:",pk,type:uuid"                                        json:"id"`
	Slug         string                      `bun:"slug,notnull"                                         json:"slug"`
	Body         string                      `bun:"body"                                                 json:"body"`
	CreatedAt    time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time                   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt    time.Time                   `bun:"deleted_at,soft_delete,nullzero"                      json:"deleted_at,omitempty"`
	Translations []*translations.Translation `bun:"rel:has-many,join:id=owner_id,join:type=owner_type,polymorphic:post" json:"-"`

	persisted     bool
	forceDeleting bool
	eagerLocale   string
	capability    *translatable.Capability
}

func (p *Post) OwnerType() string { return OwnerType }

func (p *Post) OwnerID() string { return p.ID.String() }

func (p *Post) Exists() bool { return p.persisted }

func (p *Post) TranslatableAttributes() []string {
	return append([]string(nil), translatableAttributes...)
}

func (p *Post) UsesSoftDeletes() bool { return true }

func (p *Post) IsForceDeleting() bool { return p.forceDeleting }

// IsDeleted reports whether the post is soft deleted.
func (p *Post) IsDeleted() bool { return !p.DeletedAt.IsZero() }

func (p *Post) RawAttribute(name string) any {
	switch name {
	case AttributeBody:
		return p.Body
	case AttributeSlug:
		return p.Slug
	}
	return nil
}

func (p *Post) SetRawAttribute(name string, value any) {
	text, _ := value.(string)
	switch name {
	case AttributeBody:
		p.Body = text
	case AttributeSlug:
		p.Slug = text
	}
}

func (p *Post) Attribute(name string) any {
	return p.RawAttribute(name)
}

// SetAttribute applies the post mutators. Slugs are normalized with go-slug.
func (p *Post) SetAttribute(name string, value any) error {
	text, _ := value.(string)
	if name == AttributeSlug && text != "" {
		normalized, err := slug.Normalize(text)
		if err != nil {
			return err
		}
		if normalized == "" {
			return ErrSlugInvalid
		}
		text = normalized
	}
	p.SetRawAttribute(name, text)
	return nil
}

// LoadedTranslations exposes rows eager loaded for code.
func (p *Post) LoadedTranslations(code string) ([]interfaces.LoadedTranslation, bool) {
	if p.eagerLocale == "" || p.eagerLocale != locale.Normalize(code) {
		return nil, false
	}
	return translations.Loaded(p.Translations), true
}

// AttributesMap returns the native serialized attributes.
func (p *Post) AttributesMap() map[string]any {
	out := map[string]any{
		"id":          p.ID.String(),
		AttributeSlug: p.Slug,
		AttributeBody: p.Body,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
	if p.IsDeleted() {
		out["deleted_at"] = p.DeletedAt
	}
	return out
}

// Capability returns the attached translation capability, nil for posts not
// obtained from a Service.
func (p *Post) Capability() *translatable.Capability {
	return p.capability
}

// Get reads name in the active locale.
func (p *Post) Get(ctx context.Context, name string) (any, error) {
	if p.capability == nil {
		return p.Attribute(name), nil
	}
	return p.capability.Get(ctx, name)
}

// Set writes name in the active locale.
func (p *Post) Set(ctx context.Context, name string, value any) error {
	if p.capability == nil {
		return p.SetAttribute(name, value)
	}
	return p.capability.Set(ctx, name, value)
}

// GetString reads name in the active locale as a string.
func (p *Post) GetString(ctx context.Context, name string) (string, error) {
	value, err := p.Get(ctx, name)
	if err != nil {
		return "", err
	}
	text, _ := value.(string)
	return text, nil
}

// ToMap serializes the post with translations resolved in the active locale.
func (p *Post) ToMap(ctx context.Context) (map[string]any, error) {
	if p.capability == nil {
		return p.AttributesMap(), nil
	}
	return p.capability.ToMap(ctx)
}

func (p *Post) markLoaded(code string) {
	p.eagerLocale = locale.Normalize(code)
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}
	copied := *src
	copied.capability = nil
	if src.Translations != nil {
		copied.Translations = make([]*translations.Translation, 0, len(src.Translations))
		for _, row := range src.Translations {
			if row == nil {
				continue
			}
			local := *row
			copied.Translations = append(copied.Translations, &local)
		}
	}
	return &copied
}
