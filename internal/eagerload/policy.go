package eagerload

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// DefaultRelation is the relation name owners declare for translation rows.
const DefaultRelation = "Translations"

// Describer exposes what the policy needs to know about an owner type.
type Describer interface {
	OwnerType() string
	TranslatableAttributes() []string
}

// Switches reports whether auto-load is enabled for an attribute.
type Switches interface {
	AutoLoad(ownerType, attribute string) bool
}

// Option configures a Policy.
type Option func(*Policy)

// WithRelation overrides the relation name.
func WithRelation(name string) Option {
	return func(p *Policy) {
		if name != "" {
			p.relation = name
		}
	}
}

// WithLogger sets the policy logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Policy decides whether a query should prefetch translations for the
// active locale.
type Policy struct {
	resolver *locale.Resolver
	switches Switches
	relation string
	logger   interfaces.Logger
}

// NewPolicy builds a policy. A nil switches value enables auto-load for
// every attribute.
func NewPolicy(resolver *locale.Resolver, switches Switches, opts ...Option) *Policy {
	if resolver == nil {
		resolver = locale.DefaultResolver()
	}
	p := &Policy{
		resolver: resolver,
		switches: switches,
		relation: DefaultRelation,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ShouldLoad returns the locale to prefetch. It reports false when the active
// locale is the default or no declared attribute has auto-load enabled.
func (p *Policy) ShouldLoad(ctx context.Context, owner Describer) (string, bool) {
	active := p.resolver.Active(ctx)
	if p.resolver.IsDefault(active) {
		return "", false
	}
	ownerType := owner.OwnerType()
	for _, attribute := range owner.TranslatableAttributes() {
		if p.switches == nil || p.switches.AutoLoad(ownerType, attribute) {
			return active, true
		}
	}
	return "", false
}

// Apply attaches the translations relation filtered to the active locale.
func (p *Policy) Apply(ctx context.Context, q *bun.SelectQuery, owner Describer) *bun.SelectQuery {
	code, ok := p.ShouldLoad(ctx, owner)
	if !ok {
		return q
	}
	p.logger.Debug("eager loading translations", "owner_type", owner.OwnerType(), "locale", code)
	return q.Relation(p.relation, func(sq *bun.SelectQuery) *bun.SelectQuery {
		return sq.Where("?TableAlias.locale = ?", code)
	})
}
