package translatable

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/translator"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Switches reports the auto-load and auto-save settings of an attribute.
type Switches interface {
	AutoLoad(ownerType, attribute string) bool
	AutoSave(ownerType, attribute string) bool
}

// SaveFunc persists the owner record. It must call Capability.BeforeSave.
type SaveFunc func(ctx context.Context) error

// Option configures a Capability.
type Option func(*Capability)

// WithSwitches sets the auto-load/auto-save switches. Without it both are on.
func WithSwitches(switches Switches) Option {
	return func(c *Capability) {
		c.switches = switches
	}
}

// WithSaver sets how Translate and TranslateMany save the owner. Without it
// they only flush staged translations.
func WithSaver(save SaveFunc) Option {
	return func(c *Capability) {
		c.save = save
	}
}

// WithLogger sets the capability logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Capability) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type cacheKey struct {
	locale    string
	attribute string
}

// resolved is a cache entry. A nil value with the entry present means the
// translation is known to be absent.
type resolved struct {
	value *string
}

// Capability adds per-locale translation to an owner record. It holds the
// instance's resolved cache and pending writes and is not safe for
// concurrent use.
type Capability struct {
	owner      interfaces.Owner
	translator *translator.Service
	switches   Switches
	save       SaveFunc
	logger     interfaces.Logger

	attributes []string
	declared   map[string]struct{}
	resolved   map[cacheKey]resolved
	pending    map[cacheKey]*string
	order      []cacheKey
}

// New attaches a capability to owner.
func New(owner interfaces.Owner, tr *translator.Service, opts ...Option) *Capability {
	attrs := owner.TranslatableAttributes()
	c := &Capability{
		owner:      owner,
		translator: tr,
		logger:     logging.NoOp(),
		attributes: attrs,
		declared:   make(map[string]struct{}, len(attrs)),
		resolved:   map[cacheKey]resolved{},
		pending:    map[cacheKey]*string{},
	}
	for _, attr := range attrs {
		c.declared[attr] = struct{}{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Translatable returns the declared attribute names.
func (c *Capability) Translatable() []string {
	return slices.Clone(c.attributes)
}

// IsTranslatable reports whether attribute is declared translatable.
func (c *Capability) IsTranslatable(attribute string) bool {
	_, ok := c.declared[attribute]
	return ok
}

// Get reads attribute in the active locale, falling back to the owner's own
// value when no translation exists.
func (c *Capability) Get(ctx context.Context, attribute string) (any, error) {
	if !c.IsTranslatable(attribute) || !c.owner.Exists() || !c.autoLoad(attribute) {
		return c.owner.Attribute(attribute), nil
	}
	code := c.translator.Locale(ctx)
	if c.translator.IsDefaultLocale(code) {
		return c.owner.Attribute(attribute), nil
	}

	value, found, err := c.resolve(ctx, attribute, code)
	if err != nil {
		return nil, err
	}
	if !found {
		c.notifyMissing(ctx, attribute, code)
		return c.owner.Attribute(attribute), nil
	}
	return c.access(attribute, *value), nil
}

// Set writes attribute in the active locale. Default-locale writes and
// writes that bypass translation go straight to the owner.
func (c *Capability) Set(ctx context.Context, attribute string, value any) error {
	if !c.IsTranslatable(attribute) || !c.owner.Exists() || !c.autoSave(attribute) {
		return c.owner.SetAttribute(attribute, value)
	}
	code := c.translator.Locale(ctx)
	if c.translator.IsDefaultLocale(code) {
		return c.owner.SetAttribute(attribute, value)
	}
	return c.stage(ctx, attribute, code, value)
}

// SetTranslation stages value for attribute in code. A blank code uses the
// active locale.
func (c *Capability) SetTranslation(ctx context.Context, attribute string, value any, code string) error {
	if err := c.guard(attribute); err != nil {
		return err
	}
	code = c.translator.Resolver().Resolve(ctx, code)
	if c.translator.IsDefaultLocale(code) {
		return c.owner.SetAttribute(attribute, value)
	}
	return c.stage(ctx, attribute, code, value)
}

// Translate stages a single translation and saves the owner.
func (c *Capability) Translate(ctx context.Context, attribute string, value any, code string) error {
	if err := c.SetTranslation(ctx, attribute, value, code); err != nil {
		return err
	}
	return c.saveOwner(ctx)
}

// TranslateMany stages every value then saves the owner once. Nothing is
// staged when any attribute is not translatable.
func (c *Capability) TranslateMany(ctx context.Context, values map[string]any, code string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		if err := c.guard(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.SetTranslation(ctx, name, values[name], code); err != nil {
			return err
		}
	}
	return c.saveOwner(ctx)
}

// GetTranslation returns attribute in code through the owner's accessor, or
// nil when no translation exists. The default locale returns the owner value.
func (c *Capability) GetTranslation(ctx context.Context, attribute, code string) (any, error) {
	raw, isDefault, err := c.explicit(ctx, attribute, code)
	if err != nil {
		return nil, err
	}
	if isDefault {
		return c.owner.Attribute(attribute), nil
	}
	if raw == nil {
		return nil, nil
	}
	return c.access(attribute, *raw), nil
}

// GetRawTranslation returns the stored translation without the accessor.
func (c *Capability) GetRawTranslation(ctx context.Context, attribute, code string) (*string, error) {
	raw, isDefault, err := c.explicit(ctx, attribute, code)
	if err != nil {
		return nil, err
	}
	if isDefault {
		return stringValue(c.owner.RawAttribute(attribute)), nil
	}
	return raw, nil
}

// GetTranslations returns every declared attribute in code. Missing
// translations map to nil.
func (c *Capability) GetTranslations(ctx context.Context, code string) (map[string]any, error) {
	out := make(map[string]any, len(c.attributes))
	for _, attribute := range c.attributes {
		value, err := c.GetTranslation(ctx, attribute, code)
		if err != nil {
			return nil, err
		}
		out[attribute] = value
	}
	return out, nil
}

// DefaultAttribute returns the owner's own value of attribute.
func (c *Capability) DefaultAttribute(attribute string) any {
	return c.owner.Attribute(attribute)
}

// BeforeSave flushes pending writes in one batch. Blank values are stored as
// NULL so they read as absent and fall back to the native value. The buffer
// is cleared only after the store accepts the batch.
func (c *Capability) BeforeSave(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	entries := c.Pending()
	for i := range entries {
		if isBlank(entries[i].Value) {
			entries[i].Value = nil
		}
	}
	if _, err := c.translator.Save(ctx, c.owner, entries); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Value == nil {
			c.resolved[cacheKey{locale: entry.Locale, attribute: entry.Attribute}] = resolved{}
		}
	}
	clear(c.pending)
	c.order = c.order[:0]
	return nil
}

// AfterDelete removes the owner's translations unless the owner was only
// soft deleted.
func (c *Capability) AfterDelete(ctx context.Context) error {
	if soft, ok := c.owner.(interfaces.SoftDeletable); ok && soft.UsesSoftDeletes() && !soft.IsForceDeleting() {
		return nil
	}
	_, err := c.translator.Delete(ctx, c.owner)
	return err
}

// ToMap returns the owner's native attributes with every declared attribute
// resolved in the active locale. Blank translations keep the native value.
func (c *Capability) ToMap(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if mapper, ok := c.owner.(interfaces.AttributesMapper); ok {
		maps.Copy(out, mapper.AttributesMap())
	}
	for _, attribute := range c.attributes {
		value, err := c.Get(ctx, attribute)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		if text, ok := value.(string); ok && text == "" {
			continue
		}
		out[attribute] = value
	}
	return out, nil
}

// Pending returns the staged writes in staging order.
func (c *Capability) Pending() []translator.Entry {
	out := make([]translator.Entry, 0, len(c.order))
	for _, key := range c.order {
		value, ok := c.pending[key]
		if !ok {
			continue
		}
		out = append(out, translator.Entry{Locale: key.locale, Attribute: key.attribute, Value: cloneString(value)})
	}
	return out
}

// Seed primes the resolved cache with rows loaded for code. Declared
// attributes without a row are cached as absent. Staged values win.
func (c *Capability) Seed(code string, rows []interfaces.LoadedTranslation) {
	code = locale.Normalize(code)
	byAttribute := make(map[string]*string, len(rows))
	for _, row := range rows {
		if locale.Normalize(row.Locale) == code {
			byAttribute[row.Attribute] = cloneString(row.Value)
		}
	}
	for _, attribute := range c.attributes {
		key := cacheKey{locale: code, attribute: attribute}
		if _, staged := c.pending[key]; staged {
			continue
		}
		c.resolved[key] = resolved{value: byAttribute[attribute]}
	}
}

func (c *Capability) explicit(ctx context.Context, attribute, code string) (*string, bool, error) {
	if err := c.guard(attribute); err != nil {
		return nil, false, err
	}
	code = c.translator.Resolver().Resolve(ctx, code)
	if c.translator.IsDefaultLocale(code) {
		return nil, true, nil
	}
	value, found, err := c.resolve(ctx, attribute, code)
	if err != nil {
		return nil, false, err
	}
	if !found {
		c.notifyMissing(ctx, attribute, code)
		return nil, false, nil
	}
	return value, false, nil
}

// resolve consults the instance cache before the translator. New records
// have nothing stored and never reach the store.
func (c *Capability) resolve(ctx context.Context, attribute, code string) (*string, bool, error) {
	key := cacheKey{locale: code, attribute: attribute}
	if entry, ok := c.resolved[key]; ok {
		return entry.value, entry.value != nil, nil
	}
	if !c.owner.Exists() {
		return nil, false, nil
	}
	value, found, err := c.translator.Get(ctx, c.owner, attribute, code)
	if err != nil {
		return nil, false, err
	}
	if !found {
		value = nil
	}
	c.resolved[key] = resolved{value: cloneString(value)}
	return value, found, nil
}

func (c *Capability) stage(ctx context.Context, attribute, code string, value any) error {
	casted, err := c.cast(attribute, value)
	if err != nil {
		return err
	}
	current, _, err := c.resolve(ctx, attribute, code)
	if err != nil {
		return err
	}
	if equalStrings(current, casted) || (isBlank(current) && isBlank(casted)) {
		return nil
	}

	key := cacheKey{locale: code, attribute: attribute}
	if _, staged := c.pending[key]; !staged {
		c.order = append(c.order, key)
	}
	c.pending[key] = casted
	c.resolved[key] = resolved{value: cloneString(casted)}
	c.logger.Debug("translation staged", "owner_type", c.owner.OwnerType(), "owner_id", c.owner.OwnerID(), "attribute", attribute, "locale", code)
	return nil
}

// cast runs value through the owner's mutator without keeping the result on
// the owner.
func (c *Capability) cast(attribute string, value any) (*string, error) {
	original := c.owner.RawAttribute(attribute)
	defer c.owner.SetRawAttribute(attribute, original)
	if err := c.owner.SetAttribute(attribute, value); err != nil {
		return nil, fmt.Errorf("translatable: cast %s: %w", attribute, err)
	}
	return stringValue(c.owner.RawAttribute(attribute)), nil
}

// access runs a stored translation through the owner's accessor.
func (c *Capability) access(attribute, value string) any {
	original := c.owner.RawAttribute(attribute)
	defer c.owner.SetRawAttribute(attribute, original)
	c.owner.SetRawAttribute(attribute, value)
	return c.owner.Attribute(attribute)
}

func (c *Capability) saveOwner(ctx context.Context) error {
	if c.save != nil {
		return c.save(ctx)
	}
	return c.BeforeSave(ctx)
}

func (c *Capability) guard(attribute string) error {
	if c.IsTranslatable(attribute) {
		return nil
	}
	return &NotTranslatableAttributeError{OwnerType: c.owner.OwnerType(), Attribute: attribute}
}

func (c *Capability) autoLoad(attribute string) bool {
	return c.switches == nil || c.switches.AutoLoad(c.owner.OwnerType(), attribute)
}

func (c *Capability) autoSave(attribute string) bool {
	return c.switches == nil || c.switches.AutoSave(c.owner.OwnerType(), attribute)
}

func (c *Capability) notifyMissing(ctx context.Context, attribute, code string) {
	c.translator.NotifyMissing(ctx, translator.NotFoundEvent{
		OwnerType: c.owner.OwnerType(),
		OwnerID:   c.owner.OwnerID(),
		Attribute: attribute,
		Locale:    code,
	})
}

func stringValue(value any) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return &v
	case *string:
		return cloneString(v)
	case []byte:
		s := string(v)
		return &s
	case fmt.Stringer:
		s := v.String()
		return &s
	default:
		s := fmt.Sprint(v)
		return &s
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
