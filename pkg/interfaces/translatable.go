package interfaces

// AttributeStore is the storage-backed attribute contract an owner record
// exposes. Raw accessors read and write the stored representation while
// Attribute/SetAttribute run the record's accessor and mutator pipelines.
type AttributeStore interface {
	RawAttribute(name string) any
	SetRawAttribute(name string, value any)
	Attribute(name string) any
	SetAttribute(name string, value any) error
}

// Owner is a persisted record that declares translatable attributes.
type Owner interface {
	AttributeStore
	// OwnerType is the polymorphic discriminator stored on translation rows.
	OwnerType() string
	// OwnerID is the owner primary key in its string form.
	OwnerID() string
	// Exists reports whether the record has been persisted.
	Exists() bool
	// TranslatableAttributes returns the ordered set of translatable names.
	TranslatableAttributes() []string
}

// SoftDeletable is implemented by owners that keep rows after deletion.
type SoftDeletable interface {
	UsesSoftDeletes() bool
	IsForceDeleting() bool
}

// LoadedTranslation is a translation row already attached to an owner,
// usually through an eager-loaded relation.
type LoadedTranslation struct {
	Attribute string
	Locale    string
	Value     *string
}

// TranslationsCarrier is implemented by owners whose translations relation
// may have been eager loaded. loaded reports whether the relation holds the
// complete set of rows for locale.
type TranslationsCarrier interface {
	LoadedTranslations(locale string) (rows []LoadedTranslation, loaded bool)
}

// AttributesMapper exposes the native serialized attributes of an owner.
type AttributesMapper interface {
	AttributesMap() map[string]any
}
