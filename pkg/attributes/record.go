package attributes

import "slices"

// Record is a generic owner record built on a Bag. It suits owners that do
// not map onto a bun model.
type Record struct {
	*Bag

	Type         string
	ID           string
	Persisted    bool
	Translatable []string
	SoftDeletes  bool
	Forcing      bool
}

// NewRecord returns a persisted record of ownerType with the given values.
func NewRecord(ownerType, id string, translatable []string, values map[string]any) *Record {
	return &Record{
		Bag:          NewBag(values),
		Type:         ownerType,
		ID:           id,
		Persisted:    true,
		Translatable: slices.Clone(translatable),
	}
}

func (r *Record) OwnerType() string { return r.Type }

func (r *Record) OwnerID() string { return r.ID }

func (r *Record) Exists() bool { return r.Persisted }

func (r *Record) TranslatableAttributes() []string {
	return slices.Clone(r.Translatable)
}

func (r *Record) UsesSoftDeletes() bool { return r.SoftDeletes }

func (r *Record) IsForceDeleting() bool { return r.Forcing }
