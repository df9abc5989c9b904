package attributes

import (
	"maps"
	"sort"
)

// Mutator transforms a value on its way into storage.
type Mutator func(value any) (any, error)

// Accessor transforms a stored value on its way out.
type Accessor func(value any) any

// Bag is a map-backed attribute store with per-attribute mutator and
// accessor pipelines. It is not safe for concurrent use.
type Bag struct {
	values    map[string]any
	mutators  map[string]Mutator
	accessors map[string]Accessor
}

// NewBag returns a bag seeded with values.
func NewBag(values map[string]any) *Bag {
	b := &Bag{
		values:    make(map[string]any, len(values)),
		mutators:  map[string]Mutator{},
		accessors: map[string]Accessor{},
	}
	maps.Copy(b.values, values)
	return b
}

// Mutate registers the set pipeline for name.
func (b *Bag) Mutate(name string, fn Mutator) *Bag {
	if fn != nil {
		b.mutators[name] = fn
	}
	return b
}

// Access registers the get pipeline for name.
func (b *Bag) Access(name string, fn Accessor) *Bag {
	if fn != nil {
		b.accessors[name] = fn
	}
	return b
}

func (b *Bag) RawAttribute(name string) any {
	return b.values[name]
}

func (b *Bag) SetRawAttribute(name string, value any) {
	if value == nil {
		delete(b.values, name)
		return
	}
	b.values[name] = value
}

// Attribute returns the stored value passed through the accessor.
func (b *Bag) Attribute(name string) any {
	value := b.values[name]
	if fn, ok := b.accessors[name]; ok {
		return fn(value)
	}
	return value
}

// SetAttribute runs value through the mutator and stores the result.
func (b *Bag) SetAttribute(name string, value any) error {
	if fn, ok := b.mutators[name]; ok {
		mutated, err := fn(value)
		if err != nil {
			return err
		}
		value = mutated
	}
	b.SetRawAttribute(name, value)
	return nil
}

// AttributesMap returns a copy of the stored values.
func (b *Bag) AttributesMap() map[string]any {
	return maps.Clone(b.values)
}

// Keys returns the stored attribute names in sorted order.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for key := range b.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
