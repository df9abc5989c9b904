package translatable

import (
	"errors"
	"fmt"
)

// ErrNotTranslatableAttribute is the sentinel behind NotTranslatableAttributeError.
var ErrNotTranslatableAttribute = errors.New("translatable: attribute is not translatable")

// NotTranslatableAttributeError reports an explicit translation call for an
// attribute the owner does not declare.
type NotTranslatableAttributeError struct {
	OwnerType string
	Attribute string
}

func (e *NotTranslatableAttributeError) Error() string {
	return fmt.Sprintf("translatable: attribute %q is not translatable on %s", e.Attribute, e.OwnerType)
}

func (e *NotTranslatableAttributeError) Unwrap() error {
	return ErrNotTranslatableAttribute
}
