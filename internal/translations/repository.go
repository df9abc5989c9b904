package translations

import (
	"context"
	"errors"
	"fmt"
)

// ErrOwnerKeyRequired indicates a lookup without owner type or id.
var ErrOwnerKeyRequired = errors.New("translations: owner type and id are required")

// Repository persists translation rows.
type Repository interface {
	// Find returns the row for the uniqueness key or a *NotFoundError.
	Find(ctx context.Context, key Key, attribute, locale string) (*Translation, error)
	// ListForOwner returns the owner's rows, optionally restricted to locale.
	ListForOwner(ctx context.Context, key Key, locale string) ([]*Translation, error)
	// ListForOwners returns the rows of many owners of one type in one locale.
	ListForOwners(ctx context.Context, ownerType string, ownerIDs []string, locale string) ([]*Translation, error)
	// Upsert inserts or updates every row in a single store round trip.
	Upsert(ctx context.Context, rows []*Translation) ([]*Translation, error)
	// DeleteForOwner removes every row of the owner and returns the count.
	DeleteForOwner(ctx context.Context, key Key) (int, error)
	// FindOwnerIDs returns owner ids whose attribute equals value in locale.
	FindOwnerIDs(ctx context.Context, ownerType, attribute, locale, value string) ([]string, error)
}

// NotFoundError reports a missing translation row.
type NotFoundError struct {
	Key       Key
	Attribute string
	Locale    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("translations: %s/%s %s[%s] not found", e.Key.OwnerType, e.Key.OwnerID, e.Attribute, e.Locale)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func validateKey(key Key) error {
	if key.OwnerType == "" || key.OwnerID == "" {
		return ErrOwnerKeyRequired
	}
	return nil
}
