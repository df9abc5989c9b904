package translations

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-translatable/internal/identity"
)

type uniqueKey struct {
	ownerType string
	ownerID   string
	attribute string
	locale    string
}

func uniqueKeyOf(row *Translation) uniqueKey {
	return uniqueKey{
		ownerType: row.OwnerType,
		ownerID:   row.OwnerID,
		attribute: row.Attribute,
		locale:    row.Locale,
	}
}

// MemoryRepository is an in-memory Repository for tests and scaffolding. It
// enforces the same uniqueness rule as the SQL schema.
type MemoryRepository struct {
	mu    sync.RWMutex
	rows  map[uniqueKey]*Translation
	clock func() time.Time
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows:  make(map[uniqueKey]*Translation),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Find(_ context.Context, key Key, attribute, locale string) (*Translation, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[uniqueKey{ownerType: key.OwnerType, ownerID: key.OwnerID, attribute: attribute, locale: locale}]
	if !ok {
		return nil, &NotFoundError{Key: key, Attribute: attribute, Locale: locale}
	}
	return cloneTranslation(row), nil
}

func (m *MemoryRepository) ListForOwner(_ context.Context, key Key, locale string) ([]*Translation, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Translation
	for k, row := range m.rows {
		if k.ownerType != key.OwnerType || k.ownerID != key.OwnerID {
			continue
		}
		if locale != "" && k.locale != locale {
			continue
		}
		out = append(out, cloneTranslation(row))
	}
	sortRows(out)
	return out, nil
}

func (m *MemoryRepository) ListForOwners(_ context.Context, ownerType string, ownerIDs []string, locale string) ([]*Translation, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Translation
	for k, row := range m.rows {
		if k.ownerType != ownerType || k.locale != locale || !slices.Contains(ownerIDs, k.ownerID) {
			continue
		}
		out = append(out, cloneTranslation(row))
	}
	sortRows(out)
	return out, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, rows []*Translation) ([]*Translation, error) {
	batch := dedupe(rows)
	if len(batch) == 0 {
		return nil, nil
	}
	for _, row := range batch {
		if err := validateKey(Key{OwnerType: row.OwnerType, OwnerID: row.OwnerID}); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	out := make([]*Translation, 0, len(batch))
	for _, row := range batch {
		k := uniqueKeyOf(row)
		stored := cloneTranslation(row)
		if existing, ok := m.rows[k]; ok {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
		} else {
			stored.ID = identity.TranslationUUID(row.OwnerType, row.OwnerID, row.Attribute, row.Locale)
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now
		m.rows[k] = stored
		out = append(out, cloneTranslation(stored))
	}
	return out, nil
}

func (m *MemoryRepository) DeleteForOwner(_ context.Context, key Key) (int, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k := range m.rows {
		if k.ownerType == key.OwnerType && k.ownerID == key.OwnerID {
			delete(m.rows, k)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryRepository) FindOwnerIDs(_ context.Context, ownerType, attribute, locale, value string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for k, row := range m.rows {
		if k.ownerType != ownerType || k.attribute != attribute || k.locale != locale {
			continue
		}
		if row.Value != nil && *row.Value == value {
			ids = append(ids, k.ownerID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Len returns the number of stored rows.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// dedupe keeps the last row per uniqueness key, preserving first-seen order.
func dedupe(rows []*Translation) []*Translation {
	index := make(map[uniqueKey]int, len(rows))
	out := make([]*Translation, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		k := uniqueKeyOf(row)
		if pos, ok := index[k]; ok {
			out[pos] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

func sortRows(rows []*Translation) {
	slices.SortFunc(rows, func(a, b *Translation) int {
		if c := strings.Compare(a.OwnerID, b.OwnerID); c != 0 {
			return c
		}
		if c := strings.Compare(a.Locale, b.Locale); c != 0 {
			return c
		}
		return strings.Compare(a.Attribute, b.Attribute)
	})
}
