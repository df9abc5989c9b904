package translator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-translatable/internal/identity"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// ErrRepositoryRequired indicates the service was built without a store.
var ErrRepositoryRequired = errors.New("translator: translation repository is required")

// Entry is one staged translation waiting to be persisted.
type Entry struct {
	Locale    string
	Attribute string
	Value     *string
}

// NotFoundEvent describes a lookup that resolved no translation.
type NotFoundEvent struct {
	OwnerType string
	OwnerID   string
	Attribute string
	Locale    string
}

// MissingObserver receives NotFoundEvent notifications.
type MissingObserver func(ctx context.Context, evt NotFoundEvent)

// Option configures a Service.
type Option func(*Service)

// WithResolver sets the locale resolver. Defaults to locale.DefaultResolver.
func WithResolver(resolver *locale.Resolver) Option {
	return func(s *Service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service reads and persists translation rows on behalf of owner records.
type Service struct {
	repo     translations.Repository
	resolver *locale.Resolver
	logger   interfaces.Logger

	mu        sync.RWMutex
	observers []MissingObserver
}

// NewService constructs a translator backed by repo.
func NewService(repo translations.Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	svc := &Service{
		repo:     repo,
		resolver: locale.DefaultResolver(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Resolver exposes the locale resolver used by the service.
func (s *Service) Resolver() *locale.Resolver {
	return s.resolver
}

// Locale returns the active locale for ctx.
func (s *Service) Locale(ctx context.Context) string {
	return s.resolver.Active(ctx)
}

// IsDefaultLocale reports whether code is the default locale.
func (s *Service) IsDefaultLocale(code string) bool {
	return s.resolver.IsDefault(code)
}

// Get returns the stored value of attribute in code. Rows eager loaded on
// the owner are used without touching the store. A NULL row reads as absent.
func (s *Service) Get(ctx context.Context, owner interfaces.Owner, attribute, code string) (*string, bool, error) {
	if carrier, ok := owner.(interfaces.TranslationsCarrier); ok {
		if rows, loaded := carrier.LoadedTranslations(code); loaded {
			for _, row := range rows {
				if row.Attribute == attribute && locale.Normalize(row.Locale) == code {
					return row.Value, row.Value != nil, nil
				}
			}
			return nil, false, nil
		}
	}

	row, err := s.repo.Find(ctx, translations.KeyOf(owner), attribute, code)
	if err != nil {
		if translations.IsNotFound(err) {
			return nil, false, nil
		}
		s.logger.Error("translation lookup failed", "owner_type", owner.OwnerType(), "owner_id", owner.OwnerID(), "attribute", attribute, "locale", code, "error", err)
		return nil, false, err
	}
	s.logger.Debug("translation lookup", "owner_type", owner.OwnerType(), "owner_id", owner.OwnerID(), "attribute", attribute, "locale", code)
	return row.Value, row.Value != nil, nil
}

// Save upserts every entry in a single store call. An empty batch issues no
// query.
func (s *Service) Save(ctx context.Context, owner interfaces.Owner, entries []Entry) ([]*translations.Translation, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	ownerType, ownerID := owner.OwnerType(), owner.OwnerID()
	rows := make([]*translations.Translation, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, &translations.Translation{
			ID:        identity.TranslationUUID(ownerType, ownerID, entry.Attribute, entry.Locale),
			OwnerID:   ownerID,
			OwnerType: ownerType,
			Attribute: entry.Attribute,
			Locale:    entry.Locale,
			Value:     entry.Value,
		})
	}

	saved, err := s.repo.Upsert(ctx, rows)
	if err != nil {
		s.logger.Error("translation flush failed", "owner_type", ownerType, "owner_id", ownerID, "count", len(rows), "error", err)
		return nil, err
	}
	s.logger.Debug("translations flushed", "owner_type", ownerType, "owner_id", ownerID, "count", len(saved))
	return saved, nil
}

// Delete removes every translation of owner.
func (s *Service) Delete(ctx context.Context, owner interfaces.Owner) (int, error) {
	removed, err := s.repo.DeleteForOwner(ctx, translations.KeyOf(owner))
	if err != nil {
		s.logger.Error("translation delete failed", "owner_type", owner.OwnerType(), "owner_id", owner.OwnerID(), "error", err)
		return 0, err
	}
	s.logger.Info("translations deleted", "owner_type", owner.OwnerType(), "owner_id", owner.OwnerID(), "count", removed)
	return removed, nil
}

// Preload fetches the rows of many owners in one locale with a single
// query, grouped by owner id. Every requested id has an entry.
func (s *Service) Preload(ctx context.Context, ownerType string, ownerIDs []string, code string) (map[string][]interfaces.LoadedTranslation, error) {
	out := make(map[string][]interfaces.LoadedTranslation, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	rows, err := s.repo.ListForOwners(ctx, ownerType, ownerIDs, code)
	if err != nil {
		return nil, fmt.Errorf("translator: preload %s: %w", ownerType, err)
	}
	grouped := make(map[string][]*translations.Translation, len(ownerIDs))
	for _, row := range rows {
		grouped[row.OwnerID] = append(grouped[row.OwnerID], row)
	}
	for _, id := range ownerIDs {
		out[id] = translations.Loaded(grouped[id])
	}
	return out, nil
}

// FindOwnerIDs returns the ids of owners whose attribute translates to value.
func (s *Service) FindOwnerIDs(ctx context.Context, ownerType, attribute, code, value string) ([]string, error) {
	return s.repo.FindOwnerIDs(ctx, ownerType, attribute, code, value)
}

// OnMissing registers an observer for lookups that find no translation.
func (s *Service) OnMissing(observer MissingObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// NotifyMissing runs every observer synchronously. Observer panics are
// recovered and logged.
func (s *Service) NotifyMissing(ctx context.Context, evt NotFoundEvent) {
	s.logger.Debug("translation missing", "owner_type", evt.OwnerType, "owner_id", evt.OwnerID, "attribute", evt.Attribute, "locale", evt.Locale)

	s.mu.RLock()
	observers := append([]MissingObserver(nil), s.observers...)
	s.mu.RUnlock()

	for _, observer := range observers {
		s.runObserver(ctx, observer, evt)
	}
}

func (s *Service) runObserver(ctx context.Context, observer MissingObserver, evt NotFoundEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("missing translation observer panicked", "attribute", evt.Attribute, "locale", evt.Locale, "panic", r)
		}
	}()
	observer(ctx, evt)
}
