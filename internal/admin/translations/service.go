package translations

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-translatable/internal/audit"
	"github.com/goliatone/go-translatable/internal/translationconfig"
)

// ErrRepositoryRequired indicates the service was constructed without a repository.
var ErrRepositoryRequired = errors.New("admintranslations: repository is required")

const (
	entityType = "translation_settings"
	entityID   = "global"
)

// Option mutates the service configuration.
type Option func(*Service)

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Service persists translation switches and records an audit trail.
type Service struct {
	repo  translationconfig.Repository
	audit audit.Recorder
	clock func() time.Time
}

// NewService constructs a settings admin service. A nil recorder disables
// auditing.
func NewService(repo translationconfig.Repository, recorder audit.Recorder, opts ...Option) *Service {
	svc := &Service{
		repo:  repo,
		audit: recorder,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GetSettings returns the stored translation settings.
func (s *Service) GetSettings(ctx context.Context) (translationconfig.Settings, error) {
	if s.repo == nil {
		return translationconfig.Settings{}, ErrRepositoryRequired
	}
	return s.repo.Get(ctx)
}

// ApplySettings stores settings and records whether they were created or
// updated.
func (s *Service) ApplySettings(ctx context.Context, settings translationconfig.Settings) (translationconfig.Settings, error) {
	if s.repo == nil {
		return translationconfig.Settings{}, ErrRepositoryRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	action := "translation_settings_updated"
	previous, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, translationconfig.ErrSettingsNotFound):
		action = "translation_settings_created"
	case err != nil:
		return translationconfig.Settings{}, err
	}

	stored, err := s.repo.Upsert(ctx, settings)
	if err != nil {
		return translationconfig.Settings{}, err
	}

	metadata := map[string]any{
		"auto_load": stored.AutoLoad,
		"auto_save": stored.AutoSave,
	}
	if action == "translation_settings_updated" {
		metadata["previous_auto_load"] = previous.AutoLoad
		metadata["previous_auto_save"] = previous.AutoSave
	}
	s.recordAudit(ctx, audit.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Metadata:   metadata,
	})
	return stored, nil
}

// Reset clears the stored settings.
func (s *Service) Reset(ctx context.Context) error {
	if s.repo == nil {
		return ErrRepositoryRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.repo.Delete(ctx); err != nil {
		return err
	}

	s.recordAudit(ctx, audit.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     "translation_settings_deleted",
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock()
	}
	_ = s.audit.Record(ctx, event)
}
