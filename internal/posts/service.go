package posts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/eagerload"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/translatable"
	"github.com/goliatone/go-translatable/internal/translator"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Service exposes post use-cases with transparent translation.
type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (*Post, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Save(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ForceDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*Post, error)
}

// CreatePostRequest captures the native, default-locale values of a post.
type CreatePostRequest struct {
	Slug string
	Body string
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithSwitches sets the auto-load/auto-save switches handed to capabilities.
func WithSwitches(switches translatable.Switches) ServiceOption {
	return func(s *service) {
		s.switches = switches
	}
}

// WithPolicy sets the eager-load policy used to preload translations for
// repositories that cannot eager load them.
func WithPolicy(policy *eagerload.Policy) ServiceOption {
	return func(s *service) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides how post ids are minted.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

type service struct {
	repo       Repository
	translator *translator.Service
	policy     *eagerload.Policy
	switches   translatable.Switches
	logger     interfaces.Logger
	id         func() uuid.UUID
}

// NewService wires a post service.
func NewService(repo Repository, tr *translator.Service, opts ...ServiceOption) Service {
	s := &service{
		repo:       repo,
		translator: tr,
		logger:     logging.NoOp(),
		id:         uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.policy == nil {
		s.policy = eagerload.NewPolicy(tr.Resolver(), s.switches)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if strings.TrimSpace(req.Slug) == "" {
		return nil, ErrSlugRequired
	}
	post := &Post{ID: s.id()}
	if err := post.SetAttribute(AttributeSlug, req.Slug); err != nil {
		return nil, err
	}
	if err := post.SetAttribute(AttributeBody, req.Body); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	created.persisted = true
	s.attach(created)
	s.logger.Info("post created", "post_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) List(ctx context.Context) ([]*Post, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, records...); err != nil {
		return nil, err
	}
	return records, nil
}

// GetBySlug resolves a post by its slug in the active locale. A translated
// slug wins over a native slug equal to the same text.
func (s *service) GetBySlug(ctx context.Context, value string) (*Post, error) {
	code := s.translator.Locale(ctx)
	if !s.translator.IsDefaultLocale(code) {
		ids, err := s.translator.FindOwnerIDs(ctx, OwnerType, AttributeSlug, code, value)
		if err != nil {
			return nil, err
		}
		for _, raw := range ids {
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			post, err := s.Get(ctx, id)
			if IsNotFound(err) {
				continue
			}
			return post, err
		}
	}

	post, err := s.repo.GetBySlug(ctx, value)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Save flushes staged translations then persists the native row.
func (s *service) Save(ctx context.Context, post *Post) (*Post, error) {
	if post == nil || post.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	if post.capability == nil {
		s.attach(post)
	}
	if err := s.ensureSlugAvailable(ctx, post); err != nil {
		return nil, err
	}
	if err := post.capability.BeforeSave(ctx); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, err
	}
	post.UpdatedAt = updated.UpdatedAt
	return post, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return post.capability.AfterDelete(ctx)
}

func (s *service) ForceDelete(ctx context.Context, id uuid.UUID) error {
	post, err := s.repo.GetWithDeleted(ctx, id)
	if err != nil {
		return err
	}
	post.persisted = true
	post.forceDeleting = true
	s.attach(post)
	if err := s.repo.ForceDelete(ctx, id); err != nil {
		return err
	}
	return post.capability.AfterDelete(ctx)
}

func (s *service) Restore(ctx context.Context, id uuid.UUID) (*Post, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// hydrate attaches capabilities and preloads translations for posts the
// repository did not eager load, with one query for the whole batch.
func (s *service) hydrate(ctx context.Context, records ...*Post) error {
	for _, post := range records {
		post.persisted = true
		s.attach(post)
	}
	code, ok := s.policy.ShouldLoad(ctx, describer)
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(records))
	for _, post := range records {
		if _, loaded := post.LoadedTranslations(code); !loaded {
			ids = append(ids, post.OwnerID())
		}
	}
	if len(ids) == 0 {
		return nil
	}
	grouped, err := s.translator.Preload(ctx, OwnerType, ids, code)
	if err != nil {
		return err
	}
	for _, post := range records {
		if rows, found := grouped[post.OwnerID()]; found {
			post.capability.Seed(code, rows)
		}
	}
	return nil
}

func (s *service) attach(post *Post) {
	post.capability = translatable.New(post, s.translator,
		translatable.WithSwitches(s.switches),
		translatable.WithLogger(s.logger),
		translatable.WithSaver(func(ctx context.Context) error {
			_, err := s.Save(ctx, post)
			return err
		}),
	)
}

func (s *service) ensureSlugAvailable(ctx context.Context, post *Post) error {
	existing, err := s.repo.GetBySlug(ctx, post.Slug)
	switch {
	case err == nil && existing.ID != post.ID:
		return ErrSlugExists
	case err == nil, IsNotFound(err):
		return nil
	default:
		return err
	}
}
