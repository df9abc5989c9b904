package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/posts"
	"github.com/goliatone/go-translatable/internal/translationconfig"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

var (
	ErrStepNameRequired = errors.New("migrations: step name is required")
	ErrStepExists       = errors.New("migrations: step already registered")
	ErrStepFuncRequired = errors.New("migrations: step function is required")
)

// StepFunc applies one schema step. Steps must be idempotent.
type StepFunc func(ctx context.Context, db bun.IDB) error

type step struct {
	name string
	fn   StepFunc
}

// Registry runs named schema steps in registration order.
type Registry struct {
	mu    sync.RWMutex
	steps []step
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default returns a registry holding the translations, settings and posts
// schemas.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("translations", translations.CreateSchema)
	_ = r.Register("settings", translationconfig.CreateSchema)
	_ = r.Register("posts", posts.CreateSchema)
	return r
}

// Register appends a step.
func (r *Registry) Register(name string, fn StepFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrStepNameRequired
	}
	if fn == nil {
		return ErrStepFuncRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.steps {
		if existing.name == name {
			return fmt.Errorf("%w: %s", ErrStepExists, name)
		}
	}
	r.steps = append(r.steps, step{name: name, fn: fn})
	return nil
}

// Names lists the registered steps in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steps))
	for _, s := range r.steps {
		names = append(names, s.name)
	}
	return names
}

// Apply runs every step inside one transaction.
func (r *Registry) Apply(ctx context.Context, db *bun.DB, logger interfaces.Logger) error {
	r.mu.RLock()
	steps := append([]step(nil), r.steps...)
	r.mu.RUnlock()

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, s := range steps {
			if err := s.fn(ctx, tx); err != nil {
				return fmt.Errorf("migrations: step %s: %w", s.name, err)
			}
			if logger != nil {
				logger.Debug("schema step applied", "step", s.name)
			}
		}
		return nil
	})
}
