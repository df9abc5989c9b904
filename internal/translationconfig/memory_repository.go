package translationconfig

import (
	"context"
	"sync"
)

// MemoryRepository keeps the translation switches in-memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	settings    *Settings
	broadcaster *changeBroadcaster
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{broadcaster: newChangeBroadcaster()}
}

func (r *MemoryRepository) Get(context.Context) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return Settings{}, ErrSettingsNotFound
	}
	return *r.settings, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, settings Settings) (Settings, error) {
	r.mu.Lock()
	previous := r.settings
	stored := settings
	r.settings = &stored
	r.mu.Unlock()

	switch {
	case previous == nil:
		r.broadcaster.Broadcast(newChangeEvent(ChangeCreated, settings))
	case *previous != settings:
		r.broadcaster.Broadcast(newChangeEvent(ChangeUpdated, settings))
	}
	return settings, nil
}

func (r *MemoryRepository) Delete(context.Context) error {
	r.mu.Lock()
	if r.settings == nil {
		r.mu.Unlock()
		return ErrSettingsNotFound
	}
	r.settings = nil
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, Settings{}))
	return nil
}

func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}
