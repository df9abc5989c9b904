package translationconfig

import (
	"context"
	"sync"
	"sync/atomic"
)

// AttributeOverride pins the switches of one attribute. nil fields inherit
// the global value.
type AttributeOverride struct {
	AutoLoad *bool
	AutoSave *bool
}

// State is a concurrency-safe view of the translation switches. Overrides
// are keyed by "<owner_type>.<attribute>" or a bare attribute name.
type State struct {
	autoLoad  atomic.Bool
	autoSave  atomic.Bool
	mu        sync.RWMutex
	overrides map[string]AttributeOverride
}

// NewState constructs a state seeded with settings and overrides.
func NewState(settings Settings, overrides map[string]AttributeOverride) *State {
	st := &State{overrides: make(map[string]AttributeOverride, len(overrides))}
	st.Apply(settings)
	for key, override := range overrides {
		st.overrides[key] = override
	}
	return st
}

// Apply replaces the global switches.
func (s *State) Apply(settings Settings) {
	if s == nil {
		return
	}
	s.autoLoad.Store(settings.AutoLoad)
	s.autoSave.Store(settings.AutoSave)
}

// Settings returns the current global switches.
func (s *State) Settings() Settings {
	if s == nil {
		return Settings{}
	}
	return Settings{AutoLoad: s.autoLoad.Load(), AutoSave: s.autoSave.Load()}
}

// SetOverride pins the switches of key.
func (s *State) SetOverride(key string, override AttributeOverride) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.overrides[key] = override
	s.mu.Unlock()
}

// AutoLoad reports whether reads of ownerType.attribute resolve translations.
// A nil state disables nothing.
func (s *State) AutoLoad(ownerType, attribute string) bool {
	if s == nil {
		return true
	}
	if override, ok := s.override(ownerType, attribute); ok && override.AutoLoad != nil {
		return *override.AutoLoad
	}
	return s.autoLoad.Load()
}

// AutoSave reports whether writes of ownerType.attribute are staged as
// translations.
func (s *State) AutoSave(ownerType, attribute string) bool {
	if s == nil {
		return true
	}
	if override, ok := s.override(ownerType, attribute); ok && override.AutoSave != nil {
		return *override.AutoSave
	}
	return s.autoSave.Load()
}

// Watch applies every change published by repo until ctx is cancelled.
func (s *State) Watch(ctx context.Context, repo Repository) error {
	if s == nil || repo == nil {
		return nil
	}
	events, err := repo.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for evt := range events {
			if evt.Type == ChangeDeleted {
				continue
			}
			s.Apply(evt.Settings)
		}
	}()
	return nil
}

func (s *State) override(ownerType, attribute string) (AttributeOverride, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.overrides) == 0 {
		return AttributeOverride{}, false
	}
	if ownerType != "" {
		if override, ok := s.overrides[ownerType+"."+attribute]; ok {
			return override, true
		}
	}
	override, ok := s.overrides[attribute]
	return override, ok
}
