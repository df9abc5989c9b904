package translationconfig

import (
	"context"
	"errors"
)

// ErrSettingsNotFound indicates that translation settings have not been persisted yet.
var ErrSettingsNotFound = errors.New("translationconfig: settings not found")

// Settings capture the process-wide translation switches.
type Settings struct {
	AutoLoad bool
	AutoSave bool
}

// Repository persists translation settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates settings change events.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports settings mutations to subscribers.
type ChangeEvent struct {
	Type     ChangeType
	Settings Settings
}

func newChangeEvent(changeType ChangeType, settings Settings) ChangeEvent {
	return ChangeEvent{Type: changeType, Settings: settings}
}
