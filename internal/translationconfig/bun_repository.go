package translationconfig

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var errNoDatabase = errors.New("translationconfig: bun repository requires a database")

const settingsRowID = 1

// BunRepository persists the translation switches in a single-row table.
type BunRepository struct {
	db          *bun.DB
	broadcaster *changeBroadcaster
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, broadcaster: newChangeBroadcaster()}
}

// CreateSchema creates the settings table.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*settingsModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunRepository) Get(ctx context.Context) (Settings, error) {
	model, err := r.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Settings{AutoLoad: model.AutoLoad, AutoSave: model.AutoSave}, nil
}

func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if r.db == nil {
		return Settings{}, errNoDatabase
	}

	previous, err := r.Get(ctx)
	created := errors.Is(err, ErrSettingsNotFound)
	if err != nil && !created {
		return Settings{}, err
	}

	model := &settingsModel{
		ID:        settingsRowID,
		AutoLoad:  settings.AutoLoad,
		AutoSave:  settings.AutoSave,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("auto_load = EXCLUDED.auto_load").
		Set("auto_save = EXCLUDED.auto_save").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return Settings{}, err
	}

	switch {
	case created:
		r.broadcaster.Broadcast(newChangeEvent(ChangeCreated, settings))
	case previous != settings:
		r.broadcaster.Broadcast(newChangeEvent(ChangeUpdated, settings))
	}
	return settings, nil
}

func (r *BunRepository) Delete(ctx context.Context) error {
	if _, err := r.load(ctx); err != nil {
		return err
	}
	if _, err := r.db.NewDelete().
		Model((*settingsModel)(nil)).
		Where("id = ?", settingsRowID).
		Exec(ctx); err != nil {
		return err
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, Settings{}))
	return nil
}

func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func (r *BunRepository) load(ctx context.Context) (*settingsModel, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	model := new(settingsModel)
	if err := r.db.NewSelect().Model(model).Where("id = ?", settingsRowID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return model, nil
}

type settingsModel struct {
	bun.BaseModel `bun:"table:translatable_settings"`

	ID        int       `bun:",pk"`
	AutoLoad  bool      `bun:"auto_load,notnull"`
	AutoSave  bool      `bun:"auto_save,notnull"`
	UpdatedAt time.Time `bun:"updated_at"`
}
