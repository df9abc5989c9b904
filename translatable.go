package translatable

import (
	"context"

	"github.com/goliatone/go-translatable/internal/audit"
	"github.com/goliatone/go-translatable/internal/commands"
	translationcmd "github.com/goliatone/go-translatable/internal/commands/translations"
	"github.com/goliatone/go-translatable/internal/di"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/posts"
	"github.com/goliatone/go-translatable/internal/seed"
	captranslatable "github.com/goliatone/go-translatable/internal/translatable"
	"github.com/goliatone/go-translatable/internal/translationconfig"
	"github.com/goliatone/go-translatable/internal/translator"
)

// PostService exports the posts service contract.
type PostService = posts.Service

// Post exports the translatable post record.
type Post = posts.Post

// CreatePostRequest exports the post creation payload.
type CreatePostRequest = posts.CreatePostRequest

// Capability exports the per-record translation capability.
type Capability = captranslatable.Capability

// TranslatorService exports the translation store service.
type TranslatorService = *translator.Service

// NotFoundEvent exports the payload handed to missing-translation observers.
type NotFoundEvent = translator.NotFoundEvent

// NotTranslatableAttributeError exports the undeclared-attribute error.
type NotTranslatableAttributeError = captranslatable.NotTranslatableAttributeError

// Settings exports the persisted translation switches.
type Settings = translationconfig.Settings

// AuditEvent exports a recorded settings change.
type AuditEvent = audit.Event

// Fixture exports the seed fixture format.
type Fixture = seed.Fixture

type (
	TranslateCommand     = translationcmd.TranslateCommand
	TranslateManyCommand = translationcmd.TranslateManyCommand
	DeletePostCommand    = translationcmd.DeletePostCommand
)

var (
	// ErrNotTranslatableAttribute is matched by errors.Is for undeclared attributes.
	ErrNotTranslatableAttribute = captranslatable.ErrNotTranslatableAttribute
	// ErrLocaleUnsupported indicates a locale outside the configured set.
	ErrLocaleUnsupported = locale.ErrLocaleUnsupported
)

// Option exports DI overrides.
type Option = di.Option

var (
	WithBunDB                 = di.WithBunDB
	WithCache                 = di.WithCache
	WithLoggerProvider        = di.WithLoggerProvider
	WithTranslationRepository = di.WithTranslationRepository
	WithSettingsRepository    = di.WithSettingsRepository
	WithIDGenerator           = di.WithIDGenerator
	WithAuditRecorder         = di.WithAuditRecorder
	WithoutSchema             = di.WithoutSchema
)

// WithLocale returns a context whose active locale is code.
func WithLocale(ctx context.Context, code string) context.Context {
	return locale.WithLocale(ctx, code)
}

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional DI overrides.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Posts returns the posts service.
func (m *Module) Posts() PostService {
	return m.container.PostService()
}

// Translator returns the translator service.
func (m *Module) Translator() TranslatorService {
	return m.container.Translator()
}

// DefaultLocale returns the configured default locale.
func (m *Module) DefaultLocale() string {
	return m.container.LocaleResolver().Default()
}

// SetLocale changes the process-wide active locale.
func (m *Module) SetLocale(code string) error {
	return m.container.LocaleResolver().SetActive(code)
}

// OnMissingTranslation registers an observer for absent translations.
func (m *Module) OnMissingTranslation(fn func(context.Context, NotFoundEvent)) {
	m.container.Translator().OnMissing(fn)
}

// UpdateSettings persists new global switches. Running capabilities see the
// change once the settings watcher applies it.
func (m *Module) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	return m.container.SettingsAdmin().ApplySettings(ctx, settings)
}

// AuditEvents lists recorded settings changes.
func (m *Module) AuditEvents(ctx context.Context) ([]AuditEvent, error) {
	return m.container.AuditRecorder().List(ctx)
}

// Settings reports the switches currently in effect.
func (m *Module) Settings() Settings {
	return m.container.Settings().Settings()
}

// Seed creates the fixture posts and their translations.
func (m *Module) Seed(ctx context.Context, fx *Fixture) ([]*Post, error) {
	return seed.Apply(ctx, m.container.PostService(), fx)
}

// DefaultFixture returns the built-in demo fixture.
func DefaultFixture() (*Fixture, error) {
	return seed.DefaultFixture()
}

// TranslateHandler returns the single-attribute command handler, nil when
// commands are disabled.
func (m *Module) TranslateHandler() *commands.Handler[TranslateCommand] {
	return m.container.TranslateHandler()
}

// TranslateManyHandler returns the batch command handler, nil when commands
// are disabled.
func (m *Module) TranslateManyHandler() *commands.Handler[TranslateManyCommand] {
	return m.container.TranslateManyHandler()
}

// DeletePostHandler returns the delete command handler, nil when commands are
// disabled.
func (m *Module) DeletePostHandler() *commands.Handler[DeletePostCommand] {
	return m.container.DeletePostHandler()
}
