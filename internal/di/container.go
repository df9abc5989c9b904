package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	admintranslations "github.com/goliatone/go-translatable/internal/admin/translations"
	"github.com/goliatone/go-translatable/internal/audit"
	"github.com/goliatone/go-translatable/internal/commands"
	translationcmd "github.com/goliatone/go-translatable/internal/commands/translations"
	"github.com/goliatone/go-translatable/internal/eagerload"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/logging/console"
	"github.com/goliatone/go-translatable/internal/logging/gologger"
	"github.com/goliatone/go-translatable/internal/migrations"
	"github.com/goliatone/go-translatable/internal/posts"
	"github.com/goliatone/go-translatable/internal/runtimeconfig"
	"github.com/goliatone/go-translatable/internal/translationconfig"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/internal/translator"
	"github.com/goliatone/go-translatable/pkg/interfaces"
	"github.com/goliatone/go-translatable/pkg/storage"
)

// Container wires module dependencies. Without a storage driver every
// repository is memory backed.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	bunDB          *bun.DB
	ownsDB         bool
	skipSchema     bool

	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	resolver        *locale.Resolver
	settingsRepo    translationconfig.Repository
	state           *translationconfig.State
	auditRecorder   audit.Recorder
	settingsAdmin   *admintranslations.Service
	translationRepo translations.Repository
	translator      *translator.Service
	policy          *eagerload.Policy
	postRepo        posts.Repository
	postSvc         posts.Service
	idGenerator     func() uuid.UUID

	translateHandler     *commands.Handler[translationcmd.TranslateCommand]
	translateManyHandler *commands.Handler[translationcmd.TranslateManyCommand]
	deletePostHandler    *commands.Handler[translationcmd.DeletePostCommand]

	cancelWatch context.CancelFunc
}

// Option mutates the container before initialisation.
type Option func(*Container)

// WithBunDB binds an existing database. The caller keeps ownership of it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider derived from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithTranslationRepository overrides the translation store.
func WithTranslationRepository(repo translations.Repository) Option {
	return func(c *Container) {
		c.translationRepo = repo
	}
}

// WithSettingsRepository overrides the settings store.
func WithSettingsRepository(repo translationconfig.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithAuditRecorder overrides the in-memory audit trail.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(c *Container) {
		c.auditRecorder = recorder
	}
}

// WithIDGenerator overrides the post id generator.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(c *Container) {
		c.idGenerator = fn
	}
}

// WithoutSchema skips table creation for databases managed elsewhere.
func WithoutSchema() Option {
	return func(c *Container) {
		c.skipSchema = true
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func(context.Context) error{
		c.configureLogger,
		c.configureStorage,
		c.configureSchema,
		c.configureCacheDefaults,
		c.configureLocales,
		c.configureSettings,
		c.configureRepositories,
		c.configureServices,
		c.configureCommands,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogger(context.Context) error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure logger: %w", err)
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			Writer:   os.Stdout,
			MinLevel: &level,
		})
	}
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB != nil || strings.TrimSpace(c.Config.Storage.Driver) == "" {
		return nil
	}
	db, err := storage.Open(ctx, storage.Config{
		Driver: c.Config.Storage.Driver,
		DSN:    c.Config.Storage.DSN,
		Logger: logging.StorageLogger(c.loggerProvider),
	})
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureSchema(ctx context.Context) error {
	if c.bunDB == nil || c.skipSchema {
		return nil
	}
	return migrations.Default().Apply(ctx, c.bunDB, logging.StorageLogger(c.loggerProvider))
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureLocales(context.Context) error {
	c.resolver = locale.NewResolver(locale.Config{
		DefaultLocale: c.Config.DefaultLocale,
		Locales:       c.Config.Locales,
	})
	return nil
}

// configureSettings seeds the settings store from config on first boot and
// keeps the in-process switches in sync with later writes.
func (c *Container) configureSettings(ctx context.Context) error {
	if c.settingsRepo == nil {
		if c.bunDB != nil {
			c.settingsRepo = translationconfig.NewBunRepository(c.bunDB)
		} else {
			c.settingsRepo = translationconfig.NewMemoryRepository()
		}
	}

	if c.auditRecorder == nil {
		c.auditRecorder = audit.NewInMemoryRecorder()
	}
	c.settingsAdmin = admintranslations.NewService(c.settingsRepo, c.auditRecorder)

	settings, err := c.settingsAdmin.GetSettings(ctx)
	switch {
	case errors.Is(err, translationconfig.ErrSettingsNotFound):
		settings, err = c.settingsAdmin.ApplySettings(ctx, translationconfig.Settings{
			AutoLoad: c.Config.Translations.AutoLoad,
			AutoSave: c.Config.Translations.AutoSave,
		})
		if err != nil {
			return fmt.Errorf("di: seed translation settings: %w", err)
		}
	case err != nil:
		return fmt.Errorf("di: load translation settings: %w", err)
	}

	c.state = translationconfig.NewState(settings, attributeOverrides(c.Config.Translations.Attributes))

	watchCtx, cancel := context.WithCancel(context.Background())
	if err := c.state.Watch(watchCtx, c.settingsRepo); err != nil {
		cancel()
		return fmt.Errorf("di: watch translation settings: %w", err)
	}
	c.cancelWatch = cancel
	return nil
}

func (c *Container) configureRepositories(context.Context) error {
	if c.translationRepo == nil {
		if c.bunDB != nil {
			c.translationRepo = translations.NewBunRepository(c.bunDB)
		} else {
			c.translationRepo = translations.NewMemoryRepository()
		}
	}

	c.policy = eagerload.NewPolicy(c.resolver, c.state, eagerload.WithLogger(logging.EagerLoadLogger(c.loggerProvider)))

	if c.bunDB != nil {
		c.postRepo = posts.NewBunRepositoryWithCache(c.bunDB, c.policy, c.cacheService, c.keySerializer)
	} else {
		c.postRepo = posts.NewMemoryRepository()
	}
	return nil
}

func (c *Container) configureServices(context.Context) error {
	svc, err := translator.NewService(c.translationRepo,
		translator.WithResolver(c.resolver),
		translator.WithLogger(logging.TranslatorLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.translator = svc

	c.postSvc = posts.NewService(c.postRepo, c.translator,
		posts.WithSwitches(c.state),
		posts.WithPolicy(c.policy),
		posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
		posts.WithIDGenerator(c.idGenerator),
	)
	return nil
}

func (c *Container) configureCommands(context.Context) error {
	if !c.Config.Features.Commands {
		return nil
	}
	logger := commands.CommandLogger(c.loggerProvider, "translations")
	c.translateHandler = translationcmd.NewTranslateHandler(c.postSvc, logger,
		commands.WithTelemetry(commands.LoggingTelemetry[translationcmd.TranslateCommand](logger)))
	c.translateManyHandler = translationcmd.NewTranslateManyHandler(c.postSvc, logger,
		commands.WithTelemetry(commands.LoggingTelemetry[translationcmd.TranslateManyCommand](logger)))
	c.deletePostHandler = translationcmd.NewDeletePostHandler(c.postSvc, logger,
		commands.WithTelemetry(commands.LoggingTelemetry[translationcmd.DeletePostCommand](logger)))
	return nil
}

func attributeOverrides(in map[string]runtimeconfig.AttributeConfig) map[string]translationconfig.AttributeOverride {
	out := make(map[string]translationconfig.AttributeOverride, len(in))
	for key, cfg := range in {
		out[key] = translationconfig.AttributeOverride{AutoLoad: cfg.AutoLoad, AutoSave: cfg.AutoSave}
	}
	return out
}

// Close stops the settings watcher and releases a database the container opened.
func (c *Container) Close() error {
	if c.cancelWatch != nil {
		c.cancelWatch()
		c.cancelWatch = nil
	}
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}

// LoggerProvider returns the configured provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module logger for name.
func (c *Container) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, name)
}

// BunDB returns the bound database, nil for memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// CacheService returns the repository cache, nil when disabled.
func (c *Container) CacheService() repocache.CacheService {
	return c.cacheService
}

// LocaleResolver returns the locale resolver.
func (c *Container) LocaleResolver() *locale.Resolver {
	return c.resolver
}

// Settings returns the live translation switches.
func (c *Container) Settings() *translationconfig.State {
	return c.state
}

// SettingsRepository returns the settings store.
func (c *Container) SettingsRepository() translationconfig.Repository {
	return c.settingsRepo
}

// SettingsAdmin returns the audited settings service.
func (c *Container) SettingsAdmin() *admintranslations.Service {
	return c.settingsAdmin
}

// AuditRecorder returns the audit trail.
func (c *Container) AuditRecorder() audit.Recorder {
	return c.auditRecorder
}

// TranslationRepository returns the translation store.
func (c *Container) TranslationRepository() translations.Repository {
	return c.translationRepo
}

// Translator returns the translator service.
func (c *Container) Translator() *translator.Service {
	return c.translator
}

// EagerLoadPolicy returns the eager-load policy.
func (c *Container) EagerLoadPolicy() *eagerload.Policy {
	return c.policy
}

// PostService returns the posts service.
func (c *Container) PostService() posts.Service {
	return c.postSvc
}

// TranslateHandler returns the single-attribute command handler.
func (c *Container) TranslateHandler() *commands.Handler[translationcmd.TranslateCommand] {
	return c.translateHandler
}

// TranslateManyHandler returns the batch command handler.
func (c *Container) TranslateManyHandler() *commands.Handler[translationcmd.TranslateManyCommand] {
	return c.translateManyHandler
}

// DeletePostHandler returns the delete command handler.
func (c *Container) DeletePostHandler() *commands.Handler[translationcmd.DeletePostCommand] {
	return c.deletePostHandler
}
