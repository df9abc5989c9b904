package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrDefaultLocaleRequired = errors.New("translatable config: default locale is required")
var ErrDefaultLocaleNotListed = errors.New("translatable config: default locale must be listed in locales")
var ErrLocaleInvalid = errors.New("translatable config: locale code is invalid")
var ErrStorageDriverUnknown = errors.New("translatable config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("translatable config: storage dsn is required")
var ErrCacheTTLInvalid = errors.New("translatable config: cache ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("translatable config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("translatable config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("translatable config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("translatable config: logging format is invalid")

// Config aggregates locale policy, translation switches and adapter bindings.
type Config struct {
	DefaultLocale string
	Locales       []string
	Translations  TranslationsConfig
	Storage       StorageConfig
	Cache         CacheConfig
	Logging       LoggingConfig
	Features      Features
}

// TranslationsConfig holds the process-wide translation switches.
type TranslationsConfig struct {
	// AutoLoad resolves translatable attributes on read.
	AutoLoad bool
	// AutoSave stages translatable attribute writes for the active locale.
	AutoSave bool
	// Attributes overrides the switches per attribute. Keys are either
	// "<owner_type>.<attribute>" or a bare attribute name.
	Attributes map[string]AttributeConfig
}

// AttributeConfig overrides the process-wide switches for one attribute.
type AttributeConfig struct {
	AutoLoad *bool
	AutoSave *bool
}

// StorageConfig selects the SQL driver backing repositories.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig captures repository cache toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles optional module functionality.
type Features struct {
	Logger   bool
	Commands bool
}

// DefaultConfig returns defaults suited to an embedded sqlite store.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en"},
		Translations: TranslationsConfig{
			AutoLoad:   true,
			AutoSave:   true,
			Attributes: map[string]AttributeConfig{},
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file::memory:?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	defaultLocale := strings.TrimSpace(cfg.DefaultLocale)
	if defaultLocale == "" {
		return ErrDefaultLocaleRequired
	}
	if err := validation.Validate(cfg.Locales, validation.Each(validation.Required, validation.Length(2, 35))); err != nil {
		return fmt.Errorf("%w: %v", ErrLocaleInvalid, err)
	}
	if len(cfg.Locales) > 0 && !slices.ContainsFunc(cfg.Locales, func(code string) bool {
		return strings.EqualFold(strings.TrimSpace(code), defaultLocale)
	}) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotListed, defaultLocale)
	}

	driver := normalize(cfg.Storage.Driver)
	if driver != "" {
		if !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// AutoLoadFor reports whether ownerType.attribute resolves translations on read.
func (c TranslationsConfig) AutoLoadFor(ownerType, attribute string) bool {
	if override, ok := c.override(ownerType, attribute); ok && override.AutoLoad != nil {
		return *override.AutoLoad
	}
	return c.AutoLoad
}

// AutoSaveFor reports whether ownerType.attribute stages writes as translations.
func (c TranslationsConfig) AutoSaveFor(ownerType, attribute string) bool {
	if override, ok := c.override(ownerType, attribute); ok && override.AutoSave != nil {
		return *override.AutoSave
	}
	return c.AutoSave
}

func (c TranslationsConfig) override(ownerType, attribute string) (AttributeConfig, bool) {
	if len(c.Attributes) == 0 {
		return AttributeConfig{}, false
	}
	if ownerType != "" {
		if cfg, ok := c.Attributes[ownerType+"."+attribute]; ok {
			return cfg, true
		}
	}
	cfg, ok := c.Attributes[attribute]
	return cfg, ok
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite", "sqlite3", "postgres", "pg", "mysql":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
