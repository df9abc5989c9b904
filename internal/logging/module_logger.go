package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	rootModule       = "translatable"
	translatorModule = "translatable.translator"
	capabilityModule = "translatable.capability"
	eagerLoadModule  = "translatable.eagerload"
	postsModule      = "translatable.posts"
	storageModule    = "translatable.storage"
)

const (
	fieldOwnerType = "owner_type"
	fieldOwnerID   = "owner_id"
	fieldAttribute = "attribute"
	fieldLocale    = "locale"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TranslatorLogger returns the logger namespace reserved for the translator service.
func TranslatorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translatorModule)
}

// CapabilityLogger returns the logger namespace used by record capabilities.
func CapabilityLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, capabilityModule)
}

// EagerLoadLogger returns the logger namespace used by the eager-load policy.
func EagerLoadLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, eagerLoadModule)
}

// PostsLogger returns the logger namespace reserved for the posts module.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// StorageLogger returns the logger namespace used while bootstrapping storage.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// WithTranslationContext enriches the logger with the owner, attribute and
// locale of a translation operation. Empty values are ignored.
func WithTranslationContext(logger interfaces.Logger, ownerType, ownerID, attribute, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(ownerType); trimmed != "" {
		fields[fieldOwnerType] = trimmed
	}
	if trimmed := strings.TrimSpace(ownerID); trimmed != "" {
		fields[fieldOwnerID] = trimmed
	}
	if trimmed := strings.TrimSpace(attribute); trimmed != "" {
		fields[fieldAttribute] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
