package locale

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

var (
	// ErrLocaleRequired indicates an empty locale code was supplied.
	ErrLocaleRequired = errors.New("locale: code is required")
	// ErrLocaleUnsupported indicates the code is not part of the configured locales.
	ErrLocaleUnsupported = errors.New("locale: unsupported locale")
)

// Config lists the default locale and the locales a resolver accepts. An
// empty Locales slice accepts any well-formed code.
type Config struct {
	DefaultLocale string
	Locales       []string
}

type contextKey struct{}

// WithLocale returns a context whose active locale is code. Request scoped
// overrides take precedence over the resolver-wide active locale.
func WithLocale(ctx context.Context, code string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, code)
}

// FromContext returns the locale stored by WithLocale.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	code, ok := ctx.Value(contextKey{}).(string)
	if !ok || strings.TrimSpace(code) == "" {
		return "", false
	}
	return code, true
}

// Resolver answers which locale is active and whether a locale is the default.
type Resolver struct {
	mu            sync.RWMutex
	defaultLocale string
	active        string
	supported     map[string]struct{}
}

// NewResolver constructs a resolver whose active locale starts at the default.
func NewResolver(cfg Config) *Resolver {
	def := Normalize(cfg.DefaultLocale)
	if def == "" {
		def = "en"
	}
	supported := make(map[string]struct{}, len(cfg.Locales))
	for _, code := range cfg.Locales {
		if normalized := Normalize(code); normalized != "" {
			supported[normalized] = struct{}{}
		}
	}
	if len(supported) > 0 {
		supported[def] = struct{}{}
	}
	return &Resolver{
		defaultLocale: def,
		active:        def,
		supported:     supported,
	}
}

var (
	defaultResolverOnce sync.Once
	defaultResolver     *Resolver
)

// DefaultResolver returns a process-wide resolver with "en" as the default
// locale, for call sites that have no configuration at hand.
func DefaultResolver() *Resolver {
	defaultResolverOnce.Do(func() {
		defaultResolver = NewResolver(Config{DefaultLocale: "en"})
	})
	return defaultResolver
}

// Default returns the default locale.
func (r *Resolver) Default() string {
	return r.defaultLocale
}

// Active returns the context override when present, else the resolver-wide
// active locale.
func (r *Resolver) Active(ctx context.Context) string {
	if code, ok := FromContext(ctx); ok {
		return Normalize(code)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive changes the resolver-wide active locale.
func (r *Resolver) SetActive(code string) error {
	normalized := Normalize(code)
	if normalized == "" {
		return ErrLocaleRequired
	}
	if !r.IsSupported(normalized) {
		return ErrLocaleUnsupported
	}
	r.mu.Lock()
	r.active = normalized
	r.mu.Unlock()
	return nil
}

// Resolve returns code normalized, or the active locale when code is blank.
func (r *Resolver) Resolve(ctx context.Context, code string) string {
	if normalized := Normalize(code); normalized != "" {
		return normalized
	}
	return r.Active(ctx)
}

// IsDefault reports whether code is the default locale.
func (r *Resolver) IsDefault(code string) bool {
	return Normalize(code) == r.defaultLocale
}

// IsActiveDefault reports whether the active locale for ctx is the default.
func (r *Resolver) IsActiveDefault(ctx context.Context) bool {
	return r.IsDefault(r.Active(ctx))
}

// IsSupported reports whether code is accepted by the resolver.
func (r *Resolver) IsSupported(code string) bool {
	normalized := Normalize(code)
	if normalized == "" {
		return false
	}
	if len(r.supported) == 0 {
		return true
	}
	_, ok := r.supported[normalized]
	return ok
}

// Normalize canonicalises a locale code to its BCP 47 form ("pt_br" becomes
// "pt-BR"). Codes that do not parse are lower-cased and trimmed.
func Normalize(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return strings.ToLower(trimmed)
	}
	return tag.String()
}
