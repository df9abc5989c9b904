package runtimeconfig

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{
			name:   "missing default locale",
			mutate: func(c *Config) { c.DefaultLocale = " " },
			want:   ErrDefaultLocaleRequired,
		},
		{
			name:   "default locale not listed",
			mutate: func(c *Config) { c.Locales = []string{"fr", "de"} },
			want:   ErrDefaultLocaleNotListed,
		},
		{
			name:   "blank locale",
			mutate: func(c *Config) { c.Locales = []string{"en", ""} },
			want:   ErrLocaleInvalid,
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Storage.Driver = "oracle" },
			want:   ErrStorageDriverUnknown,
		},
		{
			name:   "missing dsn",
			mutate: func(c *Config) { c.Storage.DSN = "" },
			want:   ErrStorageDSNRequired,
		},
		{
			name:   "negative ttl",
			mutate: func(c *Config) { c.Cache.DefaultTTL = -1 },
			want:   ErrCacheTTLInvalid,
		},
		{
			name: "unknown logging provider",
			mutate: func(c *Config) {
				c.Features.Logger = true
				c.Logging.Provider = "syslog"
			},
			want: ErrLoggingProviderUnknown,
		},
		{
			name: "invalid gologger format",
			mutate: func(c *Config) {
				c.Features.Logger = true
				c.Logging.Provider = "gologger"
				c.Logging.Format = "xml"
			},
			want: ErrLoggingFormatInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTranslationsConfigOverrides(t *testing.T) {
	off := false
	on := true
	cfg := TranslationsConfig{
		AutoLoad: true,
		AutoSave: true,
		Attributes: map[string]AttributeConfig{
			"post.slug": {AutoLoad: &off},
			"body":      {AutoSave: &off},
			"post.body": {AutoLoad: &on},
		},
	}

	if cfg.AutoLoadFor("post", "slug") {
		t.Fatalf("expected owner scoped override to disable auto load")
	}
	if !cfg.AutoLoadFor("article", "slug") {
		t.Fatalf("expected other owner types to keep the global switch")
	}
	if cfg.AutoSaveFor("post", "body") {
		t.Fatalf("expected bare attribute override to apply when owner override leaves it unset")
	}
	if !cfg.AutoLoadFor("post", "body") {
		t.Fatalf("expected owner override to win")
	}
}
