package gologger

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// DefaultNamespace prefixes module logger names that are not already
// qualified.
const DefaultNamespace = "translatable"

// Config mirrors runtimeconfig.LoggingConfig for the go-logger backend.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
	// Namespace overrides DefaultNamespace. Use "-" to disable prefixing.
	Namespace string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

// Provider hands out go-logger children per translation module and reuses
// them across lookups.
type Provider struct {
	root      *glog.BaseLogger
	namespace string
	modules   sync.Map
}

// NewProvider builds a go-logger backed provider. Unknown levels and formats
// are rejected.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}

	if raw := strings.ToLower(strings.TrimSpace(cfg.Level)); raw != "" {
		level, ok := levels[raw]
		if !ok {
			return nil, fmt.Errorf("logging: unsupported go-logger level %q", cfg.Level)
		}
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	p := &Provider{root: glog.NewLogger(options...), namespace: DefaultNamespace}
	switch ns := strings.TrimSpace(cfg.Namespace); ns {
	case "":
	case "-":
		p.namespace = ""
	default:
		p.namespace = ns
	}

	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, p.qualify(name))
		}
	}
	if len(focus) > 0 {
		p.root.Focus(focus...)
	}
	return p, nil
}

// GetLogger returns the logger for module. A blank module returns the root.
func (p *Provider) GetLogger(module string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	module = strings.TrimSpace(module)
	if module == "" {
		return wrap(p.root)
	}
	name := p.qualify(module)
	if cached, ok := p.modules.Load(name); ok {
		return cached.(interfaces.Logger)
	}
	logger, _ := p.modules.LoadOrStore(name, wrap(p.root.GetLogger(name)))
	return logger.(interfaces.Logger)
}

func (p *Provider) qualify(module string) string {
	if p.namespace == "" || module == p.namespace || strings.HasPrefix(module, p.namespace+".") {
		return module
	}
	return p.namespace + "." + module
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (a adapter) Trace(msg string, args ...any) { a.inner.Trace(msg, args...) }
func (a adapter) Debug(msg string, args ...any) { a.inner.Debug(msg, args...) }
func (a adapter) Info(msg string, args ...any)  { a.inner.Info(msg, args...) }
func (a adapter) Warn(msg string, args ...any)  { a.inner.Warn(msg, args...) }
func (a adapter) Error(msg string, args ...any) { a.inner.Error(msg, args...) }
func (a adapter) Fatal(msg string, args ...any) { a.inner.Fatal(msg, args...) }

// WithFields copies fields so later caller mutations do not leak into
// structured output.
func (a adapter) WithFields(fields map[string]any) interfaces.Logger {
	scoped, ok := a.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return a
	}
	return wrap(scoped.WithFields(maps.Clone(fields)))
}

func (a adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return a
	}
	return wrap(a.inner.WithContext(ctx))
}
