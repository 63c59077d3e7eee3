package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the handler encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Environment names accepted by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type preset struct {
	name   string
	level  slog.Level
	format Format
}

var presets = map[string]preset{
	EnvDevelopment: {name: EnvDevelopment, level: slog.LevelDebug, format: FormatText},
	"dev":          {name: EnvDevelopment, level: slog.LevelDebug, format: FormatText},
	EnvStaging:     {name: EnvStaging, level: slog.LevelInfo, format: FormatJSON},
	"stage":        {name: EnvStaging, level: slog.LevelInfo, format: FormatJSON},
	EnvProduction:  {name: EnvProduction, level: slog.LevelInfo, format: FormatJSON},
	"prod":         {name: EnvProduction, level: slog.LevelInfo, format: FormatJSON},
}

type Option func(*config)

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat panics on anything but FormatJSON or FormatText.
func WithFormat(f Format) Option {
	if f != FormatJSON && f != FormatText {
		panic(fmt.Errorf("logger: unknown format %q", f))
	}
	return func(c *config) { c.format = f }
}

// WithOutput ignores nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithContextExtractors registers functions that add attributes taken from
// the record's context, such as the request ID.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) { c.extractors = append(c.extractors, extractors...) }
}

// WithEnvironment applies the level and format preset for env and tags every
// record with service and env. Unknown environments get the development preset.
// Options after it override the preset.
func WithEnvironment(env, service string) Option {
	p, ok := presets[strings.ToLower(strings.TrimSpace(env))]
	if !ok {
		p = presets[EnvDevelopment]
	}
	return func(c *config) {
		c.level = p.level
		c.format = p.format
		c.attrs = append(c.attrs, slog.String("env", p.name))
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
	}
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New builds a logger writing JSON at info level to stdout unless options say
// otherwise.
func New(opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelInfo, format: FormatJSON, output: os.Stdout}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var h slog.Handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	if cfg.format == FormatText {
		h = slog.NewTextHandler(cfg.output, handlerOpts)
	}
	if len(cfg.attrs) > 0 {
		h = h.WithAttrs(cfg.attrs)
	}
	return slog.New(NewLogHandlerDecorator(h, cfg.extractors...))
}
