// Package config loads goshape CLI configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultLang   = "en"
	DefaultOutput = OutputText
	EnvPrefix     = "GOSHAPE_"
)

// Output modes.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// ErrInvalid reports a configuration value outside its allowed set.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all CLI configuration options.
type Config struct {
	Lang     string `koanf:"lang"`
	Output   string `koanf:"output"`
	FailFast bool   `koanf:"fail_fast"`
	Verbose  bool   `koanf:"verbose"`
	// Shapes is the default shape file for check and schema.
	Shapes string `koanf:"shapes"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// flagKeys maps the flags that feed configuration to their config keys.
var flagKeys = map[string]string{
	"lang":      "lang",
	"output":    "output",
	"fail-fast": "fail_fast",
	"verbose":   "verbose",
	"shapes":    "shapes",
}

// findConfigFile returns the explicit path or the first goshape.y(a)ml in the
// working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"goshape.yaml", "goshape.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from defaults, the config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"lang":      DefaultLang,
		"output":    DefaultOutput,
		"fail_fast": false,
		"verbose":   false,
		"shapes":    "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// GOSHAPE_FAIL_FAST -> fail_fast
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	c.Lang = strings.ToLower(c.Lang)
	switch c.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("%w: lang %q (want en or ja)", ErrInvalid, c.Lang)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("%w: output %q (want text or json)", ErrInvalid, c.Output)
	}
	return nil
}

// Logger builds the CLI logger: text on w, debug level when verbose.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type configKey struct{}
type loggerKey struct{}

// WithContext stores cfg and its logger in ctx.
func WithContext(ctx context.Context, cfg *Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the config stored by WithContext, or the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{Lang: DefaultLang, Output: DefaultOutput}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
