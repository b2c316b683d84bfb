// Package config loads pagecheck's settings from viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/pagecheck/internal/indent"
)

// Engine names.
const (
	EngineBuiltin    = "builtin"
	EngineHTMLHint   = "htmlhint"
	EngineJSBeautify = "js-beautify"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// ErrUnknownEngine is returned when a linter or beautifier engine is not
// one pagecheck knows how to run.
var ErrUnknownEngine = errors.New("config: unknown engine")

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("config: unknown format")

// ValidatorConfig configures the Nu HTML Checker client.
type ValidatorConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Ignore  []string      `mapstructure:"ignore"`
}

// LinterConfig selects and configures the best-practices linter.
type LinterConfig struct {
	Engine       string   `mapstructure:"engine"`
	HTMLHintPath string   `mapstructure:"htmlhint_path"`
	Disable      []string `mapstructure:"disable"`
}

// BeautifierConfig selects the beautifier and carries its formatting
// options.
type BeautifierConfig struct {
	Engine         string `mapstructure:"engine"`
	Path           string `mapstructure:"path"`
	indent.Options `mapstructure:",squash"`
}

// Config holds all runtime configuration for a pagecheck session.
// Values are populated from .pagecheck.toml, PAGECHECK_* env vars, and CLI
// flags.
type Config struct {
	Target        string           `mapstructure:"target"`
	Verbose       bool             `mapstructure:"verbose"`
	Format        string           `mapstructure:"format"`
	TelemetryPath string           `mapstructure:"telemetry_path"`
	Validator     ValidatorConfig  `mapstructure:"validator"`
	Linter        LinterConfig     `mapstructure:"linter"`
	Beautifier    BeautifierConfig `mapstructure:"beautifier"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and rejects
// unknown engine and format names.
func Load() (Config, error) {
	opts := indent.DefaultOptions()

	viper.SetDefault("target", "index.html")
	viper.SetDefault("verbose", false)
	viper.SetDefault("format", FormatText)
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("validator.url", "https://validator.w3.org/nu/")
	viper.SetDefault("validator.timeout", 30*time.Second)
	viper.SetDefault("validator.ignore", []string{})
	viper.SetDefault("linter.engine", EngineBuiltin)
	viper.SetDefault("linter.htmlhint_path", "htmlhint")
	viper.SetDefault("linter.disable", []string{})
	viper.SetDefault("beautifier.engine", EngineBuiltin)
	viper.SetDefault("beautifier.path", "html-beautify")
	viper.SetDefault("beautifier.indent_size", opts.IndentSize)
	viper.SetDefault("beautifier.preserve_newlines", opts.PreserveNewlines)
	viper.SetDefault("beautifier.max_preserve_newlines", opts.MaxPreserveNewlines)
	viper.SetDefault("beautifier.wrap_line_length", opts.WrapLineLength)
	viper.SetDefault("beautifier.end_with_newline", opts.EndWithNewline)
	viper.SetDefault("beautifier.extra_liners", opts.ExtraLiners)
	viper.SetDefault("beautifier.indent_inner_html", opts.IndentInnerHTML)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Linter.Engine {
	case EngineBuiltin, EngineHTMLHint:
	default:
		return fmt.Errorf("%w %q for linter.engine", ErrUnknownEngine, c.Linter.Engine)
	}
	switch c.Beautifier.Engine {
	case EngineBuiltin, EngineJSBeautify:
	default:
		return fmt.Errorf("%w %q for beautifier.engine", ErrUnknownEngine, c.Beautifier.Engine)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatTOML:
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, c.Format)
	}
	if c.Beautifier.IndentSize < 1 {
		return fmt.Errorf("config: beautifier.indent_size must be positive, got %d", c.Beautifier.IndentSize)
	}
	return nil
}
