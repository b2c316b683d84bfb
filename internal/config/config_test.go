package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Target", cfg.Target, "index.html"},
		{"Verbose", cfg.Verbose, false},
		{"Format", cfg.Format, FormatText},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"ValidatorURL", cfg.Validator.URL, "https://validator.w3.org/nu/"},
		{"ValidatorTimeout", cfg.Validator.Timeout, 30 * time.Second},
		{"LinterEngine", cfg.Linter.Engine, EngineBuiltin},
		{"HTMLHintPath", cfg.Linter.HTMLHintPath, "htmlhint"},
		{"BeautifierEngine", cfg.Beautifier.Engine, EngineBuiltin},
		{"BeautifierPath", cfg.Beautifier.Path, "html-beautify"},
		{"IndentSize", cfg.Beautifier.IndentSize, 2},
		{"PreserveNewlines", cfg.Beautifier.PreserveNewlines, true},
		{"MaxPreserveNewlines", cfg.Beautifier.MaxPreserveNewlines, 10},
		{"WrapLineLength", cfg.Beautifier.WrapLineLength, 0},
		{"EndWithNewline", cfg.Beautifier.EndWithNewline, true},
		{"IndentInnerHTML", cfg.Beautifier.IndentInnerHTML, false},
		{"ExtraLinersEmpty", len(cfg.Beautifier.ExtraLiners), 0},
		{"IgnoreEmpty", len(cfg.Validator.Ignore), 0},
		{"DisableEmpty", len(cfg.Linter.Disable), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "target",
			envKey: "PAGECHECK_TARGET",
			envVal: "public/index.html",
			field:  func(c Config) any { return c.Target },
			want:   "public/index.html",
		},
		{
			name:   "verbose",
			envKey: "PAGECHECK_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
		{
			name:   "validator.url",
			envKey: "PAGECHECK_VALIDATOR_URL",
			envVal: "http://localhost:8888/",
			field:  func(c Config) any { return c.Validator.URL },
			want:   "http://localhost:8888/",
		},
		{
			name:   "validator.timeout",
			envKey: "PAGECHECK_VALIDATOR_TIMEOUT",
			envVal: "5s",
			field:  func(c Config) any { return c.Validator.Timeout },
			want:   5 * time.Second,
		},
		{
			name:   "linter.engine",
			envKey: "PAGECHECK_LINTER_ENGINE",
			envVal: "htmlhint",
			field:  func(c Config) any { return c.Linter.Engine },
			want:   EngineHTMLHint,
		},
		{
			name:   "beautifier.indent_size",
			envKey: "PAGECHECK_BEAUTIFIER_INDENT_SIZE",
			envVal: "4",
			field:  func(c Config) any { return c.Beautifier.IndentSize },
			want:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so PAGECHECK_* env vars map to config keys.
			viper.SetEnvPrefix("PAGECHECK")
			viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
			viper.AutomaticEnv()

			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), ".pagecheck.toml")
	content := `format = "json"

[validator]
ignore = ["lang attribute", "trailing slash"]

[linter]
disable = ["meta-viewport"]

[beautifier]
indent_size = 4
extra_liners = ["head", "body"]
indent_inner_html = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %q", cfg.Format)
	}
	if !reflect.DeepEqual(cfg.Validator.Ignore, []string{"lang attribute", "trailing slash"}) {
		t.Errorf("Ignore = %v", cfg.Validator.Ignore)
	}
	if !reflect.DeepEqual(cfg.Linter.Disable, []string{"meta-viewport"}) {
		t.Errorf("Disable = %v", cfg.Linter.Disable)
	}
	if cfg.Beautifier.IndentSize != 4 || !cfg.Beautifier.IndentInnerHTML {
		t.Errorf("Beautifier = %+v", cfg.Beautifier)
	}
	if !reflect.DeepEqual(cfg.Beautifier.ExtraLiners, []string{"head", "body"}) {
		t.Errorf("ExtraLiners = %v", cfg.Beautifier.ExtraLiners)
	}
	if !cfg.Beautifier.EndWithNewline {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		key     string
		value   any
		wantErr error
	}{
		{"linter.engine", "eslint", ErrUnknownEngine},
		{"beautifier.engine", "prettier", ErrUnknownEngine},
		{"format", "yaml", ErrUnknownFormat},
		{"beautifier.indent_size", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%v", tt.key, tt.value)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Errorf("err = %q, want config: prefix", err)
			}
		})
	}
}
