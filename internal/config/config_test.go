// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/invowk/cliframe/internal/issue"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func assertDefaults(t *testing.T, cfg *Config) {
	t.Helper()

	if cfg.LogLevel != LogLevelInfo || cfg.Color != ColorAuto || cfg.Debug {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if len(cfg.Descriptors) != 0 || len(cfg.SearchPaths) != 0 {
		t.Errorf("cfg = %+v, want no paths", cfg)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, LogLevelInfo)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("Color = %q, want %q", cfg.Color, ColorAuto)
	}
	if cfg.Debug || len(cfg.Descriptors) != 0 || len(cfg.SearchPaths) != 0 {
		t.Errorf("unexpected non-zero defaults: %+v", cfg)
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("default config is invalid: %v", errs)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), Environ: map[string]string{}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	assertDefaults(t, cfg)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
log_level: "debug"
color:     "never"
descriptors: ["cliframe/commands.cue", "extra.toml"]
`)
	cfg, path, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir, Environ: map[string]string{}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	if cfg.LogLevel != LogLevelDebug || cfg.Color != ColorNever || cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if want := []string{"cliframe/commands.cue", "extra.toml"}; !reflect.DeepEqual(cfg.Descriptors, want) {
		t.Errorf("Descriptors = %q, want %q", cfg.Descriptors, want)
	}
	if len(cfg.SearchPaths) != 0 {
		t.Errorf("SearchPaths = %q, want none", cfg.SearchPaths)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `log_level: "debug"`)
	environ := map[string]string{
		"CLIFRAME_LOG_LEVEL":    "warn",
		"CLIFRAME_DEBUG":        "true",
		"CLIFRAME_SEARCH_PATHS": "/etc/cliframe,/opt/cliframe",
		"UNRELATED":             "x",
	}
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, Environ: environ})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, LogLevelWarn)
	}
	if !cfg.Debug {
		t.Error("Debug should be enabled by CLIFRAME_DEBUG")
	}
	if want := []string{"/etc/cliframe", "/opt/cliframe"}; !reflect.DeepEqual(cfg.SearchPaths, want) {
		t.Errorf("SearchPaths = %q, want %q", cfg.SearchPaths, want)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `color: "always"`)
	cfg, path, err := Resolve(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(dir, "config.cue"),
		Environ:        map[string]string{},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Color != ColorAlways || path == "" {
		t.Errorf("cfg = %+v, path = %q", cfg, path)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		opts    func(dir string) LoadOptions
		wantErr error
	}{
		{
			name:    "schema violation",
			content: `log_level: "loud"`,
		},
		{
			name:    "unknown field",
			content: `colour: "never"`,
		},
		{
			name:    "syntax error",
			content: `log_level: `,
		},
		{
			name: "missing explicit file",
			opts: func(dir string) LoadOptions {
				return LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")}
			},
		},
		{
			name: "invalid environment value",
			opts: func(dir string) LoadOptions {
				return LoadOptions{ConfigDirPath: dir, Environ: map[string]string{"CLIFRAME_COLOR": "rainbow"}}
			},
			wantErr: ErrInvalidConfig,
		},
		{
			name: "unparsable environment value",
			opts: func(dir string) LoadOptions {
				return LoadOptions{ConfigDirPath: dir, Environ: map[string]string{"CLIFRAME_DEBUG": "perhaps"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var dir string
			if tt.content != "" {
				dir = writeConfig(t, tt.content)
			} else {
				dir = t.TempDir()
			}
			opts := LoadOptions{ConfigDirPath: dir, Environ: map[string]string{}}
			if tt.opts != nil {
				opts = tt.opts(dir)
			}

			_, err := NewProvider().Load(context.Background(), opts)
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error = %v, want *issue.ActionableError", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("Issue = %v, want ConfigLoadFailedId", ae.Issue)
			}
			if !ae.HasSuggestions() {
				t.Error("error should carry suggestions")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	cfg, _, err := Resolve(context.Background(), LoadOptions{ConfigFilePath: path, Environ: map[string]string{}})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	assertDefaults(t, cfg)

	if err := os.WriteFile(path, []byte(`color: "never"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `color: "never"` {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestConfigDir_Override(t *testing.T) {
	SetConfigDirOverride("/tmp/cliframe-test")
	t.Cleanup(Reset)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/tmp/cliframe-test" {
		t.Errorf("ConfigDir() = %q", dir)
	}
}
