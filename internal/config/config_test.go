package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/imgoverlay/internal/ui"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Window.Width != 400 || cfg.Window.Height != 300 || cfg.Window.Transparency != 0.8 {
		t.Fatalf("unexpected window defaults: %+v", cfg.Window)
	}
	if !cfg.Window.AlwaysOnTop || !cfg.Window.Decorated {
		t.Fatalf("expected always-on-top and decorated by default")
	}
}

func TestDefaultConfig_ThemeMatchesBuiltin(t *testing.T) {
	th, err := DefaultConfig().UITheme()
	if err != nil {
		t.Fatalf("UITheme: %v", err)
	}
	def := ui.DefaultTheme()
	if th.Colors != def.Colors || th.Fonts != def.Fonts {
		t.Fatalf("expected default config theme to equal ui.DefaultTheme()")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.SourceOf("window.width").Kind != SourceDefault {
		t.Fatalf("expected default source")
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Settings.TransparencyMin != 0.5 {
		t.Fatalf("expected default transparency_min, got %v", res.Config.Settings.TransparencyMin)
	}
}

func TestLoadFromPath_PartialOverrideKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"window:",
		"  transparency: 0.65",
		"  decorated: false",
		"palette:",
		"  backend: rofi",
		"  image_dir: /tmp/pictures",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Window.Transparency != 0.65 || cfg.Window.Decorated {
		t.Fatalf("expected overrides applied, got %+v", cfg.Window)
	}
	if cfg.Window.Width != 400 || !cfg.Window.AlwaysOnTop {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", cfg.Window)
	}
	if cfg.Palette.Backend != "rofi" || cfg.Palette.ImageDir != "/tmp/pictures" {
		t.Fatalf("unexpected palette config %+v", cfg.Palette)
	}

	src := res.SourceOf("window.transparency")
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected source at line 2, got %+v", src)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "window:\n  opacity: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "opacity") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Base(path)) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorsHaveSourceContext(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"window:",
		"  transparency: 1.5",
		"theme:",
		"  colors:",
		"    fg_primary: white",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "window.transparency") || !strings.Contains(msg, "theme.colors.fg_primary") {
		t.Fatalf("expected both problems reported, got %v", msg)
	}
	if !strings.Contains(msg, ":2:") || !strings.Contains(msg, ":5:") {
		t.Fatalf("expected line numbers in %v", msg)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window"},
		{"negative snap", func(c *Config) { c.Window.SnapThreshold = -1 }, "window.snap_threshold"},
		{"min visible", func(c *Config) { c.Window.MinVisible = 0 }, "window.min_visible"},
		{"slider min", func(c *Config) { c.Settings.TransparencyMin = 1 }, "settings.transparency_min"},
		{"slider step", func(c *Config) { c.Settings.TransparencyStep = 0 }, "settings.transparency_step"},
		{"font", func(c *Config) { c.Theme.Fonts.Title = 0 }, "theme.fonts.title"},
		{"backend", func(c *Config) { c.Palette.Backend = "zenity" }, "palette.backend"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.path+":") {
				t.Fatalf("expected error for %s, got %v", tt.path, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMarshalRoundTripsThroughLoader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.SnapThreshold = 0
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	res, err := LoadFromPath(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("load marshalled config: %v", err)
	}
	if *res.Config != *cfg {
		t.Fatalf("expected %+v, got %+v", cfg, res.Config)
	}
}
