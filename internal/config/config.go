package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/1broseidon/imgoverlay/internal/ui"
	"gopkg.in/yaml.v3"
)

// WindowConfig holds start-up values for the overlay window.
type WindowConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Transparency  float64 `yaml:"transparency"`
	AlwaysOnTop   bool    `yaml:"always_on_top"`
	Decorated     bool    `yaml:"decorated"`
	Fullscreen    bool    `yaml:"fullscreen"`
	MinVisible    int     `yaml:"min_visible"`
	SnapThreshold int     `yaml:"snap_threshold"`
}

// SettingsConfig sizes the settings panel and its transparency slider.
type SettingsConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	TransparencyMin  float64 `yaml:"transparency_min"`
	TransparencyStep float64 `yaml:"transparency_step"`
}

type ColorConfig struct {
	BgPrimary           string `yaml:"bg_primary"`
	BgSecondary         string `yaml:"bg_secondary"`
	BgButton            string `yaml:"bg_button"`
	BgButtonHover       string `yaml:"bg_button_hover"`
	BgButtonDanger      string `yaml:"bg_button_danger"`
	BgButtonDangerHover string `yaml:"bg_button_danger_hover"`
	FgPrimary           string `yaml:"fg_primary"`
	TroughColor         string `yaml:"trough_color"`
}

type FontConfig struct {
	Default float64 `yaml:"default"`
	Button  float64 `yaml:"button"`
	Title   float64 `yaml:"title"`
	Icon    float64 `yaml:"icon"`
	Large   float64 `yaml:"large"`
}

type ThemeConfig struct {
	Colors ColorConfig `yaml:"colors"`
	Fonts  FontConfig  `yaml:"fonts"`
}

// PaletteConfig selects the menu program used for the context menu and the
// image chooser.
type PaletteConfig struct {
	Backend  string `yaml:"backend"`
	ImageDir string `yaml:"image_dir"`
}

type Config struct {
	// Display overrides $DISPLAY when set.
	Display       string         `yaml:"display"`
	Window        WindowConfig   `yaml:"window"`
	Settings      SettingsConfig `yaml:"settings"`
	Theme         ThemeConfig    `yaml:"theme"`
	Palette       PaletteConfig  `yaml:"palette"`
	Notifications bool           `yaml:"notifications"`
	LogLevel      string         `yaml:"log_level"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:         400,
			Height:        300,
			Transparency:  0.8,
			AlwaysOnTop:   true,
			Decorated:     true,
			MinVisible:    50,
			SnapThreshold: 25,
		},
		Settings: SettingsConfig{
			Width:            300,
			Height:           250,
			TransparencyMin:  0.5,
			TransparencyStep: 0.05,
		},
		Theme: ThemeConfig{
			Colors: ColorConfig{
				BgPrimary:           "#2c2c2c",
				BgSecondary:         "#404040",
				BgButton:            "#4a4a4a",
				BgButtonHover:       "#5a5a5a",
				BgButtonDanger:      "#d32f2f",
				BgButtonDangerHover: "#f44336",
				FgPrimary:           "#ffffff",
				TroughColor:         "#404040",
			},
			Fonts: FontConfig{Default: 10, Button: 10, Title: 14, Icon: 12, Large: 14},
		},
		Palette:       PaletteConfig{Backend: "auto"},
		Notifications: true,
		LogLevel:      "info",
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks every field and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Err: fmt.Errorf(format, args...)})
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		fail("window", "width and height must be > 0")
	}
	if c.Window.Transparency < 0 || c.Window.Transparency > 1 {
		fail("window.transparency", "transparency must be between 0 and 1")
	}
	if c.Window.MinVisible < 1 {
		fail("window.min_visible", "min_visible must be >= 1")
	}
	if c.Window.SnapThreshold < 0 {
		fail("window.snap_threshold", "snap_threshold must be >= 0")
	}

	if c.Settings.Width <= 0 || c.Settings.Height <= 0 {
		fail("settings", "width and height must be > 0")
	}
	if c.Settings.TransparencyMin < 0 || c.Settings.TransparencyMin >= 1 {
		fail("settings.transparency_min", "transparency_min must be in [0, 1)")
	}
	if c.Settings.TransparencyStep <= 0 || c.Settings.TransparencyStep > 1 {
		fail("settings.transparency_step", "transparency_step must be in (0, 1]")
	}

	for _, field := range c.Theme.Colors.fields() {
		if _, err := ui.ParseHexColor(field.value); err != nil {
			errs = append(errs, &ValidationError{Path: "theme.colors." + field.name, Err: err})
		}
	}
	for _, field := range c.Theme.Fonts.fields() {
		if field.size <= 0 || field.size > 96 {
			fail("theme.fonts."+field.name, "font size must be in (0, 96]")
		}
	}

	switch c.Palette.Backend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		fail("palette.backend", "backend must be one of: auto, rofi, fuzzel, dmenu, wofi")
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, &ValidationError{Path: "log_level", Err: err})
	}

	return errors.Join(errs...)
}

type colorField struct {
	name  string
	value string
}

func (c ColorConfig) fields() []colorField {
	return []colorField{
		{"bg_primary", c.BgPrimary},
		{"bg_secondary", c.BgSecondary},
		{"bg_button", c.BgButton},
		{"bg_button_hover", c.BgButtonHover},
		{"bg_button_danger", c.BgButtonDanger},
		{"bg_button_danger_hover", c.BgButtonDangerHover},
		{"fg_primary", c.FgPrimary},
		{"trough_color", c.TroughColor},
	}
}

type fontField struct {
	name string
	size float64
}

func (f FontConfig) fields() []fontField {
	return []fontField{
		{"default", f.Default},
		{"button", f.Button},
		{"title", f.Title},
		{"icon", f.Icon},
		{"large", f.Large},
	}
}

// UITheme converts the theme section into an immutable ui.Theme.
func (c *Config) UITheme() (ui.Theme, error) {
	cc := c.Theme.Colors
	var errs []error
	parse := func(name, v string) color.RGBA {
		col, err := ui.ParseHexColor(v)
		if err != nil {
			errs = append(errs, &ValidationError{Path: "theme.colors." + name, Err: err})
		}
		return col
	}

	colors := ui.Colors{
		BgPrimary:           parse("bg_primary", cc.BgPrimary),
		BgSecondary:         parse("bg_secondary", cc.BgSecondary),
		BgButton:            parse("bg_button", cc.BgButton),
		BgButtonHover:       parse("bg_button_hover", cc.BgButtonHover),
		BgButtonDanger:      parse("bg_button_danger", cc.BgButtonDanger),
		BgButtonDangerHover: parse("bg_button_danger_hover", cc.BgButtonDangerHover),
		FgPrimary:           parse("fg_primary", cc.FgPrimary),
		Trough:              parse("trough_color", cc.TroughColor),
	}
	if err := errors.Join(errs...); err != nil {
		return ui.Theme{}, err
	}
	return ui.NewTheme(colors, ui.Fonts{
		Default: c.Theme.Fonts.Default,
		Button:  c.Theme.Fonts.Button,
		Title:   c.Theme.Fonts.Title,
		Icon:    c.Theme.Fonts.Icon,
		Large:   c.Theme.Fonts.Large,
	}), nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel maps debug, info, warning and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
