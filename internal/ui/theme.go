// Package ui renders the overlay's widgets into RGBA frames.
package ui

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/font"
)

// Colors is the palette shared by all windows.
type Colors struct {
	BgPrimary           color.RGBA
	BgSecondary         color.RGBA
	BgButton            color.RGBA
	BgButtonHover       color.RGBA
	BgButtonDanger      color.RGBA
	BgButtonDangerHover color.RGBA
	FgPrimary           color.RGBA
	Trough              color.RGBA
}

// Fonts holds point sizes for each text role.
type Fonts struct {
	Default float64
	Button  float64
	Title   float64
	Icon    float64
	Large   float64
}

// Theme is the immutable look of every window. Pass it by value; copies
// share the faces built by NewTheme.
type Theme struct {
	Colors Colors
	Fonts  Fonts

	faces *[fontRoles]font.Face
}

// FontRole selects a face from the theme.
type FontRole int

const (
	FontDefault FontRole = iota
	FontButton
	FontTitle
	FontIcon
	FontLarge

	fontRoles = iota
)

// NewTheme returns a theme with a face built for every font role.
func NewTheme(colors Colors, fonts Fonts) Theme {
	t := Theme{Colors: colors, Fonts: fonts}
	var faces [fontRoles]font.Face
	for i := range faces {
		role := FontRole(i)
		faces[i] = newFace(t.Size(role), role.Bold())
	}
	t.faces = &faces
	return t
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() Theme {
	return NewTheme(
		Colors{
			BgPrimary:           rgb(0x2c, 0x2c, 0x2c),
			BgSecondary:         rgb(0x40, 0x40, 0x40),
			BgButton:            rgb(0x4a, 0x4a, 0x4a),
			BgButtonHover:       rgb(0x5a, 0x5a, 0x5a),
			BgButtonDanger:      rgb(0xd3, 0x2f, 0x2f),
			BgButtonDangerHover: rgb(0xf4, 0x43, 0x36),
			FgPrimary:           rgb(0xff, 0xff, 0xff),
			Trough:              rgb(0x40, 0x40, 0x40),
		},
		Fonts{Default: 10, Button: 10, Title: 14, Icon: 12, Large: 14},
	)
}

// Size returns the point size for role.
func (t Theme) Size(role FontRole) float64 {
	switch role {
	case FontButton:
		return t.Fonts.Button
	case FontTitle:
		return t.Fonts.Title
	case FontIcon:
		return t.Fonts.Icon
	case FontLarge:
		return t.Fonts.Large
	default:
		return t.Fonts.Default
	}
}

// Bold reports whether role is drawn with the bold face.
func (r FontRole) Bold() bool {
	return r == FontTitle || r == FontLarge
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return rgb(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Pixel returns c as a 24-bit TrueColor pixel value for window backgrounds.
func Pixel(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
