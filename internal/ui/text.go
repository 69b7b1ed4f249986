package ui

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align is horizontal text alignment inside a rectangle.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// The Go fonts are parsed once and only read afterwards.
var (
	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
)

func loadFonts() {
	var err error
	if regular, err = opentype.Parse(goregular.TTF); err != nil {
		log.Printf("Warning: failed to parse regular font: %v", err)
	}
	if bold, err = opentype.Parse(gobold.TTF); err != nil {
		log.Printf("Warning: failed to parse bold font: %v", err)
	}
}

// Face returns the face for role, falling back to the fixed 7x13 face when
// the outline fonts cannot be loaded. A Theme not made by NewTheme builds a
// fresh face on every call.
func (t Theme) Face(role FontRole) font.Face {
	if t.faces != nil && role >= 0 && int(role) < len(t.faces) {
		return t.faces[role]
	}
	return newFace(t.Size(role), role.Bold())
}

func newFace(size float64, wantBold bool) font.Face {
	fontsOnce.Do(loadFonts)

	src := regular
	if wantBold && bold != nil {
		src = bold
	}
	if src == nil || size <= 0 {
		return basicfont.Face7x13
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 96, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("Warning: failed to create %vpt face: %v", size, err)
		return basicfont.Face7x13
	}
	return f
}

// TextWidth returns the advance width of s in pixels.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight returns the ascent plus descent of face in pixels.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// DrawText draws s vertically centred in r, clipped to r.
func DrawText(dst *image.RGBA, r image.Rectangle, s string, face font.Face, c color.Color, align Align) {
	if s == "" || r.Empty() {
		return
	}
	clip, ok := dst.SubImage(r).(*image.RGBA)
	if !ok || clip.Rect.Empty() {
		return
	}

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	w := TextWidth(face, s)

	x := r.Min.X
	switch align {
	case AlignCenter:
		x = r.Min.X + (r.Dx()-w)/2
	case AlignRight:
		x = r.Max.X - w
	}
	baseline := r.Min.Y + (r.Dy()+ascent-descent)/2

	d := &font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// Fill paints r with c.
func Fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// Outline draws a rectangle border of the given width inside r.
func Outline(dst *image.RGBA, r image.Rectangle, c color.Color, width int) {
	for i := 0; i < width; i++ {
		in := r.Inset(i)
		if in.Empty() {
			return
		}
		Fill(dst, image.Rect(in.Min.X, in.Min.Y, in.Max.X, in.Min.Y+1), c)
		Fill(dst, image.Rect(in.Min.X, in.Max.Y-1, in.Max.X, in.Max.Y), c)
		Fill(dst, image.Rect(in.Min.X, in.Min.Y, in.Min.X+1, in.Max.Y), c)
		Fill(dst, image.Rect(in.Max.X-1, in.Min.Y, in.Max.X, in.Max.Y), c)
	}
}

// Blit draws src onto dst with its top-left corner at at.
func Blit(dst *image.RGBA, src image.Image, at image.Point) {
	sb := src.Bounds()
	draw.Draw(dst, sb.Sub(sb.Min).Add(at), src, sb.Min, draw.Over)
}

// NewCanvas returns a width x height frame filled with bg.
func NewCanvas(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	Fill(img, img.Bounds(), bg)
	return img
}
