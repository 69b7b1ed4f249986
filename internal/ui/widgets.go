package ui

import (
	"fmt"
	"image"
	"math"
)

// ButtonStyle selects a button's colours and font.
type ButtonStyle int

const (
	ButtonDefault ButtonStyle = iota
	ButtonDanger
	ButtonIcon
)

// Button is a clickable label. Active buttons use the hover colours; toggles
// use it to show they are on.
type Button struct {
	Label  string
	Style  ButtonStyle
	Rect   image.Rectangle
	Active bool
}

func (b Button) Contains(p image.Point) bool {
	return p.In(b.Rect)
}

func (b Button) Draw(dst *image.RGBA, t Theme) {
	bg, fg := t.Colors.BgButton, t.Colors.FgPrimary
	role := FontButton
	switch b.Style {
	case ButtonDanger:
		bg = t.Colors.BgButtonDanger
		if b.Active {
			bg = t.Colors.BgButtonDangerHover
		}
	case ButtonIcon:
		bg = t.Colors.BgPrimary
		if b.Active {
			bg = t.Colors.BgButtonHover
		}
		role = FontIcon
	default:
		if b.Active {
			bg = t.Colors.BgButtonHover
		}
	}

	Fill(dst, b.Rect, bg)
	if b.Style != ButtonIcon {
		Outline(dst, b.Rect, t.Colors.BgSecondary, 1)
	}
	DrawText(dst, b.Rect, b.Label, t.Face(role), fg, AlignCenter)
}

// Label is static text.
type Label struct {
	Text  string
	Rect  image.Rectangle
	Role  FontRole
	Align Align
}

func (l Label) Draw(dst *image.RGBA, t Theme) {
	DrawText(dst, l.Rect, l.Text, t.Face(l.Role), t.Colors.FgPrimary, l.Align)
}

// Toggle is a button that shows an on/off state next to its label.
type Toggle struct {
	Label string
	On    bool
	Rect  image.Rectangle
}

func (tg Toggle) Contains(p image.Point) bool {
	return p.In(tg.Rect)
}

// Text returns the label with its state indicator.
func (tg Toggle) Text() string {
	if tg.On {
		return tg.Label + ": on"
	}
	return tg.Label + ": off"
}

func (tg Toggle) Draw(dst *image.RGBA, t Theme) {
	Button{Label: tg.Text(), Rect: tg.Rect, Active: tg.On}.Draw(dst, t)
}

// Slider is a horizontal value selector over [Min, Max] in Step increments.
type Slider struct {
	Rect  image.Rectangle
	Min   float64
	Max   float64
	Step  float64
	Value float64
}

const knobWidth = 10

func (s Slider) Contains(p image.Point) bool {
	return p.In(s.Rect)
}

// Snap clamps v to the slider range and rounds it to the nearest step.
func (s Slider) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return s.Min
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Step > 0 {
		n := math.Round((v - s.Min) / s.Step)
		v = s.Min + n*s.Step
	}
	// Drop float noise so 0.5+6*0.05 reads back as 0.8.
	v = math.Round(v*1e6) / 1e6
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Fraction returns the position of Value within the range, in [0, 1].
func (s Slider) Fraction() float64 {
	if s.Max <= s.Min {
		return 0
	}
	f := (s.Value - s.Min) / (s.Max - s.Min)
	return math.Max(0, math.Min(1, f))
}

// ValueAt returns the snapped value under horizontal position x.
func (s Slider) ValueAt(x int) float64 {
	lo, hi := s.track()
	if hi <= lo {
		return s.Snap(s.Min)
	}
	f := float64(x-lo) / float64(hi-lo)
	return s.Snap(s.Min + f*(s.Max-s.Min))
}

// Stepped returns Value moved by n steps.
func (s Slider) Stepped(n int) float64 {
	step := s.Step
	if step <= 0 {
		step = (s.Max - s.Min) / 20
	}
	return s.Snap(s.Value + float64(n)*step)
}

// ValueText formats the value the way the slider displays it.
func (s Slider) ValueText() string {
	return fmt.Sprintf("%.2f", s.Value)
}

func (s Slider) Draw(dst *image.RGBA, t Theme) {
	lo, hi := s.track()
	midY := s.Rect.Min.Y + s.Rect.Dy()/2
	Fill(dst, image.Rect(lo, midY-3, hi, midY+3), t.Colors.Trough)

	x := lo + int(math.Round(s.Fraction()*float64(hi-lo)))
	knob := image.Rect(x-knobWidth/2, s.Rect.Min.Y+2, x+knobWidth/2, s.Rect.Max.Y-2)
	Fill(dst, knob, t.Colors.BgButtonHover)
	Outline(dst, knob, t.Colors.FgPrimary, 1)
}

// track returns the x range the knob centre moves along.
func (s Slider) track() (int, int) {
	return s.Rect.Min.X + knobWidth/2, s.Rect.Max.X - knobWidth/2
}
