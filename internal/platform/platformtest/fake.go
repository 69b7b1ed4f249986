// Package platformtest provides an in-memory platform backend for tests.
package platformtest

import (
	"errors"
	"image"

	"github.com/1broseidon/imgoverlay/internal/platform"
)

// ErrNoDisplay is returned by ActiveDisplay when the backend has no display.
var ErrNoDisplay = errors.New("platformtest: no display")

// Backend is a platform.Backend that records created windows.
type Backend struct {
	Display  platform.Display
	NoScreen bool
	Windows  []*Surface
	Quitted  bool
	// CreateErr, when set, is returned by CreateWindow.
	CreateErr error

	nextID platform.WindowID
}

var _ platform.Backend = (*Backend)(nil)

// NewBackend returns a backend with one screen of the given size whose usable
// area is the whole screen.
func NewBackend(width, height int) *Backend {
	r := platform.Rect{Width: width, Height: height}
	return &Backend{Display: platform.Display{ID: 0, Name: "fake", Bounds: r, Usable: r}}
}

func (b *Backend) ActiveDisplay() (platform.Display, error) {
	if b.NoScreen {
		return platform.Display{}, ErrNoDisplay
	}
	return b.Display, nil
}

func (b *Backend) CreateWindow(spec platform.WindowSpec) (platform.Surface, error) {
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	b.nextID++
	s := &Surface{id: b.nextID, Spec: spec, Bounds: spec.Bounds, Opacity: 1}
	b.Windows = append(b.Windows, s)
	return s, nil
}

func (b *Backend) EventLoop() {}

func (b *Backend) Quit() {
	b.Quitted = true
}

// Live returns the windows that have not been destroyed.
func (b *Backend) Live() []*Surface {
	var out []*Surface
	for _, w := range b.Windows {
		if !w.Destroyed {
			out = append(out, w)
		}
	}
	return out
}

// Surface is a platform.Surface that records the state applied to it.
type Surface struct {
	id      platform.WindowID
	Spec    platform.WindowSpec
	Handler platform.EventHandler
	Keys    []string

	Shown       bool
	Bounds      platform.Rect
	Moves       int
	Opacity     float64
	Above       bool
	Fullscreen  bool
	Decorated   bool
	Focused     int
	Minimized   int
	Paints      int
	LastPaint   image.Image
	Destroyed   bool
	DecorCalls  int
	OpacityCall int
}

var _ platform.Surface = (*Surface)(nil)

func (s *Surface) ID() platform.WindowID { return s.id }

func (s *Surface) Handle(h platform.EventHandler) error {
	s.Handler = h
	return nil
}

func (s *Surface) BindKey(name string) error {
	s.Keys = append(s.Keys, name)
	return nil
}

func (s *Surface) Show() error {
	s.Shown = true
	return nil
}

func (s *Surface) MoveResize(bounds platform.Rect) error {
	s.Bounds = bounds
	s.Moves++
	return nil
}

func (s *Surface) SetOpacity(level float64) error {
	s.Opacity = level
	s.OpacityCall++
	return nil
}

func (s *Surface) SetAlwaysOnTop(on bool) error {
	s.Above = on
	return nil
}

func (s *Surface) SetFullscreen(on bool) error {
	s.Fullscreen = on
	return nil
}

func (s *Surface) SetDecorated(on bool) error {
	s.Decorated = on
	s.DecorCalls++
	return nil
}

func (s *Surface) Focus() error {
	s.Focused++
	return nil
}

func (s *Surface) Minimize() error {
	s.Minimized++
	return nil
}

func (s *Surface) Paint(img image.Image) error {
	s.Paints++
	s.LastPaint = img
	return nil
}

func (s *Surface) Destroy() error {
	s.Destroyed = true
	return nil
}

// Press simulates a primary button press followed by release without motion,
// the way the X backend reports it: a declined drag becomes a click.
func (s *Surface) Press(root, local platform.Point) {
	if s.Handler.DragBegin(root, local) {
		s.Handler.DragEnd(root)
		return
	}
	s.Handler.Click(1, local)
}

// Drag simulates pressing at from, moving through each point, and releasing.
func (s *Surface) Drag(from platform.Point, path ...platform.Point) bool {
	local := from.Sub(s.Bounds.Origin())
	if !s.Handler.DragBegin(from, local) {
		s.Handler.Click(1, local)
		return false
	}
	last := from
	for _, p := range path {
		s.Handler.DragMotion(p)
		last = p
	}
	s.Handler.DragEnd(last)
	return true
}
