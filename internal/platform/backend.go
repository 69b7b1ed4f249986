package platform

import "image"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Point is a position in pixels. Depending on context it is relative to the
// root window (screen) or to a window's top-left corner.
type Point struct {
	X int
	Y int
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Origin returns the top-left corner of r.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersect returns the overlapping area of r and o. The result has zero
// width or height when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{X: x1, Y: y1}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// WindowSpec describes a top-level window to create. The window is created
// unmapped; callers apply appearance before calling Surface.Show.
type WindowSpec struct {
	Title      string
	Class      string
	Bounds     Rect
	Background uint32
}

// EventHandler receives input for a single window. All methods are invoked
// from the event loop goroutine.
type EventHandler interface {
	// DragBegin is called on a primary button press. root is the pointer in
	// screen coordinates, local is relative to the window. Returning false
	// declines the drag and the press is reported as a Click instead.
	DragBegin(root, local Point) bool
	DragMotion(root Point)
	DragEnd(root Point)
	// Click reports a press that did not start a drag. Buttons follow the X
	// numbering: 1 primary, 3 secondary, 4/5 wheel.
	Click(button int, local Point)
	// Key reports a bound key by the name passed to Surface.BindKey.
	Key(name string)
	// Configured reports geometry changes made by the window manager.
	Configured(bounds Rect)
	// CloseRequested reports a window manager close request.
	CloseRequested()
}

// Surface is a live top-level window.
type Surface interface {
	ID() WindowID
	Handle(h EventHandler) error
	BindKey(name string) error
	Show() error
	MoveResize(bounds Rect) error
	SetOpacity(level float64) error
	SetAlwaysOnTop(on bool) error
	SetFullscreen(on bool) error
	SetDecorated(on bool) error
	Focus() error
	Minimize() error
	Paint(img image.Image) error
	Destroy() error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// ActiveDisplay returns the display new windows are placed on.
	ActiveDisplay() (Display, error)
	CreateWindow(spec WindowSpec) (Surface, error)
	EventLoop()
	Quit()
}
