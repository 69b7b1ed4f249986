//go:build linux

package platform

import (
	"fmt"
	"image"

	"github.com/1broseidon/imgoverlay/internal/hotkeys"
	"github.com/1broseidon/imgoverlay/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
	keys *hotkeys.Handler
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, keys: hotkeys.NewHandler(conn.XUtil)}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection
// to display, or $DISPLAY when it is empty.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the event loop. Must be called from an event callback.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// ActiveDisplay returns the display under the pointer with its work area.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	mon, work, err := conn.ActiveMonitor()
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(mon, work), nil
}

// CreateWindow creates an unmapped top-level window.
func (b *LinuxBackend) CreateWindow(spec WindowSpec) (Surface, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	r := spec.Bounds
	win, err := conn.CreateWindow(r.X, r.Y, r.Width, r.Height, spec.Background)
	if err != nil {
		return nil, err
	}
	if err := conn.SetTitle(win.Id, spec.Title, spec.Class); err != nil {
		win.Destroy()
		return nil, err
	}
	return &x11Surface{conn: conn, keys: b.keys, win: win}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor, work x11.Workarea) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Usable: Rect{
			X:      work.X,
			Y:      work.Y,
			Width:  work.Width,
			Height: work.Height,
		},
	}
}

// x11Surface is a Surface backed by an xgbutil window.
type x11Surface struct {
	conn    *x11.Connection
	keys    *hotkeys.Handler
	win     *xwindow.Window
	handler EventHandler
	painted *xgraphics.Image
	mapped  bool
}

var _ Surface = (*x11Surface)(nil)

func (s *x11Surface) ID() WindowID {
	return WindowID(s.win.Id)
}

// Handle routes the window's X events to h. Button 1 presses go through a
// mousebind drag so the pointer stays grabbed while dragging; declined drags
// and other buttons arrive as clicks.
func (s *x11Surface) Handle(h EventHandler) error {
	xu := s.conn.XUtil
	s.handler = h

	begin := func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
		root := Point{X: rootX, Y: rootY}
		local := Point{X: eventX, Y: eventY}
		if h.DragBegin(root, local) {
			return true, 0
		}
		h.Click(1, local)
		return false, 0
	}
	step := func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
		h.DragMotion(Point{X: rootX, Y: rootY})
	}
	end := func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
		h.DragEnd(Point{X: rootX, Y: rootY})
	}
	mousebind.Drag(xu, s.win.Id, s.win.Id, "1", true, begin, step, end)

	for _, button := range []int{3, 4, 5} {
		button := button
		err := mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			h.Click(button, Point{X: int(ev.EventX), Y: int(ev.EventY)})
		}).Connect(xu, s.win.Id, fmt.Sprintf("%d", button), false, true)
		if err != nil {
			return fmt.Errorf("failed to bind button %d: %w", button, err)
		}
	}

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		x, y, w, hgt, err := s.conn.WindowRect(s.win.Id)
		if err != nil {
			return
		}
		h.Configured(Rect{X: x, Y: y, Width: w, Height: hgt})
	}).Connect(xu, s.win.Id)

	s.win.WMGracefulClose(func(w *xwindow.Window) {
		h.CloseRequested()
	})
	return nil
}

func (s *x11Surface) BindKey(name string) error {
	return s.keys.RegisterWindowFunc(s.win.Id, name, func() {
		if s.handler != nil {
			s.handler.Key(name)
		}
	})
}

func (s *x11Surface) Show() error {
	s.win.Map()
	s.mapped = true
	return nil
}

func (s *x11Surface) MoveResize(bounds Rect) error {
	return s.conn.MoveResizeWindow(s.win.Id, bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (s *x11Surface) SetOpacity(level float64) error {
	return s.conn.SetOpacity(s.win.Id, level)
}

func (s *x11Surface) SetAlwaysOnTop(on bool) error {
	return s.conn.SetWmState(s.win.Id, x11.StateAbove, on, s.mapped)
}

func (s *x11Surface) SetFullscreen(on bool) error {
	return s.conn.SetWmState(s.win.Id, x11.StateFullscreen, on, s.mapped)
}

func (s *x11Surface) SetDecorated(on bool) error {
	return s.conn.SetDecorated(s.win.Id, on)
}

func (s *x11Surface) Focus() error {
	return s.conn.FocusWindow(s.win.Id)
}

func (s *x11Surface) Minimize() error {
	return s.conn.MinimizeWindow(s.win.Id)
}

func (s *x11Surface) Paint(img image.Image) error {
	painted, err := s.conn.PaintWindow(s.win.Id, img, s.painted)
	s.painted = painted
	return err
}

func (s *x11Surface) Destroy() error {
	xu := s.conn.XUtil
	mousebind.Detach(xu, s.win.Id)
	s.keys.DetachWindow(s.win.Id)
	xevent.Detach(xu, s.win.Id)
	if s.painted != nil {
		s.painted.Destroy()
		s.painted = nil
	}
	s.win.Destroy()
	s.mapped = false
	return nil
}
