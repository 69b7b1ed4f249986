package x11

import (
	"fmt"
	"image"
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EWMH state atoms used by overlay windows.
const (
	StateAbove      = "_NET_WM_STATE_ABOVE"
	StateFullscreen = "_NET_WM_STATE_FULLSCREEN"
)

// Motif hint bits, see MwmUtil.h.
const (
	motifHintDecorations = 1 << 1
	motifDecorationAll   = 1 << 0
)

// ClientEventMask is the event mask set on every window created by CreateWindow.
const ClientEventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskKeyPress |
	xproto.EventMaskFocusChange

// CreateWindow creates an unmapped top-level window with a solid background.
func (c *Connection) CreateWindow(x, y, width, height int, background uint32) (*xwindow.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	// Value list order follows the bit positions of the mask (low -> high).
	err = win.CreateChecked(
		c.Root,
		x, y, max(width, 1), max(height, 1),
		xproto.CwBackPixel|xproto.CwEventMask,
		background,
		ClientEventMask,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	return win, nil
}

// SetTitle sets both the EWMH and ICCCM window names plus WM_CLASS.
func (c *Connection) SetTitle(windowID xproto.Window, title, class string) error {
	if err := ewmh.WmNameSet(c.XUtil, windowID, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(c.XUtil, windowID, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if class != "" {
		err := icccm.WmClassSet(c.XUtil, windowID, &icccm.WmClass{
			Instance: class,
			Class:    class,
		})
		if err != nil {
			return fmt.Errorf("failed to set WM_CLASS: %w", err)
		}
	}
	return nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	width = max(width, 1)
	height = max(height, 1)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// Undecorated or no WM: nothing to subtract.
		return 0, 0, 0, 0, nil
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom), nil
}

// WindowRect returns a window's geometry in root coordinates. The origin is
// that of the outer frame, which is what MoveResizeWindow positions, and the
// size is the client size.
func (c *Connection) WindowRect(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	left, _, top, _, _ := c.GetFrameExtents(windowID)
	x, y = FrameOrigin(int(translate.DstX), int(translate.DstY), left, top)
	return x, y, int(geom.Width), int(geom.Height), nil
}

// FrameOrigin converts a client window's root origin into the origin of its
// frame, given the left and top frame extents.
func FrameOrigin(clientX, clientY, left, top int) (int, int) {
	return clientX - max(left, 0), clientY - max(top, 0)
}

// OpacityCardinal converts an alpha level in [0,1] to the CARDINAL value
// compositors expect in _NET_WM_WINDOW_OPACITY.
func OpacityCardinal(level float64) uint32 {
	if math.IsNaN(level) || level <= 0 {
		return 0
	}
	if level >= 1 {
		return math.MaxUint32
	}
	return uint32(level * float64(math.MaxUint32))
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY. A fully opaque window has the
// property removed so compositors skip blending it.
func (c *Connection) SetOpacity(windowID xproto.Window, level float64) error {
	value := OpacityCardinal(level)
	if value == math.MaxUint32 {
		err := xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, c.atomOrNone("_NET_WM_WINDOW_OPACITY")).Check()
		if err != nil {
			return fmt.Errorf("failed to clear opacity: %w", err)
		}
		return nil
	}
	if err := xprop.ChangeProp32(c.XUtil, windowID, "_NET_WM_WINDOW_OPACITY", "CARDINAL", uint(value)); err != nil {
		return fmt.Errorf("failed to set opacity: %w", err)
	}
	return nil
}

// MotifDecorationHints returns the five _MOTIF_WM_HINTS words that enable or
// remove all window manager decorations.
func MotifDecorationHints(decorated bool) []uint {
	decorations := uint(0)
	if decorated {
		decorations = motifDecorationAll
	}
	// flags, functions, decorations, input_mode, status
	return []uint{motifHintDecorations, 0, decorations, 0, 0}
}

// SetDecorated asks the window manager to draw or drop the title bar and borders.
func (c *Connection) SetDecorated(windowID xproto.Window, decorated bool) error {
	hints := MotifDecorationHints(decorated)
	if err := xprop.ChangeProp32(c.XUtil, windowID, "_MOTIF_WM_HINTS", "_MOTIF_WM_HINTS", hints...); err != nil {
		return fmt.Errorf("failed to set motif hints: %w", err)
	}
	return nil
}

// SetWmState adds or removes an EWMH state. Mapped windows must go through a
// client message to the root window; unmapped windows get the property
// written directly and the window manager reads it on map.
func (c *Connection) SetWmState(windowID xproto.Window, state string, on, mapped bool) error {
	if mapped {
		stateAtom, err := xprop.Atm(c.XUtil, state)
		if err != nil {
			return fmt.Errorf("failed to intern %s: %w", state, err)
		}
		action := uint32(stateRemove)
		if on {
			action = stateAdd
		}
		return c.sendRootMessage(windowID, "_NET_WM_STATE", action, uint32(stateAtom), 0, sourceIndication, 0)
	}

	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		states = nil
	}
	next := UpdateStateList(states, state, on)
	if err := ewmh.WmStateSet(c.XUtil, windowID, next); err != nil {
		return fmt.Errorf("failed to set _NET_WM_STATE: %w", err)
	}
	return nil
}

// UpdateStateList returns states with state added or removed, keeping order
// and never duplicating entries.
func UpdateStateList(states []string, state string, on bool) []string {
	out := make([]string, 0, len(states)+1)
	for _, s := range states {
		if s != state {
			out = append(out, s)
		}
	}
	if on {
		out = append(out, state)
	}
	return out
}

// RaiseWindow restacks a window above its siblings.
func (c *Connection) RaiseWindow(windowID xproto.Window) {
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	)
}

// PaintWindow renders img as the window background. The previous pixmap, if
// any, is released once the new one is in place. The returned image must be
// passed back on the next call.
func (c *Connection) PaintWindow(windowID xproto.Window, img image.Image, prev *xgraphics.Image) (*xgraphics.Image, error) {
	ximg := xgraphics.NewConvert(c.XUtil, img)
	if err := ximg.XSurfaceSet(windowID); err != nil {
		ximg.Destroy()
		return prev, fmt.Errorf("failed to create window pixmap: %w", err)
	}
	ximg.XDraw()
	ximg.XPaint(windowID)
	if prev != nil {
		prev.Destroy()
	}
	return ximg, nil
}

func (c *Connection) atomOrNone(name string) xproto.Atom {
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return xproto.AtomNone
	}
	return atom
}
