package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// Workarea is the part of a monitor not covered by panels and docks.
type Workarea struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ActiveMonitor returns the monitor under the pointer, or the first monitor
// when the pointer cannot be queried. The second return value is the part of
// that monitor inside the current desktop's _NET_WORKAREA.
func (c *Connection) ActiveMonitor() (Monitor, Workarea, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, Workarea{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, Workarea{}, fmt.Errorf("no monitors found")
	}

	mon := monitors[0]
	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		if m, ok := monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)); ok {
			mon = m
		}
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return mon, fullWorkarea(mon), nil
	}
	desktop := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		desktop = int(cur)
	}
	return mon, clipWorkarea(mon, areas[desktop]), nil
}

// monitorAt returns the monitor containing the root point (x, y).
func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, m := range monitors {
		if x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height {
			return m, true
		}
	}
	return Monitor{}, false
}

func fullWorkarea(m Monitor) Workarea {
	return Workarea{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// clipWorkarea intersects a monitor with the desktop work area. The desktop
// work area spans every monitor, so a panel on one monitor can shrink it for
// all of them; no overlap means the whole monitor is usable.
func clipWorkarea(m Monitor, wa ewmh.Workarea) Workarea {
	x1 := max(m.X, wa.X)
	y1 := max(m.Y, wa.Y)
	x2 := min(m.X+m.Width, wa.X+int(wa.Width))
	y2 := min(m.Y+m.Height, wa.Y+int(wa.Height))
	if x2 <= x1 || y2 <= y1 {
		return fullWorkarea(m)
	}
	return Workarea{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
