package window

import "github.com/1broseidon/imgoverlay/internal/platform"

// Minimum window size. Smaller or non-positive requests are raised to it.
const (
	MinWidth  = 100
	MinHeight = 75
)

// DefaultMinVisible is the number of pixels kept on screen when no other
// value is configured.
const DefaultMinVisible = 50

// Edge margins used when snapping: borderless windows can sit almost flush
// with the screen edge, decorated ones keep room for the frame.
const (
	snapMarginBorderless = 1
	snapMarginDecorated  = 10
)

// NormalizeSize raises width and height to the minimum window size.
func NormalizeSize(width, height int) (int, int) {
	return max(width, MinWidth), max(height, MinHeight)
}

// ClampOrigin applies off-screen prevention to a proposed window origin.
//
// x is limited to [screen.X-width+m, screen.X+screen.Width-m] and y to
// [screen.Y, screen.Y+screen.Height-m], so at least m pixels of the window
// stay inside screen horizontally and the top edge never rises above the
// screen. m is minVisible, reduced to the window or screen size when either is
// smaller.
func ClampOrigin(x, y, width, height int, screen platform.Rect, minVisible int) (int, int) {
	mx := effectiveMargin(minVisible, width, screen.Width)
	my := effectiveMargin(minVisible, height, screen.Height)

	minX := screen.X - width + mx
	maxX := screen.X + screen.Width - mx
	if maxX < minX {
		maxX = minX
	}
	minY := screen.Y
	maxY := screen.Y + screen.Height - my
	if maxY < minY {
		maxY = minY
	}

	return clamp(x, minX, maxX), clamp(y, minY, maxY)
}

// ClampRect is ClampOrigin applied to r.
func ClampRect(r platform.Rect, screen platform.Rect, minVisible int) platform.Rect {
	r.X, r.Y = ClampOrigin(r.X, r.Y, r.Width, r.Height, screen, minVisible)
	return r
}

// Contain moves r so it lies inside screen with margin pixels to spare. On
// an axis where r does not fit it is pinned to the leading margin.
func Contain(r platform.Rect, screen platform.Rect, margin int) platform.Rect {
	r.X = containAxis(r.X, r.Width, screen.X, screen.Width, margin)
	r.Y = containAxis(r.Y, r.Height, screen.Y, screen.Height, margin)
	return r
}

func containAxis(pos, size, start, length, margin int) int {
	lo := start + margin
	hi := start + length - size - margin
	if hi < lo {
		return lo
	}
	return clamp(pos, lo, hi)
}

// Centered returns the origin that centres a width x height window in screen.
func Centered(width, height int, screen platform.Rect) (int, int) {
	return screen.X + (screen.Width-width)/2, screen.Y + (screen.Height-height)/2
}

// SnapToEdges moves r flush (plus margin) against any screen edge it is
// within threshold pixels of. Windows larger than the screen are pinned to
// the top-left margin on that axis.
func SnapToEdges(r platform.Rect, screen platform.Rect, threshold, margin int) platform.Rect {
	if threshold <= 0 {
		return r
	}

	left := screen.X
	right := screen.X + screen.Width
	top := screen.Y
	bottom := screen.Y + screen.Height

	if r.Width > screen.Width-2*margin {
		if abs(r.X-left) <= threshold {
			r.X = left + margin
		}
	} else if abs(r.X-left) <= threshold {
		r.X = left + margin
	} else if abs(right-(r.X+r.Width)) <= threshold {
		r.X = right - r.Width - margin
	}

	if r.Height > screen.Height-2*margin {
		if abs(r.Y-top) <= threshold {
			r.Y = top + margin
		}
	} else if abs(r.Y-top) <= threshold {
		r.Y = top + margin
	} else if abs(bottom-(r.Y+r.Height)) <= threshold {
		r.Y = bottom - r.Height - margin
	}

	return r
}

// Beside returns an origin for a width x height window next to anchor: to the
// right when it fits, otherwise to the left, otherwise horizontally centred.
// Vertically it starts level with anchor and is pulled back inside screen.
func Beside(anchor platform.Rect, width, height, offset int, screen platform.Rect) (int, int) {
	x := anchor.X + anchor.Width + offset
	y := anchor.Y

	if x+width > screen.X+screen.Width {
		x = anchor.X - width - offset
		if x < screen.X {
			x = screen.X + (screen.Width-width)/2
		}
	}

	if y+height > screen.Y+screen.Height {
		y = screen.Y + screen.Height - height - snapMarginDecorated
	}
	if y < screen.Y {
		y = screen.Y + snapMarginDecorated
	}
	return x, y
}

func effectiveMargin(minVisible, size, screenSize int) int {
	m := minVisible
	if m <= 0 {
		m = DefaultMinVisible
	}
	if size > 0 && m > size {
		m = size
	}
	if screenSize > 0 && m > screenSize {
		m = screenSize
	}
	return m
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
