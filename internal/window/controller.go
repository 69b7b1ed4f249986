package window

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/1broseidon/imgoverlay/internal/platform"
)

// Appearance holds the window attributes a Controller manages.
// Transparency is the window alpha: 1 is fully opaque.
type Appearance struct {
	Transparency float64
	AlwaysOnTop  bool
	Fullscreen   bool
	Decorated    bool
}

// DragState is the state of a controller's drag state machine.
type DragState int

const (
	// DragIdle means no drag is in progress.
	DragIdle DragState = iota
	// DragDragging means pointer motion moves the window.
	DragDragging
)

// String returns the string representation of the drag state
func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// DragSession is the state kept between press and release of a drag.
type DragSession struct {
	Active bool
	// Offset is the pointer position relative to the window origin at press time.
	Offset platform.Point
	screen platform.Rect
}

// Contents is implemented by every concrete window type driven by a Controller.
type Contents interface {
	// BuildContents lays out and paints the window for the given size.
	BuildContents(width, height int)
	// Draggable reports whether a press at local (window-relative) starts a
	// drag rather than activating a control.
	Draggable(local platform.Point) bool
}

// Options configures a new Controller.
type Options struct {
	Title      string
	Class      string
	Bounds     platform.Rect
	Appearance Appearance
	// MinVisible is the number of pixels off-screen prevention keeps visible.
	MinVisible int
	// SnapThreshold snaps the window to nearby screen edges when a drag ends.
	// Zero disables snapping.
	SnapThreshold int
	Background    uint32
	Logger        *slog.Logger
}

// Controller owns one on-screen window: its geometry, appearance and drag
// state. All methods must be called from the event loop goroutine.
type Controller struct {
	backend  platform.Backend
	surface  platform.Surface
	contents Contents
	logger   *slog.Logger

	title         string
	geom          platform.Rect
	app           Appearance
	minVisible    int
	snapThreshold int

	// Values restored when leaving fullscreen.
	restoreDecorated bool
	restoreGeom      platform.Rect

	drag    DragSession
	display platform.Display
	hasDisp bool
	shown   bool
	closed  bool

	nextHook   int
	observers  map[int]func(Appearance)
	closeHooks map[int]func()
}

// New creates the window for contents and applies the initial appearance.
// The window is not shown until Show is called.
func New(backend platform.Backend, contents Contents, opts Options) (*Controller, error) {
	if backend == nil {
		return nil, fmt.Errorf("window: backend is nil")
	}
	if contents == nil {
		return nil, fmt.Errorf("window: contents is nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		backend:       backend,
		contents:      contents,
		logger:        logger.With("window", opts.Title),
		title:         opts.Title,
		minVisible:    opts.MinVisible,
		snapThreshold: opts.SnapThreshold,
		observers:     make(map[int]func(Appearance)),
		closeHooks:    make(map[int]func()),
	}
	if c.minVisible <= 0 {
		c.minVisible = DefaultMinVisible
	}

	geom := opts.Bounds
	geom.Width, geom.Height = NormalizeSize(geom.Width, geom.Height)
	if disp, ok := c.currentDisplay(); ok {
		geom = ClampRect(geom, disp.Usable, c.minVisible)
	}
	c.geom = geom

	surface, err := backend.CreateWindow(platform.WindowSpec{
		Title:      opts.Title,
		Class:      opts.Class,
		Bounds:     geom,
		Background: opts.Background,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %q window: %w", opts.Title, err)
	}
	c.surface = surface

	app := opts.Appearance
	app.Transparency = clampLevel(app.Transparency, 1)
	// Start windowed; fullscreen is entered through ToggleFullscreen so the
	// restore state is recorded.
	wantFullscreen := app.Fullscreen
	app.Fullscreen = false
	c.app = app
	c.restoreDecorated = app.Decorated

	c.apply("opacity", surface.SetOpacity(app.Transparency))
	c.apply("above", surface.SetAlwaysOnTop(app.AlwaysOnTop))
	c.apply("decorations", surface.SetDecorated(app.Decorated))

	if wantFullscreen {
		c.ToggleFullscreen()
	}
	return c, nil
}

// Surface returns the live window.
func (c *Controller) Surface() platform.Surface {
	return c.surface
}

// Attach routes the window's input events to h.
func (c *Controller) Attach(h platform.EventHandler) error {
	if err := c.surface.Handle(h); err != nil {
		return fmt.Errorf("failed to attach %q events: %w", c.title, err)
	}
	return nil
}

// Title returns the window title.
func (c *Controller) Title() string {
	return c.title
}

// Geometry returns the current window rectangle.
func (c *Controller) Geometry() platform.Rect {
	return c.geom
}

// Appearance returns the current appearance attributes.
func (c *Controller) Appearance() Appearance {
	return c.app
}

// MinVisible returns the off-screen prevention margin.
func (c *Controller) MinVisible() int {
	return c.minVisible
}

// Screen returns the usable area of the display the window is placed on.
func (c *Controller) Screen() (platform.Rect, bool) {
	disp, ok := c.currentDisplay()
	return disp.Usable, ok
}

// RestoreGeometry returns the geometry the window has outside fullscreen.
func (c *Controller) RestoreGeometry() platform.Rect {
	if c.app.Fullscreen {
		return c.restoreGeom
	}
	return c.geom
}

// DragState returns the drag state machine's current state.
func (c *Controller) DragState() DragState {
	if c.drag.Active {
		return DragDragging
	}
	return DragIdle
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	return c.closed
}

// Show maps the window at its current geometry and builds its contents.
func (c *Controller) Show() {
	if c.closed {
		return
	}
	c.apply("show", c.surface.Show())
	c.shown = true
	if !c.app.Fullscreen {
		c.apply("move", c.surface.MoveResize(c.geom))
	}
	c.contents.BuildContents(c.geom.Width, c.geom.Height)
}

// SetTransparency sets the window alpha. Values outside [0,1] are clamped;
// NaN is ignored.
func (c *Controller) SetTransparency(level float64) {
	if c.closed || math.IsNaN(level) {
		return
	}
	level = clampLevel(level, c.app.Transparency)
	if level == c.app.Transparency {
		return
	}
	c.app.Transparency = level
	c.apply("opacity", c.surface.SetOpacity(level))
	c.notify()
}

// SetAlwaysOnTop keeps the window above normal windows.
func (c *Controller) SetAlwaysOnTop(on bool) {
	if c.closed || c.app.AlwaysOnTop == on {
		return
	}
	c.app.AlwaysOnTop = on
	c.apply("above", c.surface.SetAlwaysOnTop(on))
	c.notify()
}

// ToggleAlwaysOnTop flips always-on-top and returns the new value.
func (c *Controller) ToggleAlwaysOnTop() bool {
	c.SetAlwaysOnTop(!c.app.AlwaysOnTop)
	return c.app.AlwaysOnTop
}

// SetDecorated shows or hides the window manager frame. While fullscreen the
// window stays undecorated and the value is applied when fullscreen ends.
func (c *Controller) SetDecorated(on bool) {
	if c.closed {
		return
	}
	if c.app.Fullscreen {
		if c.restoreDecorated != on {
			c.restoreDecorated = on
			c.notify()
		}
		return
	}
	if c.app.Decorated == on {
		return
	}
	c.app.Decorated = on
	c.restoreDecorated = on
	c.apply("decorations", c.surface.SetDecorated(on))
	c.snap()
	c.notify()
}

// ToggleDecorated flips the frame and returns the new requested value.
func (c *Controller) ToggleDecorated() bool {
	next := !c.DecoratedPreference()
	c.SetDecorated(next)
	return next
}

// DecoratedPreference is the decoration the window has, or will have once
// fullscreen ends.
func (c *Controller) DecoratedPreference() bool {
	if c.app.Fullscreen {
		return c.restoreDecorated
	}
	return c.app.Decorated
}

// ToggleFullscreen enters or leaves fullscreen. Entering drops decorations
// and remembers geometry; leaving restores both.
func (c *Controller) ToggleFullscreen() {
	if c.closed {
		return
	}
	c.EndDrag()

	if !c.app.Fullscreen {
		c.restoreDecorated = c.app.Decorated
		c.restoreGeom = c.geom
		if c.app.Decorated {
			c.app.Decorated = false
			c.apply("decorations", c.surface.SetDecorated(false))
		}
		c.app.Fullscreen = true
		c.apply("fullscreen", c.surface.SetFullscreen(true))
		if disp, ok := c.currentDisplay(); ok && disp.Bounds.Width > 0 && disp.Bounds.Height > 0 {
			c.geom = disp.Bounds
		}
	} else {
		c.app.Fullscreen = false
		c.apply("fullscreen", c.surface.SetFullscreen(false))
		if c.restoreDecorated {
			c.app.Decorated = true
			c.apply("decorations", c.surface.SetDecorated(true))
		}
		c.geom = c.clamped(c.restoreGeom)
		c.apply("move", c.surface.MoveResize(c.geom))
	}

	c.build()
	c.notify()
}

// CenterOnScreen centres the window in the usable screen area.
func (c *Controller) CenterOnScreen() {
	if c.closed || c.app.Fullscreen {
		return
	}
	disp, ok := c.currentDisplay()
	if !ok {
		return
	}
	r := c.geom
	r.X, r.Y = Centered(r.Width, r.Height, disp.Usable)
	c.moveResize(r)
}

// EnsureOnScreen moves the window entirely inside the usable screen area,
// leaving the same edge margin snapping uses.
func (c *Controller) EnsureOnScreen() {
	if c.closed || c.app.Fullscreen {
		return
	}
	disp, ok := c.currentDisplay()
	if !ok {
		return
	}
	c.moveResize(Contain(c.geom, disp.Usable, c.edgeMargin()))
}

// PlaceBeside moves the window next to anchor, preferring its right side.
func (c *Controller) PlaceBeside(anchor platform.Rect, offset int) {
	if c.closed || c.app.Fullscreen {
		return
	}
	disp, ok := c.currentDisplay()
	if !ok {
		return
	}
	r := c.geom
	r.X, r.Y = Beside(anchor, r.Width, r.Height, offset, disp.Usable)
	c.moveResize(r)
}

// MoveTo moves the window origin, subject to off-screen prevention.
func (c *Controller) MoveTo(x, y int) {
	r := c.geom
	r.X, r.Y = x, y
	c.SetGeometry(r)
}

// Resize changes the window size keeping its origin. Sizes below the minimum
// are raised to it.
func (c *Controller) Resize(width, height int) {
	r := c.geom
	r.Width, r.Height = width, height
	c.SetGeometry(r)
}

// SetGeometry moves and resizes the window. While fullscreen the request is
// remembered and applied when fullscreen ends.
func (c *Controller) SetGeometry(r platform.Rect) {
	if c.closed {
		return
	}
	r.Width, r.Height = NormalizeSize(r.Width, r.Height)
	if c.app.Fullscreen {
		c.restoreGeom = r
		return
	}
	c.moveResize(r)
}

// SyncGeometry records geometry changed by the window manager, pulling the
// window back if it ended up out of reach.
func (c *Controller) SyncGeometry(r platform.Rect) {
	if c.closed || c.drag.Active || r.Width <= 0 || r.Height <= 0 {
		return
	}
	if c.app.Fullscreen {
		resized := r.Width != c.geom.Width || r.Height != c.geom.Height
		c.geom = r
		if resized {
			c.build()
		}
		return
	}

	clamped := c.clamped(r)
	resized := clamped.Width != c.geom.Width || clamped.Height != c.geom.Height
	c.geom = clamped
	if clamped != r {
		c.apply("move", c.surface.MoveResize(clamped))
	}
	if resized {
		c.build()
	}
}

// BeginDrag starts a drag if pointer (screen coordinates) is inside the
// window's draggable region. It reports whether the controller is dragging.
func (c *Controller) BeginDrag(pointer platform.Point) bool {
	if c.closed || c.app.Fullscreen {
		return false
	}
	local := pointer.Sub(c.geom.Origin())
	if !c.geom.Contains(pointer) || !c.contents.Draggable(local) {
		return false
	}
	disp, ok := c.currentDisplay()
	if !ok {
		return false
	}
	c.drag = DragSession{Active: true, Offset: local, screen: disp.Usable}
	return true
}

// UpdateDrag moves the window so the pointer keeps its press-time offset.
// It does nothing unless a drag is active.
func (c *Controller) UpdateDrag(pointer platform.Point) {
	if !c.drag.Active || c.closed {
		return
	}
	x, y := ClampOrigin(
		pointer.X-c.drag.Offset.X,
		pointer.Y-c.drag.Offset.Y,
		c.geom.Width, c.geom.Height,
		c.drag.screen, c.minVisible,
	)
	if x == c.geom.X && y == c.geom.Y {
		return
	}
	c.geom.X, c.geom.Y = x, y
	c.apply("move", c.surface.MoveResize(c.geom))
}

// EndDrag returns the state machine to idle, snapping to nearby edges when
// snapping is enabled.
func (c *Controller) EndDrag() {
	wasDragging := c.drag.Active
	c.drag = DragSession{}
	if wasDragging {
		c.snap()
	}
}

// Minimize iconifies the window.
func (c *Controller) Minimize() {
	if c.closed {
		return
	}
	c.apply("minimize", c.surface.Minimize())
}

// Focus raises and activates the window.
func (c *Controller) Focus() {
	if c.closed {
		return
	}
	c.apply("focus", c.surface.Focus())
}

// Paint replaces the window contents with img.
func (c *Controller) Paint(img image.Image) {
	if c.closed {
		return
	}
	c.apply("paint", c.surface.Paint(img))
}

// Observe registers fn to run after every appearance change. The returned
// function removes it.
func (c *Controller) Observe(fn func(Appearance)) (cancel func()) {
	id := c.nextHook
	c.nextHook++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

// OnClose registers fn to run when the window closes, before it is
// destroyed. The returned function removes it.
func (c *Controller) OnClose(fn func()) (cancel func()) {
	id := c.nextHook
	c.nextHook++
	c.closeHooks[id] = fn
	return func() { delete(c.closeHooks, id) }
}

// Close releases the window and anything attached to it. It is safe to call
// more than once.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.drag = DragSession{}

	for _, id := range sortedKeys(c.closeHooks) {
		if fn, ok := c.closeHooks[id]; ok {
			fn()
		}
	}
	c.closeHooks = map[int]func(){}
	c.observers = map[int]func(Appearance){}

	c.apply("destroy", c.surface.Destroy())
}

func (c *Controller) moveResize(r platform.Rect) {
	r = c.clamped(r)
	resized := r.Width != c.geom.Width || r.Height != c.geom.Height
	if r == c.geom {
		return
	}
	c.geom = r
	c.apply("move", c.surface.MoveResize(r))
	if resized {
		c.build()
	}
}

func (c *Controller) snap() {
	if c.snapThreshold <= 0 || c.app.Fullscreen || c.closed {
		return
	}
	disp, ok := c.currentDisplay()
	if !ok {
		return
	}
	r := SnapToEdges(c.geom, disp.Usable, c.snapThreshold, c.edgeMargin())
	c.moveResize(r)
}

func (c *Controller) edgeMargin() int {
	if c.app.Decorated {
		return snapMarginDecorated
	}
	return snapMarginBorderless
}

func (c *Controller) clamped(r platform.Rect) platform.Rect {
	disp, ok := c.currentDisplay()
	if !ok {
		return r
	}
	return ClampRect(r, disp.Usable, c.minVisible)
}

func (c *Controller) build() {
	if c.shown && !c.closed {
		c.contents.BuildContents(c.geom.Width, c.geom.Height)
	}
}

// currentDisplay queries the backend, falling back to the last display seen
// when the query fails.
func (c *Controller) currentDisplay() (platform.Display, bool) {
	disp, err := c.backend.ActiveDisplay()
	if err == nil && disp.Usable.Width > 0 && disp.Usable.Height > 0 {
		c.display = disp
		c.hasDisp = true
		return disp, true
	}
	if err != nil {
		c.logger.Debug("display query failed", "err", err)
	}
	return c.display, c.hasDisp
}

func (c *Controller) notify() {
	app := c.app
	for _, id := range sortedKeys(c.observers) {
		if fn, ok := c.observers[id]; ok {
			fn(app)
		}
	}
}

func (c *Controller) apply(op string, err error) {
	if err != nil {
		c.logger.Warn("window update failed", "op", op, "err", err)
	}
}

func clampLevel(level, fallback float64) float64 {
	if math.IsNaN(level) {
		return fallback
	}
	return math.Max(0, math.Min(1, level))
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
