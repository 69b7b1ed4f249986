package window

import (
	"errors"
	"math"
	"testing"

	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/platform/platformtest"
)

type stubContents struct {
	builds    [][2]int
	dragTopPx int
}

func (s *stubContents) BuildContents(width, height int) {
	s.builds = append(s.builds, [2]int{width, height})
}

func (s *stubContents) Draggable(local platform.Point) bool {
	if s.dragTopPx <= 0 {
		return true
	}
	return local.Y < s.dragTopPx
}

func newTestController(t *testing.T, opts Options) (*Controller, *platformtest.Backend, *platformtest.Surface, *stubContents) {
	t.Helper()
	backend := platformtest.NewBackend(1920, 1080)
	contents := &stubContents{}
	if opts.Bounds.Width == 0 {
		opts.Bounds = platform.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	}
	if opts.Appearance.Transparency == 0 {
		opts.Appearance.Transparency = 0.8
	}
	c, err := New(backend, contents, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	surface := backend.Windows[len(backend.Windows)-1]
	if err := c.Attach(handlerFor(c)); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	c.Show()
	return c, backend, surface, contents
}

// dragHandler forwards drag events to the controller and ignores the rest.
type dragHandler struct{ c *Controller }

func handlerFor(c *Controller) platform.EventHandler { return dragHandler{c} }

func (h dragHandler) DragBegin(root, _ platform.Point) bool { return h.c.BeginDrag(root) }
func (h dragHandler) DragMotion(root platform.Point) { h.c.UpdateDrag(root) }
func (h dragHandler) DragEnd(platform.Point) { h.c.EndDrag() }
func (h dragHandler) Click(int, platform.Point) {}
func (h dragHandler) Key(string) {}
func (h dragHandler) Configured(r platform.Rect) { h.c.SyncGeometry(r) }
func (h dragHandler) CloseRequested() { h.c.Close() }

func TestNewAppliesInitialAppearance(t *testing.T) {
	c, _, surface, contents := newTestController(t, Options{
		Title:      "Image Overlay",
		Appearance: Appearance{Transparency: 0.8, AlwaysOnTop: true, Decorated: true},
	})

	if surface.Opacity != 0.8 || !surface.Above || !surface.Decorated {
		t.Fatalf("unexpected surface state: %+v", surface)
	}
	if !surface.Shown {
		t.Fatalf("expected window shown")
	}
	if len(contents.builds) != 1 || contents.builds[0] != [2]int{400, 300} {
		t.Fatalf("expected one build at 400x300, got %v", contents.builds)
	}
	if c.DragState() != DragIdle {
		t.Fatalf("expected idle, got %v", c.DragState())
	}
}

func TestNewRaisesTinyGeometryAndClampsOrigin(t *testing.T) {
	c, _, _, _ := newTestController(t, Options{
		Bounds: platform.Rect{X: -5000, Y: -20, Width: 10, Height: -3},
	})
	g := c.Geometry()
	if g.Width != MinWidth || g.Height != MinHeight {
		t.Fatalf("expected minimum size, got %+v", g)
	}
	if g.X != -MinWidth+DefaultMinVisible || g.Y != 0 {
		t.Fatalf("expected origin clamped on screen, got %+v", g)
	}
}

func TestNewFailsWhenWindowCannotBeCreated(t *testing.T) {
	backend := platformtest.NewBackend(800, 600)
	backend.CreateErr = errors.New("boom")
	if _, err := New(backend, &stubContents{}, Options{Title: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSetTransparencyClampsAndIsExact(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})

	var seen []float64
	c.Observe(func(a Appearance) { seen = append(seen, a.Transparency) })

	c.SetTransparency(0.65)
	if c.Appearance().Transparency != 0.65 || surface.Opacity != 0.65 {
		t.Fatalf("expected exact 0.65, got %v / %v", c.Appearance().Transparency, surface.Opacity)
	}

	c.SetTransparency(7)
	if c.Appearance().Transparency != 1 {
		t.Fatalf("expected clamp to 1, got %v", c.Appearance().Transparency)
	}
	c.SetTransparency(-1)
	if c.Appearance().Transparency != 0 {
		t.Fatalf("expected clamp to 0, got %v", c.Appearance().Transparency)
	}

	calls := surface.OpacityCall
	c.SetTransparency(math.NaN())
	c.SetTransparency(0)
	if surface.OpacityCall != calls {
		t.Fatalf("expected NaN and unchanged value to be ignored")
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 notifications, got %v", seen)
	}
}

func TestFullscreenRoundTripRestoresDecorationsAndGeometry(t *testing.T) {
	c, _, surface, contents := newTestController(t, Options{
		Appearance: Appearance{Transparency: 0.8, Decorated: true},
	})
	before := c.Geometry()

	c.ToggleFullscreen()
	if !c.Appearance().Fullscreen || c.Appearance().Decorated {
		t.Fatalf("expected fullscreen and undecorated, got %+v", c.Appearance())
	}
	if !surface.Fullscreen || surface.Decorated {
		t.Fatalf("surface not updated: %+v", surface)
	}
	if c.Geometry() != (platform.Rect{Width: 1920, Height: 1080}) {
		t.Fatalf("expected screen geometry, got %+v", c.Geometry())
	}
	if last := contents.builds[len(contents.builds)-1]; last != [2]int{1920, 1080} {
		t.Fatalf("expected rebuild at screen size, got %v", last)
	}

	c.ToggleFullscreen()
	if c.Appearance().Fullscreen || !c.Appearance().Decorated {
		t.Fatalf("expected decorated window after fullscreen, got %+v", c.Appearance())
	}
	if surface.Fullscreen || !surface.Decorated {
		t.Fatalf("surface not restored: %+v", surface)
	}
	if c.Geometry() != before {
		t.Fatalf("expected geometry %+v restored, got %+v", before, c.Geometry())
	}
}

func TestFullscreenKeepsUndecoratedWindowUndecorated(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})
	c.ToggleFullscreen()
	c.ToggleFullscreen()
	if c.Appearance().Decorated || surface.Decorated {
		t.Fatalf("expected window to stay undecorated")
	}
}

func TestSetDecoratedWhileFullscreenAppliesOnExit(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})
	c.ToggleFullscreen()

	calls := surface.DecorCalls
	if !c.ToggleDecorated() {
		t.Fatalf("expected toggle to request decorations")
	}
	if surface.DecorCalls != calls || surface.Decorated {
		t.Fatalf("decorations must not change while fullscreen")
	}
	if !c.DecoratedPreference() {
		t.Fatalf("expected preference recorded")
	}

	c.ToggleFullscreen()
	if !c.Appearance().Decorated || !surface.Decorated {
		t.Fatalf("expected decorations applied on exit")
	}
}

func TestSetGeometryWhileFullscreenIsRestoredLater(t *testing.T) {
	c, _, _, _ := newTestController(t, Options{})
	c.ToggleFullscreen()
	c.SetGeometry(platform.Rect{X: 300, Y: 200, Width: 640, Height: 480})
	if c.Geometry().Width != 1920 {
		t.Fatalf("fullscreen geometry must not change, got %+v", c.Geometry())
	}
	c.ToggleFullscreen()
	if c.Geometry() != (platform.Rect{X: 300, Y: 200, Width: 640, Height: 480}) {
		t.Fatalf("expected requested geometry after fullscreen, got %+v", c.Geometry())
	}
}

func TestCenterOnScreen(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})
	c.CenterOnScreen()
	want := platform.Rect{X: 760, Y: 390, Width: 400, Height: 300}
	if c.Geometry() != want || surface.Bounds != want {
		t.Fatalf("expected %+v, got %+v / %+v", want, c.Geometry(), surface.Bounds)
	}
}

func TestDragMovesWindowKeepingOffset(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})

	ok := surface.Drag(platform.Point{X: 150, Y: 120}, platform.Point{X: 450, Y: 520})
	if !ok {
		t.Fatalf("expected drag to start")
	}
	want := platform.Rect{X: 400, Y: 500, Width: 400, Height: 300}
	if c.Geometry() != want {
		t.Fatalf("expected %+v, got %+v", want, c.Geometry())
	}
	if c.DragState() != DragIdle {
		t.Fatalf("expected idle after release")
	}
}

func TestDragIsClampedOnScreen(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})

	surface.Drag(platform.Point{X: 110, Y: 110}, platform.Point{X: -3000, Y: -3000})
	g := c.Geometry()
	if g.X != -350 || g.Y != 0 {
		t.Fatalf("expected clamp to (-350,0), got %+v", g)
	}
	visible := g.Intersect(platform.Rect{Width: 1920, Height: 1080})
	if visible.Width < DefaultMinVisible {
		t.Fatalf("expected at least %d px visible, got %+v", DefaultMinVisible, visible)
	}
}

func TestDragOutsideDraggableRegionStaysIdle(t *testing.T) {
	backend := platformtest.NewBackend(1920, 1080)
	contents := &stubContents{dragTopPx: 30}
	c, err := New(backend, contents, Options{Bounds: platform.Rect{X: 100, Y: 100, Width: 400, Height: 300}, Appearance: Appearance{Transparency: 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Show()

	if c.BeginDrag(platform.Point{X: 200, Y: 250}) {
		t.Fatalf("press below the drag strip must not start a drag")
	}
	if c.BeginDrag(platform.Point{X: 50, Y: 50}) {
		t.Fatalf("press outside the window must not start a drag")
	}
	if c.DragState() != DragIdle {
		t.Fatalf("expected idle, got %v", c.DragState())
	}
	if !c.BeginDrag(platform.Point{X: 200, Y: 110}) {
		t.Fatalf("press in the drag strip must start a drag")
	}
}

func TestUpdateDragWhileIdleDoesNothing(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{})
	moves := surface.Moves
	before := c.Geometry()

	c.UpdateDrag(platform.Point{X: 900, Y: 900})
	c.EndDrag()

	if c.Geometry() != before || surface.Moves != moves {
		t.Fatalf("expected no movement while idle")
	}
}

func TestDragIsRefusedWhileFullscreen(t *testing.T) {
	c, _, _, _ := newTestController(t, Options{})
	c.ToggleFullscreen()
	if c.BeginDrag(platform.Point{X: 10, Y: 10}) {
		t.Fatalf("expected no drag while fullscreen")
	}
}

func TestDragEndSnapsToNearbyEdge(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{SnapThreshold: 25})
	surface.Drag(platform.Point{X: 110, Y: 110}, platform.Point{X: 25, Y: 400})

	g := c.Geometry()
	if g.X != 1 {
		t.Fatalf("expected snap to left margin, got %+v", g)
	}
}

func TestSyncGeometryPullsWindowBack(t *testing.T) {
	c, _, surface, contents := newTestController(t, Options{})
	builds := len(contents.builds)

	surface.Handler.Configured(platform.Rect{X: 5000, Y: 100, Width: 500, Height: 300})

	g := c.Geometry()
	if g.X != 1870 || g.Width != 500 {
		t.Fatalf("expected clamp to x=1870 at new width, got %+v", g)
	}
	if surface.Bounds != g {
		t.Fatalf("expected surface moved back, got %+v", surface.Bounds)
	}
	if len(contents.builds) != builds+1 {
		t.Fatalf("expected rebuild after resize")
	}
}

func TestCloseRunsHooksOnceAndDestroys(t *testing.T) {
	c, backend, surface, _ := newTestController(t, Options{})

	closes := 0
	c.OnClose(func() { closes++ })
	cancelled := 0
	cancel := c.OnClose(func() { cancelled++ })
	cancel()

	surface.Handler.CloseRequested()
	c.Close()

	if closes != 1 || cancelled != 0 {
		t.Fatalf("expected one close hook run, got %d / %d", closes, cancelled)
	}
	if !surface.Destroyed || !c.Closed() {
		t.Fatalf("expected window destroyed")
	}
	if len(backend.Live()) != 0 {
		t.Fatalf("expected no live windows")
	}

	c.SetTransparency(0.5)
	if surface.Opacity == 0.5 {
		t.Fatalf("closed controller must ignore updates")
	}
}

func TestDragStateString(t *testing.T) {
	if DragIdle.String() != "idle" || DragDragging.String() != "dragging" || DragState(9).String() != "unknown" {
		t.Fatalf("unexpected drag state names")
	}
}

func TestEnsureOnScreenUsesFrameMargin(t *testing.T) {
	c, _, surface, _ := newTestController(t, Options{
		Bounds:     platform.Rect{X: 1700, Y: 900, Width: 400, Height: 300},
		Appearance: Appearance{Transparency: 1, Decorated: true},
	})
	c.EnsureOnScreen()
	want := platform.Rect{X: 1510, Y: 770, Width: 400, Height: 300}
	if c.Geometry() != want || surface.Bounds != want {
		t.Fatalf("expected %+v, got %+v", want, c.Geometry())
	}
}
