// Package settings implements the settings window attached to an overlay.
package settings

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/ui"
	"github.com/1broseidon/imgoverlay/internal/window"
)

const (
	panelTitle = "Overlay Settings"
	panelClass = "imgoverlay-settings"
	padding    = 15
)

// Options configures every panel a Registry opens.
type Options struct {
	Theme  ui.Theme
	Width  int
	Height int
	// SliderMin and SliderStep bound the transparency slider; its maximum is 1.
	SliderMin  float64
	SliderStep float64
	// Offset is the gap between the target window and the panel.
	Offset int
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 300
	}
	if o.Height <= 0 {
		o.Height = 250
	}
	if o.SliderStep <= 0 {
		o.SliderStep = 0.05
	}
	if o.SliderMin < 0 || o.SliderMin >= 1 {
		o.SliderMin = 0.5
	}
	if o.Offset == 0 {
		o.Offset = 10
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

type toggleKind int

const (
	toggleAlwaysOnTop toggleKind = iota
	toggleFullscreen
	toggleFrame
)

type toggle struct {
	ui.Toggle
	kind toggleKind
}

// Panel is the settings window for one target window.
type Panel struct {
	registry *Registry
	target   *window.Controller
	ctrl     *window.Controller
	theme    ui.Theme
	logger   *slog.Logger

	title    ui.Label
	value    ui.Label
	slider   ui.Slider
	options  ui.Label
	toggles  []toggle
	closeBtn ui.Button

	sliding bool
	cancels []func()
	closed  bool
}

var (
	_ window.Contents       = (*Panel)(nil)
	_ platform.EventHandler = (*Panel)(nil)
)

func newPanel(r *Registry, target *window.Controller) (*Panel, error) {
	opts := r.opts
	p := &Panel{
		registry: r,
		target:   target,
		theme:    opts.Theme,
		logger:   opts.Logger.With("panel", target.Title()),
		slider: ui.Slider{
			Min:  opts.SliderMin,
			Max:  1,
			Step: opts.SliderStep,
		},
		toggles: []toggle{
			{Toggle: ui.Toggle{Label: "Always On Top"}, kind: toggleAlwaysOnTop},
			{Toggle: ui.Toggle{Label: "Fullscreen"}, kind: toggleFullscreen},
			{Toggle: ui.Toggle{Label: "Window Frame"}, kind: toggleFrame},
		},
		closeBtn: ui.Button{Label: "Close Settings", Style: ui.ButtonDanger},
	}
	p.sync(target.Appearance())

	ctrl, err := window.New(r.backend, p, window.Options{
		Title:  panelTitle,
		Class:  panelClass,
		Bounds: platform.Rect{Width: opts.Width, Height: opts.Height},
		Appearance: window.Appearance{
			Transparency: 1,
			AlwaysOnTop:  target.Appearance().AlwaysOnTop,
			Decorated:    true,
		},
		MinVisible: target.MinVisible(),
		Background: ui.Pixel(opts.Theme.Colors.BgPrimary),
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	p.ctrl = ctrl

	if err := ctrl.Attach(p); err != nil {
		ctrl.Close()
		return nil, err
	}
	if err := ctrl.Surface().BindKey("Escape"); err != nil {
		p.logger.Warn("failed to bind Escape", "err", err)
	}

	p.cancels = append(p.cancels,
		target.Observe(p.targetChanged),
		target.OnClose(p.Close),
	)

	ctrl.PlaceBeside(target.Geometry(), opts.Offset)
	ctrl.Show()
	return p, nil
}

// Target returns the window this panel controls.
func (p *Panel) Target() *window.Controller {
	return p.target
}

// Window returns the panel's own window controller.
func (p *Panel) Window() *window.Controller {
	return p.ctrl
}

// Closed reports whether the panel has been closed.
func (p *Panel) Closed() bool {
	return p.closed
}

// Close destroys the panel and detaches it from its target. A later Open for
// the same target creates a new panel.
func (p *Panel) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.sliding = false
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
	p.registry.remove(p)
	p.ctrl.Close()
}

// SetTransparency moves the slider to level and applies it to the target.
func (p *Panel) SetTransparency(level float64) {
	if p.closed {
		return
	}
	// The target notifies back through targetChanged, which redraws.
	p.target.SetTransparency(p.slider.Snap(level))
}

func (p *Panel) targetChanged(app window.Appearance) {
	if p.closed {
		return
	}
	p.sync(app)
	p.ctrl.SetAlwaysOnTop(app.AlwaysOnTop)
	p.render()
}

// sync copies the target's state into the widgets.
func (p *Panel) sync(app window.Appearance) {
	p.slider.Value = app.Transparency
	p.value.Text = fmt.Sprintf("Transparency: %.2f", app.Transparency)
	for i := range p.toggles {
		switch p.toggles[i].kind {
		case toggleAlwaysOnTop:
			p.toggles[i].On = app.AlwaysOnTop
		case toggleFullscreen:
			p.toggles[i].On = app.Fullscreen
		case toggleFrame:
			p.toggles[i].On = p.target.DecoratedPreference()
		}
	}
}

func (p *Panel) activate(kind toggleKind) {
	switch kind {
	case toggleAlwaysOnTop:
		p.target.ToggleAlwaysOnTop()
	case toggleFullscreen:
		p.target.ToggleFullscreen()
		p.ctrl.Focus()
	case toggleFrame:
		p.target.ToggleDecorated()
		// The panel may now be covered by the target; bring it back.
		p.ctrl.Focus()
	}
}

// BuildContents lays out the widgets for width x height and repaints.
func (p *Panel) BuildContents(width, height int) {
	inner := width - 2*padding
	y := padding

	p.title = ui.Label{Text: panelTitle, Rect: image.Rect(padding, y, padding+inner, y+24), Role: ui.FontTitle, Align: ui.AlignCenter}
	y += 24 + 15

	p.value.Rect = image.Rect(padding, y, padding+inner, y+18)
	p.value.Role = ui.FontButton
	y += 20
	p.slider.Rect = image.Rect(padding, y, padding+inner, y+22)
	y += 22 + 10

	p.options = ui.Label{Text: "Window Options:", Rect: image.Rect(padding, y, padding+inner, y+18), Role: ui.FontButton}
	y += 20
	for i := range p.toggles {
		p.toggles[i].Rect = image.Rect(padding, y, padding+inner, y+24)
		y += 28
	}
	y += 6

	closeW := min(140, inner)
	x := (width - closeW) / 2
	p.closeBtn.Rect = image.Rect(x, y, x+closeW, y+26)

	p.render()
}

func (p *Panel) render() {
	if p.closed || p.ctrl == nil {
		return
	}
	g := p.ctrl.Geometry()
	canvas := ui.NewCanvas(g.Width, g.Height, p.theme.Colors.BgPrimary)

	p.title.Draw(canvas, p.theme)
	p.value.Draw(canvas, p.theme)
	p.slider.Draw(canvas, p.theme)
	p.options.Draw(canvas, p.theme)
	for _, t := range p.toggles {
		t.Draw(canvas, p.theme)
	}
	p.closeBtn.Draw(canvas, p.theme)

	p.ctrl.Paint(canvas)
}

// Draggable reports whether local is outside every control.
func (p *Panel) Draggable(local platform.Point) bool {
	pt := image.Pt(local.X, local.Y)
	if p.slider.Contains(pt) || p.closeBtn.Contains(pt) {
		return false
	}
	for _, t := range p.toggles {
		if t.Contains(pt) {
			return false
		}
	}
	return true
}

func (p *Panel) DragBegin(root, local platform.Point) bool {
	if p.closed {
		return false
	}
	if p.slider.Contains(image.Pt(local.X, local.Y)) {
		p.sliding = true
		p.SetTransparency(p.slider.ValueAt(local.X))
		return true
	}
	return p.ctrl.BeginDrag(root)
}

func (p *Panel) DragMotion(root platform.Point) {
	if p.sliding {
		g := p.ctrl.Geometry()
		p.SetTransparency(p.slider.ValueAt(root.X - g.X))
		return
	}
	p.ctrl.UpdateDrag(root)
}

func (p *Panel) DragEnd(root platform.Point) {
	if p.sliding {
		p.sliding = false
		return
	}
	p.ctrl.EndDrag()
}

func (p *Panel) Click(button int, local platform.Point) {
	if p.closed {
		return
	}
	pt := image.Pt(local.X, local.Y)
	switch button {
	case 1:
		if p.closeBtn.Contains(pt) {
			p.Close()
			return
		}
		for _, t := range p.toggles {
			if t.Contains(pt) {
				p.activate(t.kind)
				return
			}
		}
	case 4:
		p.SetTransparency(p.slider.Stepped(1))
	case 5:
		p.SetTransparency(p.slider.Stepped(-1))
	}
}

func (p *Panel) Key(name string) {
	if name == "Escape" {
		p.Close()
	}
}

func (p *Panel) Configured(bounds platform.Rect) {
	if !p.closed {
		p.ctrl.SyncGeometry(bounds)
	}
}

func (p *Panel) CloseRequested() {
	p.Close()
}
