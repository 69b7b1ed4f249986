// Package overlay implements the main image overlay window.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/1broseidon/imgoverlay/internal/imageload"
	"github.com/1broseidon/imgoverlay/internal/notify"
	"github.com/1broseidon/imgoverlay/internal/palette"
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/settings"
	"github.com/1broseidon/imgoverlay/internal/ui"
	"github.com/1broseidon/imgoverlay/internal/window"
)

const (
	Title = "Image Overlay"
	Class = "imgoverlay"

	// DefaultWidth and DefaultHeight are the size of an empty overlay.
	DefaultWidth  = 400
	DefaultHeight = 300

	// screenMargin is kept free around a freshly loaded image.
	screenMargin = 100
	// Frame and toolbar padding added around the image.
	padWidth  = 20
	padHeight = 50

	toolbarHeight = 40
	edge          = 10

	placeholderText = "Load Image"
)

// Prompter shows menus and the image file chooser.
type Prompter interface {
	Select(prompt string, items []palette.MenuItem) (string, error)
	ChooseFile(dir string) (string, error)
}

// Options configures a new Overlay.
type Options struct {
	Theme         ui.Theme
	Bounds        platform.Rect
	Appearance    window.Appearance
	MinVisible    int
	SnapThreshold int
	// ImageDir is where the file chooser starts. Empty means the home
	// directory.
	ImageDir string

	Prompter Prompter
	Notifier notify.Notifier
	Settings *settings.Registry
	Logger   *slog.Logger
}

// Overlay is the main window: one image, a toolbar and a context menu.
type Overlay struct {
	backend  platform.Backend
	ctrl     *window.Controller
	theme    ui.Theme
	logger   *slog.Logger
	prompter Prompter
	notifier notify.Notifier
	settings *settings.Registry
	imageDir string

	image  image.Image
	path   string
	status string

	// scaled caches image scaled for the current display area.
	scaled    *image.RGBA
	scaledFor image.Point
	rescales  int
	stale     bool

	// Geometry before and after the last load, used to contract on clear.
	preLoad  platform.Rect
	postLoad platform.Rect
	tracked  bool

	openBtn     ui.Button
	clearBtn    ui.Button
	settingsBtn ui.Button

	closed bool
}

var (
	_ window.Contents       = (*Overlay)(nil)
	_ platform.EventHandler = (*Overlay)(nil)
)

// New creates the overlay window and shows it centred on screen.
func New(backend platform.Backend, opts Options) (*Overlay, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Log{Logger: logger}
	}

	o := &Overlay{
		backend:     backend,
		theme:       opts.Theme,
		logger:      logger,
		prompter:    opts.Prompter,
		notifier:    notifier,
		settings:    opts.Settings,
		imageDir:    opts.ImageDir,
		openBtn:     ui.Button{Label: "Open", Style: ui.ButtonIcon},
		clearBtn:    ui.Button{Label: "Clear", Style: ui.ButtonIcon},
		settingsBtn: ui.Button{Label: "Settings", Style: ui.ButtonIcon},
	}

	bounds := opts.Bounds
	if bounds.Width <= 0 {
		bounds.Width = DefaultWidth
	}
	if bounds.Height <= 0 {
		bounds.Height = DefaultHeight
	}

	ctrl, err := window.New(backend, o, window.Options{
		Title:         Title,
		Class:         Class,
		Bounds:        bounds,
		Appearance:    opts.Appearance,
		MinVisible:    opts.MinVisible,
		SnapThreshold: opts.SnapThreshold,
		Background:    ui.Pixel(opts.Theme.Colors.BgPrimary),
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	o.ctrl = ctrl

	if err := ctrl.Attach(o); err != nil {
		ctrl.Close()
		return nil, err
	}
	if err := ctrl.Surface().BindKey("Escape"); err != nil {
		logger.Warn("failed to bind Escape", "err", err)
	}

	if !opts.Appearance.Fullscreen {
		ctrl.CenterOnScreen()
	}
	ctrl.Show()
	return o, nil
}

// Window returns the overlay's window controller.
func (o *Overlay) Window() *window.Controller {
	return o.ctrl
}

// Image returns the displayed image, or nil when none is loaded.
func (o *Overlay) Image() image.Image {
	return o.image
}

// Path returns the path of the displayed image.
func (o *Overlay) Path() string {
	return o.path
}

// Status returns the status line text.
func (o *Overlay) Status() string {
	return o.status
}

// Closed reports whether the overlay has been closed.
func (o *Overlay) Closed() bool {
	return o.closed
}

// LoadImage decodes path and displays it, resizing the window to fit. On
// failure the current image stays on screen and the returned error is an
// *imageload.Error.
func (o *Overlay) LoadImage(path string) error {
	if o.closed {
		return nil
	}

	img, err := imageload.Decode(path)
	if err != nil {
		var loadErr *imageload.Error
		if !errors.As(err, &loadErr) {
			loadErr = &imageload.Error{Path: path, Op: "decode", Err: err}
		}
		o.status = fmt.Sprintf("Error: %v", loadErr.Err)
		o.logger.Warn("failed to load image", "path", path, "err", loadErr.Err)
		if nerr := o.notifier.Notify("Could not load image", loadErr.Error()); nerr != nil {
			o.logger.Debug("notification failed", "err", nerr)
		}
		o.render()
		return loadErr
	}

	o.image = img
	o.path = path
	o.status = filepath.Base(path)
	o.scaled = nil
	o.stale = true

	// While fullscreen the load resizes the windowed geometry that
	// leaving fullscreen restores.
	pre := o.ctrl.RestoreGeometry()
	g := pre
	if screen, ok := o.ctrl.Screen(); ok {
		b := img.Bounds()
		w, h := imageload.Fit(b.Dx(), b.Dy(), screen.Width-screenMargin, screen.Height-screenMargin)
		g.Width, g.Height = w+padWidth, h+padHeight
	}
	o.ctrl.SetGeometry(g)
	o.ctrl.EnsureOnScreen()

	o.preLoad = pre
	o.postLoad = o.ctrl.RestoreGeometry()
	o.tracked = true
	o.refresh()

	o.logger.Info("image loaded", "path", path, "size", img.Bounds().Size())
	return nil
}

// ClearImage drops the image, shows the placeholder and returns the window
// to its default size. When the last load pushed the window away from a
// screen edge, the window contracts back toward that edge.
func (o *Overlay) ClearImage() {
	if o.closed {
		return
	}
	o.image = nil
	o.path = ""
	o.scaled = nil
	o.status = ""
	o.stale = true

	cur := o.ctrl.RestoreGeometry()
	target := platform.Rect{X: cur.X, Y: cur.Y, Width: DefaultWidth, Height: DefaultHeight}
	if o.tracked {
		target.X, target.Y = contractOrigin(cur, o.preLoad, o.postLoad)
	}
	o.tracked = false

	o.ctrl.SetGeometry(target)
	o.ctrl.EnsureOnScreen()
	o.refresh()
}

// contractOrigin returns where an empty window goes when an image is
// cleared. An axis on which loading moved the window back while growing
// keeps its far edge; any other axis keeps its current origin.
func contractOrigin(cur, pre, post platform.Rect) (int, int) {
	x, y := cur.X, cur.Y
	if post.X-pre.X < 0 && post.Width > pre.Width {
		x = cur.X + (post.Width - DefaultWidth)
	}
	if post.Y-pre.Y < 0 && post.Height > pre.Height {
		y = cur.Y + (post.Height - DefaultHeight)
	}
	return x, y
}

// PromptLoad asks for an image file and loads it.
func (o *Overlay) PromptLoad() {
	if o.prompter == nil {
		o.logger.Warn("no menu backend available to choose an image")
		return
	}
	path, err := o.prompter.ChooseFile(o.imageDir)
	if err != nil {
		if !errors.Is(err, palette.ErrCancelled) {
			o.logger.Warn("file chooser failed", "err", err)
		}
		return
	}
	if err := o.LoadImage(path); err != nil {
		o.logger.Debug("chosen file not loaded", "path", path, "err", err)
	}
}

// OpenSettings opens the settings panel, or focuses it if already open.
func (o *Overlay) OpenSettings() {
	if o.settings == nil || o.closed {
		return
	}
	if _, err := o.settings.Open(o.ctrl); err != nil {
		o.logger.Error("failed to open settings", "err", err)
	}
}

// Close closes the overlay together with its settings panel and stops the
// event loop.
func (o *Overlay) Close() {
	if o.closed {
		return
	}
	o.closed = true
	o.ctrl.Close()
	o.backend.Quit()
}

// BuildContents lays out the toolbar for width x height, rescaling the image
// when the display area changed.
func (o *Overlay) BuildContents(width, height int) {
	o.openBtn.Rect = image.Rect(5, 5, 55, toolbarHeight-5)
	o.clearBtn.Rect = image.Rect(60, 5, 110, toolbarHeight-5)
	right := max(width-5, o.clearBtn.Rect.Max.X+75)
	o.settingsBtn.Rect = image.Rect(right-70, 5, right, toolbarHeight-5)

	o.stale = false
	o.rescale(o.imageArea(width, height))
	o.render()
}

// refresh redraws after a change that may not have resized the window.
func (o *Overlay) refresh() {
	if !o.stale {
		return
	}
	g := o.ctrl.Geometry()
	o.BuildContents(g.Width, g.Height)
}

func (o *Overlay) imageArea(width, height int) image.Rectangle {
	return image.Rect(edge, toolbarHeight, width-edge, height-edge)
}

func (o *Overlay) rescale(area image.Rectangle) {
	if o.image == nil {
		o.scaled = nil
		return
	}
	size := area.Size()
	if o.scaled != nil && size == o.scaledFor {
		return
	}
	b := o.image.Bounds()
	w, h := imageload.Fill(b.Dx(), b.Dy(), size.X, size.Y)
	if w <= 0 || h <= 0 {
		o.scaled = nil
		return
	}
	o.scaled = imageload.Scale(o.image, w, h)
	o.scaledFor = size
	o.rescales++
}

func (o *Overlay) render() {
	if o.closed || o.ctrl == nil {
		return
	}
	g := o.ctrl.Geometry()
	canvas := ui.NewCanvas(g.Width, g.Height, o.theme.Colors.BgPrimary)

	ui.Fill(canvas, image.Rect(0, 0, g.Width, toolbarHeight), o.theme.Colors.BgSecondary)
	o.openBtn.Draw(canvas, o.theme)
	o.clearBtn.Draw(canvas, o.theme)
	o.settingsBtn.Draw(canvas, o.theme)
	if o.status != "" {
		r := image.Rect(o.clearBtn.Rect.Max.X+5, 5, o.settingsBtn.Rect.Min.X-5, toolbarHeight-5)
		ui.DrawText(canvas, r, o.status, o.theme.Face(ui.FontDefault), o.theme.Colors.FgPrimary, ui.AlignCenter)
	}

	area := o.imageArea(g.Width, g.Height)
	if o.scaled != nil {
		sb := o.scaled.Bounds()
		at := image.Pt(
			area.Min.X+(area.Dx()-sb.Dx())/2,
			area.Min.Y+(area.Dy()-sb.Dy())/2,
		)
		ui.Blit(canvas, o.scaled, at)
	} else {
		ui.DrawText(canvas, area, placeholderText, o.theme.Face(ui.FontLarge), o.theme.Colors.FgPrimary, ui.AlignCenter)
	}

	o.ctrl.Paint(canvas)
}

// Draggable reports whether local is outside every toolbar button.
func (o *Overlay) Draggable(local platform.Point) bool {
	pt := image.Pt(local.X, local.Y)
	return !o.openBtn.Contains(pt) && !o.clearBtn.Contains(pt) && !o.settingsBtn.Contains(pt)
}

func (o *Overlay) DragBegin(root, _ platform.Point) bool {
	if o.closed {
		return false
	}
	return o.ctrl.BeginDrag(root)
}

func (o *Overlay) DragMotion(root platform.Point) {
	o.ctrl.UpdateDrag(root)
}

func (o *Overlay) DragEnd(platform.Point) {
	o.ctrl.EndDrag()
}

func (o *Overlay) Click(button int, local platform.Point) {
	if o.closed {
		return
	}
	pt := image.Pt(local.X, local.Y)
	switch button {
	case 1:
		switch {
		case o.openBtn.Contains(pt):
			o.PromptLoad()
		case o.clearBtn.Contains(pt):
			o.ClearImage()
		case o.settingsBtn.Contains(pt):
			o.OpenSettings()
		}
	case 3:
		o.ShowMenu()
	}
}

func (o *Overlay) Key(name string) {
	if name == "Escape" {
		o.Close()
	}
}

func (o *Overlay) Configured(bounds platform.Rect) {
	if !o.closed {
		o.ctrl.SyncGeometry(bounds)
	}
}

func (o *Overlay) CloseRequested() {
	o.Close()
}
