package overlay

import (
	"errors"
	"fmt"

	"github.com/1broseidon/imgoverlay/internal/palette"
)

// Context menu actions.
const (
	ActionLoad        = "load"
	ActionClear       = "clear"
	ActionSettings    = "settings"
	ActionAlwaysOnTop = "always-on-top"
	ActionFullscreen  = "fullscreen"
	ActionFrame       = "frame"
	ActionMinimize    = "minimize"
	ActionClose       = "close"
)

const menuPrompt = "Image Overlay"

// MenuItems returns the context menu rows for the current state.
func (o *Overlay) MenuItems() []palette.MenuItem {
	app := o.ctrl.Appearance()
	return []palette.MenuItem{
		{Label: "Load Image", Action: ActionLoad, Icon: "document-open"},
		{Label: "Clear Image", Action: ActionClear, Icon: "edit-clear"},
		{IsDivider: true},
		{Label: "Settings", Action: ActionSettings, Icon: "preferences-system"},
		{IsDivider: true},
		{Label: "Toggle Always On Top", Action: ActionAlwaysOnTop, Icon: "go-top", IsActive: app.AlwaysOnTop},
		{Label: "Toggle Fullscreen", Action: ActionFullscreen, Icon: "view-fullscreen", IsActive: app.Fullscreen},
		{Label: "Toggle Frame", Action: ActionFrame, Icon: "window-new", IsActive: o.ctrl.DecoratedPreference()},
		{Label: "Minimize", Action: ActionMinimize, Icon: "window-minimize"},
		{IsDivider: true},
		{Label: "Close", Action: ActionClose, Icon: "window-close"},
	}
}

// ShowMenu shows the context menu and performs the chosen action.
func (o *Overlay) ShowMenu() {
	if o.prompter == nil {
		o.logger.Warn("no menu backend available")
		return
	}
	action, err := o.prompter.Select(menuPrompt, o.MenuItems())
	if err != nil {
		if !errors.Is(err, palette.ErrCancelled) {
			o.logger.Warn("context menu failed", "err", err)
		}
		return
	}
	if err := o.Perform(action); err != nil {
		o.logger.Warn("context menu action failed", "action", action, "err", err)
	}
}

// Perform runs a context menu action.
func (o *Overlay) Perform(action string) error {
	if o.closed {
		return nil
	}
	switch action {
	case ActionLoad:
		o.PromptLoad()
	case ActionClear:
		o.ClearImage()
	case ActionSettings:
		o.OpenSettings()
	case ActionAlwaysOnTop:
		o.ctrl.ToggleAlwaysOnTop()
	case ActionFullscreen:
		o.ctrl.ToggleFullscreen()
	case ActionFrame:
		o.ctrl.ToggleDecorated()
	case ActionMinimize:
		o.ctrl.Minimize()
	case ActionClose:
		o.Close()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}
