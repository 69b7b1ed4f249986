package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

const (
	stateRemove = 0
	stateAdd    = 1

	sourceIndication = 2 // pager/direct action
	iconicState      = 3
)

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	c.RaiseWindow(windowID)
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication, 0, 0, 0, 0)
}

// MinimizeWindow iconifies a window via WM_CHANGE_STATE.
func (c *Connection) MinimizeWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState, 0, 0, 0, 0)
}

// sendRootMessage sends a 32-bit client message about windowID to the root
// window, the way EWMH and ICCCM expect window manager requests.
// The message is built by hand because the xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) sendRootMessage(windowID xproto.Window, messageType string, data ...uint32) error {
	typeAtom, err := xprop.Atm(c.XUtil, messageType)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", messageType, err)
	}

	words := make([]uint32, 5)
	copy(words, data)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   typeAtom,
		Data:   xproto.ClientMessageDataUnionData32New(words),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
