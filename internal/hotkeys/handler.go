package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler binds keyboard shortcuts to individual windows.
type Handler struct {
	xu *xgbutil.XUtil
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(xu *xgbutil.XUtil) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{xu: xu}
}

// RegisterWindowFunc calls callback whenever keySequence is pressed while win
// has keyboard focus.
func (h *Handler) RegisterWindowFunc(win xproto.Window, keySequence string, callback func()) error {
	if h == nil || h.xu == nil {
		return fmt.Errorf("hotkeys: no X connection")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, win, keySequence, true)
}

// DetachWindow drops every binding registered for win.
func (h *Handler) DetachWindow(win xproto.Window) {
	if h == nil || h.xu == nil {
		return
	}
	keybind.Detach(h.xu, win)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	var numLock, scrollLock uint16
	if xu != nil {
		numLock = modMaskForKeysym(xu, "Num_Lock")
		scrollLock = modMaskForKeysym(xu, "Scroll_Lock")
	}

	xevent.IgnoreMods = IgnoreMasks(caps, numLock, scrollLock)
}

// IgnoreMasks returns every combination of the given lock modifiers,
// including the empty mask, with zero and duplicate masks dropped from the
// inputs.
func IgnoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	seen := make(map[uint16]struct{})
	for _, mask := range locks {
		if mask == 0 {
			continue
		}
		if _, ok := seen[mask]; ok {
			continue
		}
		seen[mask] = struct{}{}
		base = append(base, mask)
	}

	unique := make(map[uint16]struct{})
	ignore := []uint16{0}
	unique[0] = struct{}{}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		if _, ok := unique[mask]; ok {
			continue
		}
		unique[mask] = struct{}{}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
