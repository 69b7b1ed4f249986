// Package palette runs menus through an external launcher such as rofi.
package palette

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single row handed to a launcher.
type Item struct {
	Label     string
	Action    string // Returned on selection; empty for dividers
	Icon      string // Icon name, shown by launchers that support icons
	IsDivider bool
	IsActive  bool
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	// Show displays the palette and returns the selected item, or
	// ErrCancelled when the user dismisses it. message is an optional
	// context line, shown only where the launcher has a message bar.
	Show(prompt string, items []Item, message string) (Item, error)
}

// Wayland-native launchers come first in a Wayland session. rofi and dmenu
// still work there through XWayland.
var (
	x11Order     = []string{"rofi", "dmenu", "fuzzel", "wofi"}
	waylandOrder = []string{"fuzzel", "wofi", "rofi", "dmenu"}
)

// SessionType returns "wayland" or "x11" for the current login session.
func SessionType() string {
	switch strings.ToLower(os.Getenv("XDG_SESSION_TYPE")) {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "wayland"
	}
	return "x11"
}

// Candidates returns launcher names in the order they are tried for session.
func Candidates(session string) []string {
	if session == "wayland" {
		return waylandOrder
	}
	return x11Order
}

// DetectBackend returns the first launcher for session that look can find.
func DetectBackend(session string, look func(string) (string, error)) (string, error) {
	names := Candidates(session)
	for _, name := range names {
		if _, err := look(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(names, ", "))
}

// NewBackend creates a backend by name. "auto" or an empty name picks the
// first launcher installed for the current session.
//
// Supported names: auto, rofi, fuzzel, wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend(SessionType(), exec.LookPath)
		if err != nil {
			return nil, err
		}
		name = detected
	}

	l, ok := launchers[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, rofi, fuzzel, wofi, dmenu)", name)
	}
	if _, err := exec.LookPath(l.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return l, nil
}
