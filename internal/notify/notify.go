// Package notify shows freedesktop desktop notifications.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	destination = "org.freedesktop.Notifications"
	objectPath  = "/org/freedesktop/Notifications"
	method      = destination + ".Notify"

	// DefaultTimeout is how long a notification stays up, in milliseconds.
	DefaultTimeout = 5000
)

// Urgency levels from the notification spec.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Notifier reports a message to the user.
type Notifier interface {
	Notify(summary, body string) error
}

// DBus sends notifications over the session bus. Each new notification
// replaces the previous one so repeated errors do not pile up.
type DBus struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	app     string
	icon    string
	urgency byte
	lastID  uint32
}

var _ Notifier = (*DBus)(nil)

// NewDBus connects to the session bus.
func NewDBus(app, icon string) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	return &DBus{
		conn:    conn,
		obj:     conn.Object(destination, dbus.ObjectPath(objectPath)),
		app:     app,
		icon:    icon,
		urgency: UrgencyNormal,
	}, nil
}

func (n *DBus) Notify(summary, body string) error {
	call := n.obj.Call(method, 0, notifyArgs(n.app, n.lastID, n.icon, summary, body, n.urgency)...)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	n.lastID = id
	return nil
}

// Close releases the bus connection.
func (n *DBus) Close() error {
	return n.conn.Close()
}

// notifyArgs builds the argument list of org.freedesktop.Notifications.Notify:
// app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout.
func notifyArgs(app string, replaces uint32, icon, summary, body string, urgency byte) []any {
	return []any{
		app,
		replaces,
		icon,
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency)},
		int32(DefaultTimeout),
	}
}

// Log writes notifications to a logger. It is used when no notification
// daemon is reachable or notifications are disabled.
type Log struct {
	Logger *slog.Logger
}

var _ Notifier = Log{}

func (l Log) Notify(summary, body string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(summary, "detail", body)
	return nil
}

// New returns a D-Bus notifier when enabled and reachable, otherwise a Log
// notifier.
func New(enabled bool, app string, logger *slog.Logger) Notifier {
	if !enabled {
		return Log{Logger: logger}
	}
	n, err := NewDBus(app, "image-x-generic")
	if err != nil {
		if logger != nil {
			logger.Info("desktop notifications unavailable", "err", err)
		}
		return Log{Logger: logger}
	}
	return n
}
