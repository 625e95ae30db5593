package snitray

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const (
	StatusNotifierWatcherInterface = "org.kde.StatusNotifierWatcher"
	StatusNotifierWatcherPath      = "/StatusNotifierWatcher"
)

// Watcher implements org.kde.StatusNotifierWatcher. It tracks registered
// hosts and items and arbitrates with a pre-existing watcher already present
// on the bus.
type Watcher struct {
	conn   *dbus.Conn
	closed bool

	mu    sync.Mutex
	hosts []string
	items []string

	signals chan *dbus.Signal
}

// NewWatcher returns a new [Watcher] bound to conn. Call [Watcher.Listen] to
// attach it to the bus.
func NewWatcher(conn *dbus.Conn) *Watcher {
	return &Watcher{
		conn:    conn,
		signals: make(chan *dbus.Signal, 64),
	}
}

// Listen registers the watcher object at /StatusNotifierWatcher and requests
// the well-known name org.kde.StatusNotifierWatcher.
//
// If the name is already owned by another watcher, Listen still succeeds:
// the existing watcher wins arbitration and ours continues to serve as a
// passive, fully functional implementation. Listen fails only on a
// connection-level error or if /StatusNotifierWatcher is already exported by
// something else on this same connection.
func (w *Watcher) Listen() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("%w: listen: watcher is closed", ErrInternal)
	}

	if err := w.conn.Export(w, StatusNotifierWatcherPath, StatusNotifierWatcherInterface); err != nil {
		return fmt.Errorf("%w: listen: export %s: %w", ErrTransport, StatusNotifierWatcherInterface, err)
	}

	if err := w.exportIntrospect(); err != nil {
		logErr("export watcher introspection", "err", err)
	}

	reply, err := w.conn.RequestName(StatusNotifierWatcherInterface, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("%w: listen: request name %s: %w", ErrTransport, StatusNotifierWatcherInterface, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		logDebug("watcher name already owned, running as passive implementation", "name", StatusNotifierWatcherInterface)
	}

	w.subscribeOwnerChanges()
	w.exportProperties()

	return nil
}

// Close releases the watcher's well-known name and stops the background
// signal loop. The watcher cannot be reused afterwards.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.conn.ReleaseName(StatusNotifierWatcherInterface)

	for _, name := range append(append([]string{}, w.hosts...), addressNames(w.items)...) {
		w.conn.RemoveMatchSignal(
			dbus.WithMatchInterface("org.freedesktop.DBus"),
			dbus.WithMatchSender("org.freedesktop.DBus"),
			dbus.WithMatchMember("NameOwnerChanged"),
			dbus.WithMatchArg(0, name),
		)
	}

	w.conn.RemoveSignal(w.signals)
	close(w.signals)

	return err
}

// RegisterStatusNotifierHost registers a host identity with the watcher.
// This method is exported to D-Bus.
func (w *Watcher) RegisterStatusNotifierHost(service string, sender dbus.Sender) *dbus.Error {
	name, _, err := w.normalizeService(service, sender)
	if err != nil {
		return dbusInvalidArgs(err)
	}

	w.mu.Lock()
	if slices.Contains(w.hosts, name) {
		w.mu.Unlock()
		return nil
	}
	wasEmpty := len(w.hosts) == 0
	w.hosts = append(w.hosts, name)
	w.mu.Unlock()

	w.watchPeer(name)
	w.conn.Emit(StatusNotifierWatcherPath, StatusNotifierWatcherInterface+".StatusNotifierHostRegistered")
	if wasEmpty {
		w.exportProperties()
	}

	return nil
}

// RegisterStatusNotifierItem registers an item identity with the watcher.
// This method is exported to D-Bus.
func (w *Watcher) RegisterStatusNotifierItem(service string, sender dbus.Sender) *dbus.Error {
	destination, objectPath, err := w.normalizeService(service, sender)
	if err != nil {
		return dbusInvalidArgs(err)
	}

	key := joinAddress(destination, objectPath)

	w.mu.Lock()
	if slices.Contains(w.items, key) {
		w.mu.Unlock()
		return nil
	}
	w.items = append(w.items, key)
	w.mu.Unlock()

	w.watchPeer(destination)
	w.conn.Emit(StatusNotifierWatcherPath, StatusNotifierWatcherInterface+".StatusNotifierItemRegistered", key)
	w.exportProperties()

	return nil
}

// UnregisterStatusNotifierItem removes an item identity from the watcher.
// This method is exported to D-Bus.
func (w *Watcher) UnregisterStatusNotifierItem(service string, sender dbus.Sender) *dbus.Error {
	destination, objectPath, err := w.normalizeService(service, sender)
	if err != nil {
		return dbusInvalidArgs(err)
	}
	w.removeItem(joinAddress(destination, objectPath))
	return nil
}

// Items returns the currently registered item keys.
func (w *Watcher) Items() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.items)
}

// normalizeService resolves the three shapes a `service` argument may take
// into a canonical (destination, object_path) pair.
func (w *Watcher) normalizeService(service string, sender dbus.Sender) (destination, objectPath string, err error) {
	switch {
	case strings.HasPrefix(service, "/"):
		return string(sender), service, nil
	case strings.HasPrefix(service, ":"):
		return service, DefaultItemPath, nil
	case service != "":
		owner, err := w.getNameOwner(service)
		if err != nil {
			return "", "", fmt.Errorf("resolve well-known name %s: %w", service, err)
		}
		return owner, DefaultItemPath, nil
	default:
		return "", "", fmt.Errorf("empty service argument")
	}
}

func (w *Watcher) getNameOwner(name string) (string, error) {
	var owner string
	err := w.conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner)
	return owner, err
}

// watchPeer subscribes to NameOwnerChanged for name and, to close the race
// between registration and subscription, immediately probes NameHasOwner:
// if the peer is already gone, it is unregistered right away.
func (w *Watcher) watchPeer(name string) {
	w.conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, name),
	)

	var hasOwner bool
	if err := w.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&hasOwner); err == nil && !hasOwner {
		w.removeHost(name)
		w.removeItemsForName(name)
	}
}

func (w *Watcher) subscribeOwnerChanges() {
	w.conn.Signal(w.signals)

	go func() {
		for signal := range w.signals {
			if signal.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(signal.Body) < 3 {
				continue
			}
			name, ok := signal.Body[0].(string)
			if !ok {
				continue
			}
			newOwner, ok := signal.Body[2].(string)
			if !ok || newOwner != "" {
				continue
			}
			w.removeHost(name)
			w.removeItemsForName(name)
		}
	}()
}

func (w *Watcher) removeHost(name string) {
	w.mu.Lock()
	idx := slices.Index(w.hosts, name)
	if idx < 0 {
		w.mu.Unlock()
		return
	}
	w.hosts = slices.Delete(w.hosts, idx, idx+1)
	empty := len(w.hosts) == 0
	w.mu.Unlock()

	w.conn.Emit(StatusNotifierWatcherPath, StatusNotifierWatcherInterface+".StatusNotifierHostUnregistered")
	if empty {
		w.exportProperties()
	}
}

func (w *Watcher) removeItemsForName(name string) {
	w.mu.Lock()
	var removed []string
	remaining := w.items[:0:0]
	for _, item := range w.items {
		destination, _ := parseAddress(item)
		if destination == name {
			removed = append(removed, item)
			continue
		}
		remaining = append(remaining, item)
	}
	w.items = remaining
	w.mu.Unlock()

	for _, key := range removed {
		w.conn.Emit(StatusNotifierWatcherPath, StatusNotifierWatcherInterface+".StatusNotifierItemUnregistered", key)
	}
	if len(removed) > 0 {
		w.exportProperties()
	}
}

func (w *Watcher) removeItem(key string) {
	w.mu.Lock()
	idx := slices.Index(w.items, key)
	if idx < 0 {
		w.mu.Unlock()
		return
	}
	w.items = slices.Delete(w.items, idx, idx+1)
	w.mu.Unlock()

	w.conn.Emit(StatusNotifierWatcherPath, StatusNotifierWatcherInterface+".StatusNotifierItemUnregistered", key)
	w.exportProperties()
}

func (w *Watcher) exportProperties() {
	w.mu.Lock()
	items := slices.Clone(w.items)
	hostRegistered := len(w.hosts) > 0
	w.mu.Unlock()

	prop.Export(w.conn, StatusNotifierWatcherPath, prop.Map{
		StatusNotifierWatcherInterface: {
			"RegisteredStatusNotifierItems":  {Value: items, Writable: false, Emit: prop.EmitTrue},
			"IsStatusNotifierHostRegistered": {Value: hostRegistered, Writable: false, Emit: prop.EmitTrue},
			"ProtocolVersion":                {Value: 0, Writable: false, Emit: prop.EmitTrue},
		},
	})
}

func (w *Watcher) exportIntrospect() error {
	node := introspect.Node{
		Name: StatusNotifierWatcherPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:    StatusNotifierWatcherInterface,
				Methods: introspect.Methods(w),
				Properties: []introspect.Property{
					{Name: "RegisteredStatusNotifierItems", Type: "as", Access: "read"},
					{Name: "IsStatusNotifierHostRegistered", Type: "b", Access: "read"},
					{Name: "ProtocolVersion", Type: "i", Access: "read"},
				},
				Signals: []introspect.Signal{
					{Name: "StatusNotifierHostRegistered"},
					{Name: "StatusNotifierHostUnregistered"},
					{Name: "StatusNotifierItemRegistered", Args: []introspect.Arg{{Name: "service", Type: "s", Direction: "out"}}},
					{Name: "StatusNotifierItemUnregistered", Args: []introspect.Arg{{Name: "service", Type: "s", Direction: "out"}}},
				},
			},
		},
	}
	return w.conn.Export(introspect.NewIntrospectable(&node), StatusNotifierWatcherPath, "org.freedesktop.DBus.Introspectable")
}

func dbusInvalidArgs(err error) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", []any{err.Error()})
}

func addressNames(addresses []string) []string {
	names := make([]string, 0, len(addresses))
	for _, a := range addresses {
		destination, _ := parseAddress(a)
		names = append(names, destination)
	}
	return names
}
