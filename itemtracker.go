package snitray

import (
	"strings"

	"github.com/godbus/dbus/v5"
)

// itemProperty maps a StatusNotifierItem signal member to the property name
// that should be re-fetched after it fires.
func itemProperty(member string) string {
	switch member {
	case "NewAttentionIcon":
		return "AttentionIconName"
	case "NewIcon":
		return "IconName"
	case "NewOverlayIcon":
		return "OverlayIconName"
	case "NewStatus":
		return "Status"
	case "NewTitle":
		return "Title"
	case "NewToolTip":
		return "ToolTip"
	default:
		return strings.TrimPrefix(member, "New")
	}
}

// itemTracker owns everything about one SNI peer: initial property fetch,
// signal-driven updates, and disconnection teardown.
type itemTracker struct {
	client      *Client
	address     string
	destination string
	objectPath  string
}

// trackItem fetches an item's properties, emits Add, and if registration
// succeeds, spawns the goroutines that keep it and its menu up to date. A
// required-property decode failure is logged and the item is never
// registered; the facade is not torn down.
func trackItem(client *Client, address string) {
	destination, objectPath := parseAddress(address)
	t := &itemTracker{client: client, address: address, destination: destination, objectPath: objectPath}

	obj := client.conn.Object(destination, dbus.ObjectPath(objectPath))

	var props map[string]dbus.Variant
	err := obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, StatusNotifierItemInterface).Store(&props)
	if err != nil {
		logErr("fetch item properties", "address", address, "err", err)
		return
	}

	item, err := decodeStatusNotifierItem(props)
	if err != nil {
		logErr("decode item properties", "address", address, "err", err)
		return
	}

	client.store.newItem(address, item)
	client.bus.publish(addEvent(address, item))

	go t.watch()

	if item.Menu != "" {
		client.bus.publish(updateEvent(address, UpdateEvent{Kind: UpdateMenuConnect, MenuConnect: item.Menu}))
		go trackMenu(client, address, destination, item.Menu)
	}
}

// watch multiplexes the item's property-change signals and bus-name-owner
// changes, translating each into an Update or Remove event, until the peer
// disconnects.
func (t *itemTracker) watch() {
	conn := t.client.conn

	signals := make(chan *dbus.Signal, 32)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	matchOpts := []dbus.MatchOption{
		dbus.WithMatchInterface(StatusNotifierItemInterface),
		dbus.WithMatchSender(t.destination),
	}
	if err := conn.AddMatchSignal(matchOpts...); err != nil {
		logErr("subscribe item signals", "address", t.address, "err", err)
	}
	defer conn.RemoveMatchSignal(matchOpts...)

	ownerOpts := []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, t.destination),
	}
	if err := conn.AddMatchSignal(ownerOpts...); err != nil {
		logErr("subscribe owner changes", "address", t.address, "err", err)
	}
	defer conn.RemoveMatchSignal(ownerOpts...)

	for signal := range signals {
		if signal.Path != dbus.ObjectPath(t.objectPath) && signal.Name != "org.freedesktop.DBus.NameOwnerChanged" {
			continue
		}

		switch {
		case signal.Name == "org.freedesktop.DBus.NameOwnerChanged":
			if t.handleOwnerChanged(signal) {
				return
			}
		case strings.HasPrefix(signal.Name, StatusNotifierItemInterface+"."):
			t.handlePropertySignal(signal)
		}
	}
}

// handleOwnerChanged reports whether the tracked item's bus name just lost
// its owner, in which case the tracker must exit.
func (t *itemTracker) handleOwnerChanged(signal *dbus.Signal) bool {
	if len(signal.Body) < 3 {
		return false
	}
	name, ok := signal.Body[0].(string)
	if !ok || name != t.destination {
		return false
	}
	newOwner, ok := signal.Body[2].(string)
	if !ok || newOwner != "" {
		return false
	}

	logDebug("item disconnected", "address", t.address)

	watcherObj := t.client.conn.Object(StatusNotifierWatcherInterface, StatusNotifierWatcherPath)
	if call := watcherObj.Call(StatusNotifierWatcherInterface+".UnregisterStatusNotifierItem", 0, t.address); call.Err != nil {
		logErr("unregister item with watcher", "address", t.address, "err", call.Err)
	}

	t.client.store.removeItem(t.address)
	t.client.bus.publish(removeEvent(t.address))

	return true
}

func (t *itemTracker) handlePropertySignal(signal *dbus.Signal) {
	member := strings.TrimPrefix(signal.Name, StatusNotifierItemInterface+".")
	propertyName := itemProperty(member)

	obj := t.client.conn.Object(t.destination, dbus.ObjectPath(t.objectPath))

	var value dbus.Variant
	err := obj.Call("org.freedesktop.DBus.Properties.Get", 0, StatusNotifierItemInterface, propertyName).Store(&value)
	if err != nil {
		logErr("fetch updated property", "address", t.address, "property", propertyName, "err", err)
		return
	}

	update, ok := decodeItemUpdate(member, value.Value())
	if !ok {
		logErr("decode updated property", "address", t.address, "member", member)
		return
	}

	t.client.store.applyUpdateEvent(t.address, update)
	t.client.bus.publish(updateEvent(t.address, update))
}

// decodeItemUpdate turns a single re-fetched property into the UpdateEvent
// it corresponds to, reporting false if the signal member is unrecognized.
func decodeItemUpdate(member string, value any) (UpdateEvent, bool) {
	switch member {
	case "NewAttentionIcon":
		name, _ := value.(string)
		return UpdateEvent{Kind: UpdateAttentionIcon, IconName: name}, true
	case "NewIcon":
		name, _ := value.(string)
		return UpdateEvent{Kind: UpdateIcon, IconName: name}, true
	case "NewOverlayIcon":
		name, _ := value.(string)
		return UpdateEvent{Kind: UpdateOverlayIcon, IconName: name}, true
	case "NewStatus":
		s, _ := value.(string)
		return UpdateEvent{Kind: UpdateStatus, Status: statusFromString(s)}, true
	case "NewTitle":
		title, _ := value.(string)
		return UpdateEvent{Kind: UpdateTitle, Title: title}, true
	case "NewToolTip":
		tooltip, err := decodeTooltip(value)
		if err != nil {
			logErr("decode tooltip update", "err", err)
			return UpdateEvent{}, false
		}
		return UpdateEvent{Kind: UpdateTooltip, Tooltip: tooltip}, true
	default:
		return UpdateEvent{}, false
	}
}
