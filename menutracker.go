package snitray

import (
	"time"

	"github.com/godbus/dbus/v5"
)

// menuRefreshTimeout bounds how long a LayoutUpdated-triggered GetLayout may
// take before the menu tracker gives up and exits.
const menuRefreshTimeout = time.Second

// trackMenu fetches an item's menu layout, emits Update::Menu, and keeps it
// current until a layout refresh fails or times out. The owning item
// tracker is unaffected by a menu tracker's exit.
func trackMenu(client *Client, address, destination, menuPath string) {
	obj := client.conn.Object(destination, dbus.ObjectPath(menuPath))

	menu, err := getLayout(obj)
	if err != nil {
		logErr("fetch initial menu layout", "address", address, "err", err)
		return
	}

	client.store.updateMenu(address, menu)
	client.bus.publish(updateEvent(address, UpdateEvent{Kind: UpdateMenu, Menu: menu}))

	signals := make(chan *dbus.Signal, 32)
	client.conn.Signal(signals)
	defer client.conn.RemoveSignal(signals)

	matchOpts := []dbus.MatchOption{
		dbus.WithMatchInterface(MenuInterface),
		dbus.WithMatchSender(destination),
	}
	if err := client.conn.AddMatchSignal(matchOpts...); err != nil {
		logErr("subscribe menu signals", "address", address, "err", err)
	}
	defer client.conn.RemoveMatchSignal(matchOpts...)

	for signal := range signals {
		switch signal.Name {
		case MenuInterface + ".LayoutUpdated":
			menu, err := getLayoutWithTimeout(obj)
			if err != nil {
				logErr("refresh menu layout", "address", address, "err", err)
				return
			}
			client.store.updateMenu(address, menu)
			client.bus.publish(updateEvent(address, UpdateEvent{Kind: UpdateMenu, Menu: menu}))

		case MenuInterface + ".ItemsPropertiesUpdated":
			diffs, ok := decodeItemsPropertiesUpdatedSignal(signal.Body)
			if !ok {
				logErr("decode menu property diff", "address", address)
				continue
			}
			client.store.applyUpdateEvent(address, UpdateEvent{Kind: UpdateMenuDiff, MenuDiff: diffs})
			client.bus.publish(updateEvent(address, UpdateEvent{Kind: UpdateMenuDiff, MenuDiff: diffs}))
		}
	}
}

// getLayout calls GetLayout(0, 10, nil) and decodes the reply into a
// [TrayMenu].
func getLayout(obj dbus.BusObject) (TrayMenu, error) {
	var revision uint32
	var root any
	err := obj.Call(MenuInterface+".GetLayout", 0, int32(0), int32(10), []string{}).Store(&revision, &root)
	if err != nil {
		return TrayMenu{}, err
	}
	return decodeTrayMenu(root)
}

// getLayoutWithTimeout re-issues GetLayout with a bound on how long the
// call may take.
func getLayoutWithTimeout(obj dbus.BusObject) (TrayMenu, error) {
	type result struct {
		menu TrayMenu
		err  error
	}

	done := make(chan result, 1)
	go func() {
		menu, err := getLayout(obj)
		done <- result{menu, err}
	}()

	select {
	case r := <-done:
		return r.menu, r.err
	case <-time.After(menuRefreshTimeout):
		return TrayMenu{}, ErrPeerTimeout
	}
}

// decodeItemsPropertiesUpdatedSignal decodes the (updated, removed) body of
// an ItemsPropertiesUpdated signal into merged [MenuDiff] values.
func decodeItemsPropertiesUpdatedSignal(body []any) ([]MenuDiff, bool) {
	if len(body) != 2 {
		return nil, false
	}

	updatedRaw, ok := body[0].([]any)
	if !ok {
		return nil, false
	}
	removedRaw, ok := body[1].([]any)
	if !ok {
		return nil, false
	}

	updated := make([]propertiesUpdatedEntry, 0, len(updatedRaw))
	for _, raw := range updatedRaw {
		fields, ok := raw.([]any)
		if !ok || len(fields) != 2 {
			continue
		}
		id, ok := fields[0].(int32)
		if !ok {
			continue
		}
		props, ok := fields[1].(map[string]dbus.Variant)
		if !ok {
			continue
		}
		updated = append(updated, propertiesUpdatedEntry{ID: id, Properties: props})
	}

	removed := make([]propertiesRemovedEntry, 0, len(removedRaw))
	for _, raw := range removedRaw {
		fields, ok := raw.([]any)
		if !ok || len(fields) != 2 {
			continue
		}
		id, ok := fields[0].(int32)
		if !ok {
			continue
		}
		names, ok := fields[1].([]string)
		if !ok {
			continue
		}
		removed = append(removed, propertiesRemovedEntry{ID: id, Names: names})
	}

	return decodeMenuDiffs(updated, removed), true
}
