package snitray

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// decodeMenuItem decodes one DBusMenu layout node: a recursive
// "(i, a{sv}, av)" structure of (id, properties, children).
func decodeMenuItem(data any) (MenuItem, error) {
	fields, ok := data.([]any)
	if !ok || len(fields) != 3 {
		return MenuItem{}, fmt.Errorf("%w: menu layout node: expected a 3-tuple", ErrProtocolDecode)
	}

	id, ok := fields[0].(int32)
	if !ok {
		return MenuItem{}, fmt.Errorf("%w: menu layout node: invalid id", ErrProtocolDecode)
	}

	props, ok := fields[1].(map[string]dbus.Variant)
	if !ok {
		return MenuItem{}, fmt.Errorf("%w: menu layout node: invalid properties", ErrProtocolDecode)
	}

	item := MenuItem{
		ID:              id,
		Enabled:         true,
		Visible:         true,
		MenuType:        menuTypeFromString(menuPropString(props, "type")),
		Label:           stripMnemonic(menuPropString(props, "label")),
		IconName:        menuPropString(props, "icon-name"),
		ChildrenDisplay: menuPropString(props, "children-display"),
		Disposition:     dispositionFromString(menuPropString(props, "disposition")),
		ToggleType:      toggleTypeFromString(menuPropString(props, "toggle-type")),
	}

	if v, ok := props["toggle-state"]; ok {
		if n, ok := v.Value().(int32); ok {
			item.ToggleState = toggleStateFromInt(n)
		}
	}

	if v, ok := props["enabled"]; ok {
		if b, ok := v.Value().(bool); ok {
			item.Enabled = b
		}
	}
	if v, ok := props["visible"]; ok {
		if b, ok := v.Value().(bool); ok {
			item.Visible = b
		}
	}
	if v, ok := props["icon-data"]; ok {
		if b, ok := v.Value().([]byte); ok {
			item.IconData = b
		}
	}
	if v, ok := props["shortcut"]; ok {
		item.Shortcut = decodeShortcut(v.Value())
	}

	children, ok := fields[2].([]dbus.Variant)
	if !ok {
		return item, nil
	}

	item.Submenu = make([]MenuItem, 0, len(children))
	for _, child := range children {
		childItem, err := decodeMenuItem(child.Value())
		if err != nil {
			logErr("decode submenu item", "err", err)
			continue
		}
		item.Submenu = append(item.Submenu, childItem)
	}

	return item, nil
}

// decodeTrayMenu converts a GetLayout reply's root node into a [TrayMenu].
func decodeTrayMenu(root any) (TrayMenu, error) {
	item, err := decodeMenuItem(root)
	if err != nil {
		return TrayMenu{}, err
	}
	return TrayMenu{ID: uint32(item.ID), Submenus: item.Submenu}, nil
}

func decodeShortcut(v any) [][]string {
	chords, ok := v.([][]string)
	if ok {
		return chords
	}

	// godbus may deliver "aas" as []any of []any of string depending on
	// how the variant was constructed by the peer; handle that shape too.
	outer, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([][]string, 0, len(outer))
	for _, chord := range outer {
		inner, ok := chord.([]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(inner))
		for _, key := range inner {
			if s, ok := key.(string); ok {
				keys = append(keys, s)
			}
		}
		result = append(result, keys)
	}
	return result
}

func menuPropString(props map[string]dbus.Variant, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

// propertiesUpdatedEntry mirrors one element of the "updated" array in an
// ItemsPropertiesUpdated signal: (i32 id, dict<string,variant>).
type propertiesUpdatedEntry struct {
	ID         int32
	Properties map[string]dbus.Variant
}

// propertiesRemovedEntry mirrors one element of the "removed" array:
// (i32 id, array<string>).
type propertiesRemovedEntry struct {
	ID    int32
	Names []string
}

// decodeMenuDiffs merges the updated and removed payloads of an
// ItemsPropertiesUpdated signal into one [MenuDiff] per distinct id.
func decodeMenuDiffs(updated []propertiesUpdatedEntry, removed []propertiesRemovedEntry) []MenuDiff {
	byID := make(map[int32]*MenuDiff)

	get := func(id int32) *MenuDiff {
		d, ok := byID[id]
		if !ok {
			d = &MenuDiff{ID: id}
			byID[id] = d
		}
		return d
	}

	for _, entry := range updated {
		get(entry.ID).Update = decodeMenuItemUpdate(entry.Properties)
	}
	for _, entry := range removed {
		get(entry.ID).Remove = entry.Names
	}

	diffs := make([]MenuDiff, 0, len(byID))
	for _, d := range byID {
		diffs = append(diffs, *d)
	}
	return diffs
}

func decodeMenuItemUpdate(props map[string]dbus.Variant) MenuItemUpdate {
	var update MenuItemUpdate

	if v, ok := props["label"]; ok {
		s, _ := v.Value().(string)
		s = stripMnemonic(s)
		update.Label = ptr(&s)
	}
	if v, ok := props["enabled"]; ok {
		if b, ok := v.Value().(bool); ok {
			update.Enabled = &b
		}
	}
	if v, ok := props["visible"]; ok {
		if b, ok := v.Value().(bool); ok {
			update.Visible = &b
		}
	}
	if v, ok := props["icon-name"]; ok {
		s, _ := v.Value().(string)
		update.IconName = ptr(&s)
	}
	if v, ok := props["icon-data"]; ok {
		b, _ := v.Value().([]byte)
		update.IconData = ptr(&b)
	}
	if v, ok := props["toggle-state"]; ok {
		if n, ok := v.Value().(int32); ok {
			s := toggleStateFromInt(n)
			update.ToggleState = &s
		}
	}
	if v, ok := props["disposition"]; ok {
		if s, ok := v.Value().(string); ok {
			d := dispositionFromString(s)
			update.Disposition = &d
		}
	}

	return update
}

func ptr[T any](v *T) **T { return &v }
