package snitray

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// StatusNotifierItemInterface is the D-Bus interface name implemented by
// every tray item.
const StatusNotifierItemInterface = "org.kde.StatusNotifierItem"

// Category is the general nature of a StatusNotifierItem.
type Category int

const (
	ApplicationStatus Category = iota // default
	Communications
	SystemServices
	Hardware
)

func categoryFromString(s string) Category {
	switch s {
	case "Communications":
		return Communications
	case "SystemServices":
		return SystemServices
	case "Hardware":
		return Hardware
	default:
		return ApplicationStatus
	}
}

func (c Category) String() string {
	switch c {
	case Communications:
		return "Communications"
	case SystemServices:
		return "SystemServices"
	case Hardware:
		return "Hardware"
	default:
		return "ApplicationStatus"
	}
}

// Status describes the current state of an item or its application.
type Status int

const (
	StatusUnknown Status = iota // default
	StatusPassive
	StatusActive
	StatusNeedsAttention
)

func statusFromString(s string) Status {
	switch s {
	case "Passive":
		return StatusPassive
	case "Active":
		return StatusActive
	case "NeedsAttention":
		return StatusNeedsAttention
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusPassive:
		return "Passive"
	case StatusActive:
		return "Active"
	case StatusNeedsAttention:
		return "NeedsAttention"
	default:
		return "Unknown"
	}
}

// Tooltip is the optional extra information an item carries for display in
// a tooltip.
type Tooltip struct {
	IconName    string
	IconData    []Icon
	Title       string
	Description string
}

// StatusNotifierItem is a snapshot of a tray item's properties, decoded from
// org.kde.StatusNotifierItem.
type StatusNotifierItem struct {
	ID       string
	Category Category
	Title    string
	Status   Status
	WindowID uint32

	IconThemePath string
	IconName      string
	IconPixmap    []Icon

	OverlayIconName   string
	OverlayIconPixmap []Icon

	AttentionIconName   string
	AttentionIconPixmap []Icon
	AttentionMovieName  string

	ToolTip *Tooltip

	ItemIsMenu bool
	Menu       string
}

// decodeStatusNotifierItem decodes the property map returned by
// org.freedesktop.DBus.Properties.GetAll for interface
// org.kde.StatusNotifierItem into a [StatusNotifierItem].
//
// Id is the only field whose absence fails the decode. Every other field
// falls back to its documented zero value
// when absent or of the wrong variant type, rather than failing the whole
// decode; unknown enum strings map to their documented default.
func decodeStatusNotifierItem(props map[string]dbus.Variant) (StatusNotifierItem, error) {
	id, ok := variantString(props, "Id")
	if !ok || id == "" {
		return StatusNotifierItem{}, fmt.Errorf("%w: StatusNotifierItem missing required property Id", ErrProtocolDecode)
	}

	item := StatusNotifierItem{
		ID:                 id,
		Category:           categoryFromString(variantStringOr(props, "Category", "")),
		Title:              variantStringOr(props, "Title", ""),
		Status:             statusFromString(variantStringOr(props, "Status", "")),
		WindowID:           variantUint32Or(props, "WindowId", 0),
		IconThemePath:      variantStringOr(props, "IconThemePath", ""),
		IconName:           variantStringOr(props, "IconName", ""),
		OverlayIconName:    variantStringOr(props, "OverlayIconName", ""),
		AttentionIconName:  variantStringOr(props, "AttentionIconName", ""),
		AttentionMovieName: variantStringOr(props, "AttentionMovieName", ""),
		ItemIsMenu:         variantBoolOr(props, "ItemIsMenu", false),
		Menu:               variantStringOr(props, "Menu", ""),
	}

	if v, ok := props["IconPixmap"]; ok {
		if icons, err := decodeIconPixmaps(v.Value()); err == nil {
			item.IconPixmap = icons
		} else {
			logErr("decode IconPixmap", "err", err)
		}
	}
	if v, ok := props["OverlayIconPixmap"]; ok {
		if icons, err := decodeIconPixmaps(v.Value()); err == nil {
			item.OverlayIconPixmap = icons
		} else {
			logErr("decode OverlayIconPixmap", "err", err)
		}
	}
	if v, ok := props["AttentionIconPixmap"]; ok {
		if icons, err := decodeIconPixmaps(v.Value()); err == nil {
			item.AttentionIconPixmap = icons
		} else {
			logErr("decode AttentionIconPixmap", "err", err)
		}
	}
	if v, ok := props["ToolTip"]; ok {
		if tt, err := decodeTooltip(v.Value()); err == nil {
			item.ToolTip = tt
		} else {
			logErr("decode ToolTip", "err", err)
		}
	}

	return item, nil
}

// decodeTooltip decodes the "(icon-name, icon-data, title, description)"
// tuple carried by the ToolTip property.
func decodeTooltip(v any) (*Tooltip, error) {
	fields, ok := v.([]any)
	if !ok || len(fields) != 4 {
		return nil, fmt.Errorf("%w: ToolTip: expected 4-tuple", ErrProtocolDecode)
	}

	iconName, _ := fields[0].(string)

	var iconData []Icon
	if arr, ok := fields[1].([]any); ok {
		icons, err := decodeIconPixmaps(arr)
		if err != nil {
			return nil, err
		}
		iconData = icons
	}

	title, _ := fields[2].(string)
	description, _ := fields[3].(string)

	return &Tooltip{
		IconName:    iconName,
		IconData:    iconData,
		Title:       title,
		Description: description,
	}, nil
}

func variantString(props map[string]dbus.Variant, key string) (string, bool) {
	v, ok := props[key]
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	return s, ok
}

func variantStringOr(props map[string]dbus.Variant, key, def string) string {
	if s, ok := variantString(props, key); ok {
		return s
	}
	return def
}

func variantBoolOr(props map[string]dbus.Variant, key string, def bool) bool {
	v, ok := props[key]
	if !ok {
		return def
	}
	b, ok := v.Value().(bool)
	if !ok {
		return def
	}
	return b
}

func variantUint32Or(props map[string]dbus.Variant, key string, def uint32) uint32 {
	v, ok := props[key]
	if !ok {
		return def
	}
	switch n := v.Value().(type) {
	case uint32:
		return n
	case int32:
		return uint32(n)
	default:
		return def
	}
}
