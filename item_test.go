package snitray

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStatusNotifierItemMinimal(t *testing.T) {
	// A mock peer registers with only Id set; every other property absent.
	props := map[string]dbus.Variant{
		"Id": dbus.MakeVariant("foo"),
	}

	item, err := decodeStatusNotifierItem(props)
	require.NoError(t, err)

	assert.Equal(t, "foo", item.ID)
	assert.Equal(t, ApplicationStatus, item.Category)
	assert.Equal(t, StatusUnknown, item.Status)
	assert.Equal(t, uint32(0), item.WindowID)
	assert.False(t, item.ItemIsMenu)
	assert.Nil(t, item.ToolTip)
	assert.Empty(t, item.IconPixmap)
	assert.Empty(t, item.Menu)
}

func TestDecodeStatusNotifierItemMissingID(t *testing.T) {
	_, err := decodeStatusNotifierItem(map[string]dbus.Variant{})
	assert.ErrorIs(t, err, ErrProtocolDecode)

	_, err = decodeStatusNotifierItem(map[string]dbus.Variant{"Id": dbus.MakeVariant("")})
	assert.ErrorIs(t, err, ErrProtocolDecode)
}

func TestDecodeStatusNotifierItemFull(t *testing.T) {
	props := map[string]dbus.Variant{
		"Id":                dbus.MakeVariant("bar"),
		"Category":          dbus.MakeVariant("Hardware"),
		"Title":             dbus.MakeVariant("Battery Monitor"),
		"Status":            dbus.MakeVariant("NeedsAttention"),
		"WindowId":          dbus.MakeVariant(uint32(42)),
		"IconThemePath":     dbus.MakeVariant("/usr/share/icons"),
		"IconName":          dbus.MakeVariant("battery-full"),
		"OverlayIconName":   dbus.MakeVariant("overlay"),
		"AttentionIconName": dbus.MakeVariant("battery-caution"),
		"ItemIsMenu":        dbus.MakeVariant(true),
		"Menu":              dbus.MakeVariant("/MenuBar"),
		"IconPixmap": dbus.MakeVariant([]any{
			[]any{int32(22), int32(22), []byte{1, 2, 3}},
		}),
		"ToolTip": dbus.MakeVariant([]any{
			"battery-full", []any{}, "Battery", "80% charged",
		}),
	}

	item, err := decodeStatusNotifierItem(props)
	require.NoError(t, err)

	assert.Equal(t, "bar", item.ID)
	assert.Equal(t, Hardware, item.Category)
	assert.Equal(t, "Battery Monitor", item.Title)
	assert.Equal(t, StatusNeedsAttention, item.Status)
	assert.Equal(t, uint32(42), item.WindowID)
	assert.True(t, item.ItemIsMenu)
	assert.Equal(t, "/MenuBar", item.Menu)
	require.Len(t, item.IconPixmap, 1)
	assert.Equal(t, int32(22), item.IconPixmap[0].Width)
	require.NotNil(t, item.ToolTip)
	assert.Equal(t, "Battery", item.ToolTip.Title)
	assert.Equal(t, "80% charged", item.ToolTip.Description)
}

func TestCategoryFromStringUnknownDefaultsApplicationStatus(t *testing.T) {
	assert.Equal(t, ApplicationStatus, categoryFromString("NotARealCategory"))
}

func TestStatusFromStringUnknownDefaultsUnknown(t *testing.T) {
	assert.Equal(t, StatusUnknown, statusFromString("NotARealStatus"))
}
