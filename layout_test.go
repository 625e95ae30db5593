package snitray

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutNode(id int32, props map[string]dbus.Variant, children []dbus.Variant) []any {
	return []any{id, props, children}
}

func TestDecodeMenuItemLeaf(t *testing.T) {
	node := layoutNode(1, map[string]dbus.Variant{
		"label":   dbus.MakeVariant("_Quit"),
		"enabled": dbus.MakeVariant(false),
		"type":    dbus.MakeVariant("separator"),
	}, nil)

	item, err := decodeMenuItem(node)
	require.NoError(t, err)

	assert.Equal(t, int32(1), item.ID)
	assert.Equal(t, "Quit", item.Label)
	assert.False(t, item.Enabled)
	assert.True(t, item.Visible, "visible defaults to true when absent")
	assert.Equal(t, MenuTypeSeparator, item.MenuType)
	assert.Empty(t, item.Submenu)
}

func TestDecodeMenuItemRecursesChildren(t *testing.T) {
	child := layoutNode(2, map[string]dbus.Variant{"label": dbus.MakeVariant("Child")}, nil)
	root := layoutNode(1, map[string]dbus.Variant{"label": dbus.MakeVariant("Root")}, []dbus.Variant{
		dbus.MakeVariant(child),
	})

	item, err := decodeMenuItem(root)
	require.NoError(t, err)

	require.Len(t, item.Submenu, 1)
	assert.Equal(t, int32(2), item.Submenu[0].ID)
	assert.Equal(t, "Child", item.Submenu[0].Label)
}

func TestDecodeMenuItemDefaults(t *testing.T) {
	node := layoutNode(7, map[string]dbus.Variant{}, nil)

	item, err := decodeMenuItem(node)
	require.NoError(t, err)

	assert.Equal(t, MenuTypeStandard, item.MenuType)
	assert.True(t, item.Enabled)
	assert.True(t, item.Visible)
	assert.Equal(t, ToggleTypeCannotBeToggled, item.ToggleType)
	assert.Equal(t, ToggleStateOn, item.ToggleState)
	assert.Equal(t, DispositionNormal, item.Disposition)
}

func TestDecodeMenuItemInvalidShape(t *testing.T) {
	_, err := decodeMenuItem([]any{1, 2})
	assert.ErrorIs(t, err, ErrProtocolDecode)
}

func TestDecodeMenuDiffsMergeByID(t *testing.T) {
	updated := []propertiesUpdatedEntry{
		{ID: 7, Properties: map[string]dbus.Variant{"enabled": dbus.MakeVariant(false)}},
		{ID: 9, Properties: map[string]dbus.Variant{"label": dbus.MakeVariant("Quit")}},
	}
	removed := []propertiesRemovedEntry{
		{ID: 7, Names: []string{"icon-name"}},
	}

	diffs := decodeMenuDiffs(updated, removed)
	require.Len(t, diffs, 2)

	byID := make(map[int32]MenuDiff, len(diffs))
	for _, d := range diffs {
		byID[d.ID] = d
	}

	diff7 := byID[7]
	require.NotNil(t, diff7.Update.Enabled)
	assert.False(t, *diff7.Update.Enabled)
	assert.Equal(t, []string{"icon-name"}, diff7.Remove)

	diff9 := byID[9]
	require.NotNil(t, diff9.Update.Label)
	assert.Equal(t, "Quit", **diff9.Update.Label)
	assert.Empty(t, diff9.Remove)
}

func TestDecodeMenuDiffsDuplicateIDNotDuplicated(t *testing.T) {
	// id X appears in both updated and removed: exactly one MenuDiff for X.
	updated := []propertiesUpdatedEntry{
		{ID: 5, Properties: map[string]dbus.Variant{"label": dbus.MakeVariant("A")}},
	}
	removed := []propertiesRemovedEntry{
		{ID: 5, Names: []string{"icon-name"}},
	}

	diffs := decodeMenuDiffs(updated, removed)
	require.Len(t, diffs, 1)
	assert.Equal(t, int32(5), diffs[0].ID)
}

func TestToggleStateFromInt(t *testing.T) {
	tests := []struct {
		n    int32
		want ToggleState
	}{
		{0, ToggleStateOff},
		{1, ToggleStateOn},
		{2, ToggleStateIndeterminate},
		{999, ToggleStateIndeterminate},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toggleStateFromInt(tt.n))
	}
}
