package snitray

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItemsPropertiesUpdatedSignal(t *testing.T) {
	body := []any{
		[]any{
			[]any{int32(7), map[string]dbus.Variant{"enabled": dbus.MakeVariant(false)}},
			[]any{int32(9), map[string]dbus.Variant{"label": dbus.MakeVariant("Quit")}},
		},
		[]any{
			[]any{int32(7), []string{"icon-name"}},
		},
	}

	diffs, ok := decodeItemsPropertiesUpdatedSignal(body)
	require.True(t, ok)
	require.Len(t, diffs, 2)
}

func TestDecodeItemsPropertiesUpdatedSignalWrongShape(t *testing.T) {
	_, ok := decodeItemsPropertiesUpdatedSignal([]any{"not", "right", "shape"})
	assert.False(t, ok)
}
