package snitray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIconPixmap(t *testing.T) {
	pixmap, err := decodeIconPixmap([]any{int32(16), int32(16), []byte{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, Icon{Width: 16, Height: 16, Bytes: []byte{1, 2, 3, 4}}, pixmap)
}

func TestDecodeIconPixmapInvalid(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"wrong length", []any{int32(16), int32(16)}},
		{"wrong width type", []any{"16", int32(16), []byte{}}},
		{"wrong height type", []any{int32(16), "16", []byte{}}},
		{"wrong bytes type", []any{int32(16), int32(16), "not bytes"}},
		{"not a slice", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeIconPixmap(tt.data)
			assert.ErrorIs(t, err, ErrProtocolDecode)
		})
	}
}

func TestDecodeIconPixmaps(t *testing.T) {
	icons, err := decodeIconPixmaps([]any{
		[]any{int32(16), int32(16), []byte{1}},
		[]any{int32(32), int32(32), []byte{2}},
	})
	require.NoError(t, err)
	require.Len(t, icons, 2)
	assert.Equal(t, int32(16), icons[0].Width)
	assert.Equal(t, int32(32), icons[1].Width)
}

func TestDecodeIconPixmapsEmpty(t *testing.T) {
	icons, err := decodeIconPixmaps([]any{})
	require.NoError(t, err)
	assert.Empty(t, icons)
}
