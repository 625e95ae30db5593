package snitray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMnemonic(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"no underscore", "Quit", "Quit"},
		{"single mnemonic", "_Quit", "Quit"},
		{"mnemonic mid-label", "E_xit", "Exit"},
		{"escaped underscore", "Snake__Case", "Snake" + escapedUnderscore + "Case"},
		{"escaped then mnemonic", "__File and _Edit", escapedUnderscore + "File and Edit"},
		{"pair then marker", "A___B", "A" + escapedUnderscore + "B"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMnemonic(tt.label))
		})
	}
}

func TestStripMnemonicIdempotent(t *testing.T) {
	// Invariant: stripping an already-stripped label is a no-op, including
	// labels whose escaped pairs produced a literal underscore rune that a
	// naive second pass could mistake for a fresh mnemonic marker.
	labels := []string{
		"Quit",
		"Exit",
		"Snake_Case",
		"File and Edit",
		"A___B",
		"__File and _Edit",
		"____",
	}

	for _, label := range labels {
		once := stripMnemonic(label)
		twice := stripMnemonic(once)
		assert.Equal(t, once, twice)
	}
}
