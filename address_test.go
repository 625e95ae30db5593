package snitray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name            string
		address         string
		wantDestination string
		wantObjectPath  string
	}{
		{"unique name with default path", ":1.58/StatusNotifierItem", ":1.58", "/StatusNotifierItem"},
		{"unique name with custom path", ":1.72/org/ayatana/NotificationItem/dropbox_client_1398", ":1.72", "/org/ayatana/NotificationItem/dropbox_client_1398"},
		{"bare unique name", ":1.9", ":1.9", DefaultItemPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			destination, objectPath := parseAddress(tt.address)
			assert.Equal(t, tt.wantDestination, destination)
			assert.Equal(t, tt.wantObjectPath, objectPath)
		})
	}
}

func TestParseAddressJoinIdentity(t *testing.T) {
	// Canonical addresses round-trip through parse/join unchanged.
	inputs := []string{
		":1.58/StatusNotifierItem",
		":1.72/org/ayatana/NotificationItem/dropbox_client_1398",
	}

	for _, address := range inputs {
		destination, objectPath := parseAddress(address)
		assert.Equal(t, address, joinAddress(destination, objectPath))
	}
}
