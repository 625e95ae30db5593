package snitray

import "errors"

// Sentinel error kinds. Use errors.Is to test for a kind; errors returned
// by this package wrap one of these with fmt.Errorf("%w").
var (
	// ErrTransport indicates a D-Bus connection or call failure.
	ErrTransport = errors.New("snitray: transport error")

	// ErrProtocolDecode indicates a required field was missing or a value
	// had the wrong D-Bus variant type.
	ErrProtocolDecode = errors.New("snitray: protocol decode error")

	// ErrPeerTimeout indicates a peer did not reply within the menu layout
	// refresh timeout. An activation call that times out is logged and
	// reported as success, not as this error.
	ErrPeerTimeout = errors.New("snitray: peer timeout")

	// ErrInternal indicates an internal invariant was violated, such as
	// Listen being called on a watcher that has been closed.
	ErrInternal = errors.New("snitray: internal error")
)
