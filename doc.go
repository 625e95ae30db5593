// Package snitray is a client-side implementation of the desktop system
// tray protocols: org.kde.StatusNotifierItem / org.kde.StatusNotifierWatcher
// (SNI) and com.canonical.dbusmenu (DBusMenu). It watches the session bus
// for tray items and their menus and presents them as a single asynchronous
// stream of events.
//
// # Usage
//
// A [Client] owns a watcher service, a shared item store, and the goroutines
// that track each item and menu:
//   - [New] opens the session bus, attaches the watcher, registers as a
//     host, and starts watching.
//   - [Client.Subscribe] returns a channel of [Event] values (additions,
//     per-property updates and removals) plus a lag function reporting how
//     many events have been dropped for that subscriber.
//   - [Client.Items] returns a snapshot-capable handle to the shared store.
//   - [Client.Activate] and [Client.AboutToShowMenuItem] send input back to
//     the tray item or its menu.
//
// [Watcher] is exported for embedders that want to host the watcher service
// without the rest of the client, but [New] wires one up automatically.
package snitray
