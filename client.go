package snitray

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
)

// activateTimeout bounds how long an activation call may block before it is
// considered fire-and-forget.
const activateTimeout = time.Second

// Client orchestrates the watcher, item and menu trackers, and the shared
// store; it is the single object consumers interact with.
type Client struct {
	conn    *dbus.Conn
	watcher *Watcher
	store   *Store
	bus     *eventBus

	hostName string
}

// New opens a session bus connection, attaches a [Watcher] to it, registers
// as a host, and starts watching for tray items. It fails only on a session
// bus connection error or a watcher attachment error other than the name
// already being taken.
func New() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: connect session bus: %w", ErrTransport, err)
	}

	watcher := NewWatcher(conn)
	if err := watcher.Listen(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("attach watcher: %w", err)
	}

	client := &Client{
		conn:    conn,
		watcher: watcher,
		store:   newStore(),
		bus:     newEventBus(),
	}

	hostName, err := client.registerHost()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("register host: %w", err)
	}
	client.hostName = hostName

	go client.watchNewItems()
	go client.fetchInitialItems()
	go client.watchWatcherReplacement()

	logDebug("client initialized", "host", hostName)

	return client, nil
}

// registerHost requests a host well-known name of the form
// org.freedesktop.StatusNotifierHost-<pid>-<n>, incrementing n until one is
// acquired, then registers it with the watcher.
func (c *Client) registerHost() (string, error) {
	pid := os.Getpid()

	var name string
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("org.freedesktop.StatusNotifierHost-%d-%d", pid, n)
		reply, err := c.conn.RequestName(candidate, dbus.NameFlagDoNotQueue)
		if err != nil {
			return "", fmt.Errorf("%w: request name %s: %w", ErrTransport, candidate, err)
		}
		if reply == dbus.RequestNameReplyPrimaryOwner {
			name = candidate
			break
		}
	}

	watcherObj := c.conn.Object(StatusNotifierWatcherInterface, StatusNotifierWatcherPath)
	call := watcherObj.Call(StatusNotifierWatcherInterface+".RegisterStatusNotifierHost", 0, name)
	if call.Err != nil {
		return "", fmt.Errorf("%w: register host: %w", ErrTransport, call.Err)
	}

	return name, nil
}

// watchNewItems consumes StatusNotifierItemRegistered signals from the
// watcher and spawns a tracker for each newly announced item.
func (c *Client) watchNewItems() {
	signals := make(chan *dbus.Signal, 32)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	matchOpts := []dbus.MatchOption{
		dbus.WithMatchInterface(StatusNotifierWatcherInterface),
		dbus.WithMatchMember("StatusNotifierItemRegistered"),
	}
	if err := c.conn.AddMatchSignal(matchOpts...); err != nil {
		logErr("subscribe item registration", "err", err)
		return
	}
	defer c.conn.RemoveMatchSignal(matchOpts...)

	for signal := range signals {
		if signal.Name != StatusNotifierWatcherInterface+".StatusNotifierItemRegistered" || len(signal.Body) == 0 {
			continue
		}
		address, ok := signal.Body[0].(string)
		if !ok {
			continue
		}
		logDebug("received new item", "address", address)
		go trackItem(c, address)
	}
}

// fetchInitialItems retrieves the items already registered with the watcher
// at startup. This runs concurrently with [Client.watchNewItems] so that an
// item registering in the race window is still only tracked once, since
// trackItem's store insert is idempotent per address.
func (c *Client) fetchInitialItems() {
	watcherObj := c.conn.Object(StatusNotifierWatcherInterface, StatusNotifierWatcherPath)

	property, err := watcherObj.GetProperty(StatusNotifierWatcherInterface + ".RegisteredStatusNotifierItems")
	if err != nil {
		logErr("fetch initial items", "err", err)
		return
	}

	items, ok := property.Value().([]string)
	if !ok {
		return
	}

	logDebug("initial items", "count", len(items))
	for _, address := range items {
		go trackItem(c, address)
	}
}

// watchWatcherReplacement detects our own connection becoming the primary
// StatusNotifierWatcher after a previous one vanished, and clears all
// tracked items so that the new watcher's rebroadcast of registrations
// repopulates the store from scratch.
func (c *Client) watchWatcherReplacement() {
	signals := make(chan *dbus.Signal, 8)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	matchOpts := []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameAcquired"),
	}
	if err := c.conn.AddMatchSignal(matchOpts...); err != nil {
		logErr("subscribe name acquired", "err", err)
		return
	}
	defer c.conn.RemoveMatchSignal(matchOpts...)

	for signal := range signals {
		if len(signal.Body) == 0 {
			continue
		}
		name, ok := signal.Body[0].(string)
		if !ok || name != StatusNotifierWatcherInterface {
			continue
		}

		logDebug("became primary watcher, clearing stale items")
		for _, address := range c.store.clearItems() {
			c.bus.publish(removeEvent(address))
		}
	}
}

// Subscribe returns a new channel of [Event] values, a lag function, and a
// cancel function that unsubscribes the channel. The channel has bounded
// capacity; a slow consumer misses events rather than blocking trackers,
// with the oldest undelivered event dropped to make room for the newest.
// lag reports how many events have been dropped for this subscriber so
// far, so a consumer can detect that it has fallen behind.
func (c *Client) Subscribe() (events <-chan Event, lag func() uint64, cancel func()) {
	return c.bus.subscribe()
}

// Items returns the shared store. Its shape depends on the build
// configuration: the default build exposes a Snapshot method returning the
// full mapping, while a build tagged snitray_addronly exposes Addresses
// returning only the known keys.
func (c *Client) Items() *Store {
	return c.store
}

// Activate sends an activation request to a tray item or its menu. Each
// request has a 1-second timeout; on expiry it is logged and treated as
// success, since SNI peers frequently neglect to reply.
func (c *Client) Activate(req ActivateRequest) error {
	switch req.Kind {
	case ActivateMenuItem:
		destination, _ := parseAddress(req.Address)
		obj := c.conn.Object(destination, dbus.ObjectPath(req.MenuPath))
		c.callWithTimeout(obj, MenuInterface+".Event", req.SubmenuID, "clicked", dbus.MakeVariant(int32(0)), uint32(time.Now().Unix()))
	case ActivateDefault:
		destination, objectPath := parseAddress(req.Address)
		obj := c.conn.Object(destination, dbus.ObjectPath(objectPath))
		c.callWithTimeout(obj, StatusNotifierItemInterface+".Activate", req.X, req.Y)
	case ActivateSecondary:
		destination, objectPath := parseAddress(req.Address)
		obj := c.conn.Object(destination, dbus.ObjectPath(objectPath))
		c.callWithTimeout(obj, StatusNotifierItemInterface+".SecondaryActivate", req.X, req.Y)
	}
	return nil
}

func (c *Client) callWithTimeout(obj dbus.BusObject, method string, args ...any) {
	done := make(chan *dbus.Error, 1)
	go func() {
		done <- obj.Call(method, 0, args...).Err
	}()

	select {
	case err := <-done:
		if err != nil {
			logErr("activation call", "method", method, "err", err)
		}
	case <-time.After(activateTimeout):
		logDebug("activation call timed out, treating as fire-and-forget", "method", method)
	}
}

// AboutToShowMenuItem forwards to DBusMenu's AboutToShow(id), reporting
// whether the menu needs to be refreshed before display.
func (c *Client) AboutToShowMenuItem(address, menuPath string, id int32) (bool, error) {
	destination, _ := parseAddress(address)
	obj := c.conn.Object(destination, dbus.ObjectPath(menuPath))

	var needsUpdate bool
	err := obj.Call(MenuInterface+".AboutToShow", 0, id).Store(&needsUpdate)
	if err != nil {
		return false, fmt.Errorf("%w: about to show: %w", ErrTransport, err)
	}
	return needsUpdate, nil
}

// Close releases the client's host name and watcher, closes the broadcast
// channel, and disconnects from the session bus.
func (c *Client) Close() error {
	c.bus.closeAll()

	errHost := func() error {
		_, err := c.conn.ReleaseName(c.hostName)
		return err
	}()
	errWatcher := c.watcher.Close()

	return errors.Join(errHost, errWatcher, c.conn.Close())
}
