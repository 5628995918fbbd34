// Package bluez tracks the Bluetooth adapter and companion connection through
// the BlueZ D-Bus API, and registers the GATT application with the adapter.
package bluez

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// BlueZ DBus constants
const (
	BusName = "org.bluez"

	gattManagerIface   = "org.bluez.GattManager1"
	deviceIface        = "org.bluez.Device1"
	objectManagerIface = "org.freedesktop.DBus.ObjectManager"
	propertiesIface    = "org.freedesktop.DBus.Properties"
	dbusIface          = "org.freedesktop.DBus"
	dbusName           = "org.freedesktop.DBus"
)

// ManagedObjects is the reply of ObjectManager.GetManagedObjects: object
// path -> interface -> property -> value.
type ManagedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// ObjectManager is the part of BlueZ the Monitor reads.
type ObjectManager interface {
	// ServiceRunning reports whether org.bluez currently has an owner.
	ServiceRunning() (bool, error)
	// ManagedObjects enumerates every object BlueZ exposes.
	ManagedObjects(ctx context.Context) (ManagedObjects, error)
}

// Client talks to BlueZ over the system bus.
type Client struct {
	conn *dbus.Conn
	log  logging.Logger
}

// NewClient returns a Client on conn. conn is usually the shared
// dbus.SystemBus() connection and is not closed by the Client.
func NewClient(conn *dbus.Conn, log logging.Logger) *Client {
	return &Client{conn: conn, log: log}
}

// ServiceRunning asks the bus daemon whether org.bluez is owned.
func (c *Client) ServiceRunning() (bool, error) {
	var running bool
	err := c.conn.BusObject().Call(dbusIface+".NameHasOwner", 0, BusName).Store(&running)
	if err != nil {
		return false, fmt.Errorf("NameHasOwner failed: %w", err)
	}
	return running, nil
}

// ManagedObjects calls GetManagedObjects on the BlueZ root object.
func (c *Client) ManagedObjects(ctx context.Context) (ManagedObjects, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

	call := c.conn.Object(BusName, "/").CallWithContext(ctx, objectManagerIface+".GetManagedObjects", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetManagedObjects failed: %w", call.Err)
	}
	if err := call.Store(&objects); err != nil {
		return nil, fmt.Errorf("failed to parse managed objects: %w", err)
	}

	return ManagedObjects(objects), nil
}

func (c *Client) matchRules() [][]dbus.MatchOption {
	return [][]dbus.MatchOption{
		{
			dbus.WithMatchSender(dbusName),
			dbus.WithMatchInterface(dbusIface),
			dbus.WithMatchMember("NameOwnerChanged"),
			dbus.WithMatchArg(0, BusName),
		},
		{
			dbus.WithMatchSender(BusName),
			dbus.WithMatchInterface(objectManagerIface),
			dbus.WithMatchMember("InterfacesAdded"),
		},
		{
			dbus.WithMatchSender(BusName),
			dbus.WithMatchInterface(objectManagerIface),
			dbus.WithMatchMember("InterfacesRemoved"),
		},
		{
			dbus.WithMatchSender(BusName),
			dbus.WithMatchInterface(propertiesIface),
			dbus.WithMatchMember("PropertiesChanged"),
			dbus.WithMatchPathNamespace("/org/bluez"),
		},
	}
}

// Subscribe adds the match rules the Monitor needs and starts delivering
// signals to ch.
func (c *Client) Subscribe(ch chan<- *dbus.Signal) error {
	for _, rule := range c.matchRules() {
		if err := c.conn.AddMatchSignal(rule...); err != nil {
			return fmt.Errorf("failed to add signal match: %w", err)
		}
	}
	c.conn.Signal(ch)
	return nil
}

// Unsubscribe undoes Subscribe.
func (c *Client) Unsubscribe(ch chan<- *dbus.Signal) {
	c.conn.RemoveSignal(ch)
	for _, rule := range c.matchRules() {
		if err := c.conn.RemoveMatchSignal(rule...); err != nil {
			c.log.Debugf("failed to remove signal match: %v", err)
		}
	}
}

// RegisterApplication asks the adapter's GattManager1 to serve app. The call
// is not waited for; a failure is only logged.
func (c *Client) RegisterApplication(adapter, app dbus.ObjectPath) {
	obj := c.conn.Object(BusName, adapter)
	call := obj.Go(gattManagerIface+".RegisterApplication", 0, make(chan *dbus.Call, 1), app, map[string]dbus.Variant{})

	go func() {
		<-call.Done
		if call.Err != nil {
			c.log.Warnf("RegisterApplication %s on %s failed: %v", app, adapter, call.Err)
			return
		}
		c.log.Infof("Service %s registered", app)
	}()
}

// UnregisterApplication withdraws app from the adapter.
func (c *Client) UnregisterApplication(ctx context.Context, adapter, app dbus.ObjectPath) error {
	call := c.conn.Object(BusName, adapter).CallWithContext(ctx, gattManagerIface+".UnregisterApplication", 0, app)
	if call.Err != nil {
		return fmt.Errorf("UnregisterApplication failed: %w", call.Err)
	}
	return nil
}
