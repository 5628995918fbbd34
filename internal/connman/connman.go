// Package connman points the connman service that manages the TAP interface
// at the static IPv4 settings the companion expects.
package connman

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

const (
	BusName = "net.connman"

	managerIface = "net.connman.Manager"
	serviceIface = "net.connman.Service"

	ipv4Config       = "IPv4.Configuration"
	nameserverConfig = "Nameservers.Configuration"
)

// Settings is the static configuration written on connect.
type Settings struct {
	Address     string
	Netmask     string
	Gateway     string
	Nameservers []string
}

// Service is one entry of Manager.GetServices.
type Service struct {
	Path       dbus.ObjectPath
	Properties map[string]dbus.Variant
}

// Client configures connman services over the system bus.
type Client struct {
	conn     *dbus.Conn
	settings Settings
	log      logging.Logger
}

// NewClient returns a Client writing settings on Reset.
func NewClient(conn *dbus.Conn, settings Settings, log logging.Logger) *Client {
	return &Client{conn: conn, settings: settings, log: log}
}

// Reset writes the static IPv4 configuration and nameservers to the
// service bound to ifname. A missing service is not an error.
func (c *Client) Reset(ctx context.Context, ifname string) error {
	svc, ok, err := c.lookup(ctx, ifname)
	if err != nil || !ok {
		return err
	}

	current, _ := svc.Properties[ipv4Config].Value().(map[string]dbus.Variant)
	obj := c.conn.Object(BusName, svc.Path)
	c.setProperty(obj, ipv4Config, IPv4Settings(current, c.settings))
	c.setProperty(obj, nameserverConfig, c.settings.Nameservers)

	c.log.Infof("connman service %s set to %s/%s via %s", svc.Path, c.settings.Address, c.settings.Netmask, c.settings.Gateway)
	return nil
}

// Clear turns IPv4 off on the service bound to ifname. A missing service is
// not an error.
func (c *Client) Clear(ctx context.Context, ifname string) error {
	svc, ok, err := c.lookup(ctx, ifname)
	if err != nil || !ok {
		return err
	}

	c.setProperty(c.conn.Object(BusName, svc.Path), ipv4Config, ClearedIPv4())
	c.log.Debugf("connman service %s cleared", svc.Path)
	return nil
}

func (c *Client) lookup(ctx context.Context, ifname string) (Service, bool, error) {
	services, err := c.services(ctx)
	if err != nil {
		return Service{}, false, err
	}

	svc, ok := FindService(services, ifname)
	if !ok {
		c.log.Debugf("no connman service for %s", ifname)
	}
	return svc, ok, nil
}

func (c *Client) services(ctx context.Context) ([]Service, error) {
	var services []Service

	call := c.conn.Object(BusName, "/").CallWithContext(ctx, managerIface+".GetServices", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetServices failed: %w", call.Err)
	}
	if err := call.Store(&services); err != nil {
		return nil, fmt.Errorf("failed to parse connman services: %w", err)
	}
	return services, nil
}

// setProperty sends Service.SetProperty without waiting for the reply.
func (c *Client) setProperty(obj dbus.BusObject, name string, value interface{}) {
	call := obj.Go(serviceIface+".SetProperty", 0, make(chan *dbus.Call, 1), name, dbus.MakeVariant(value))

	go func() {
		<-call.Done
		if call.Err != nil {
			c.log.Warnf("SetProperty %s on %s failed: %v", name, obj.Path(), call.Err)
		}
	}()
}

// FindService returns the service whose Ethernet.Interface is ifname.
func FindService(services []Service, ifname string) (Service, bool) {
	for _, svc := range services {
		eth, ok := svc.Properties["Ethernet"].Value().(map[string]dbus.Variant)
		if !ok {
			continue
		}
		if name, _ := eth["Interface"].Value().(string); name == ifname {
			return svc, true
		}
	}
	return Service{}, false
}

// IPv4Settings merges s into the current IPv4.Configuration of a service.
// Keys other than Method, Address, Netmask and Gateway are kept.
func IPv4Settings(current map[string]dbus.Variant, s Settings) map[string]dbus.Variant {
	merged := make(map[string]dbus.Variant, len(current)+4)
	for k, v := range current {
		merged[k] = v
	}

	merged["Method"] = dbus.MakeVariant("manual")
	merged["Address"] = dbus.MakeVariant(s.Address)
	merged["Netmask"] = dbus.MakeVariant(s.Netmask)
	merged["Gateway"] = dbus.MakeVariant(s.Gateway)
	return merged
}

// ClearedIPv4 is the IPv4.Configuration written when the link goes down.
func ClearedIPv4() map[string]dbus.Variant {
	return map[string]dbus.Variant{"Method": dbus.MakeVariant("off")}
}
