// Package config holds the daemon settings. Values come from command-line
// flags, each of which falls back to a TAP2BLE_* environment variable.
package config

import (
	"fmt"
	"net"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

// ATT MTU bounds a central may negotiate.
const (
	MinATTMTU = 23
	MaxATTMTU = 517
)

// DefaultBLEMTU is the BLE MTU assumed until the central reports one.
const DefaultBLEMTU = 244

// EthernetHeaderLen is subtracted from the BLE MTU to get the interface MTU.
const EthernetHeaderLen = 14

// Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

// Config holds all daemon settings.
type Config struct {
	TunDevice     string // clone device, normally /dev/net/tun
	InterfaceName string // requested TAP name; empty lets the kernel pick tapN

	DefaultMTU int    // BLE MTU assumed until the central reports one
	AppPath    string // root object path of the exported GATT application

	Address     string // IPv4 address pushed to connman on connect
	Netmask     string
	Gateway     string
	Nameservers []string

	StatusAddr string // listen address for /health and /status, empty disables
	LogLevel   string
}

// Default returns the settings used by the watch image.
func Default() *Config {
	return &Config{
		TunDevice:   "/dev/net/tun",
		DefaultMTU:  DefaultBLEMTU,
		AppPath:     "/org/asteroidos/tap2ble",
		Address:     "10.0.2.3",
		Netmask:     "255.255.255.0",
		Gateway:     "10.0.2.2",
		Nameservers: []string{"10.0.2.2", "8.8.4.4", "8.8.8.8"},
		StatusAddr:  "127.0.0.1:6071",
		LogLevel:    "info",
	}
}

// Validate checks the settings before anything touches the system.
func (c *Config) Validate() error {
	if c.TunDevice == "" {
		return fmt.Errorf("tun device path is required")
	}

	if len(c.InterfaceName) >= 16 {
		return fmt.Errorf("interface name %q is too long", c.InterfaceName)
	}

	if c.DefaultMTU < MinATTMTU || c.DefaultMTU > MaxATTMTU {
		return fmt.Errorf("default MTU %d outside %d..%d", c.DefaultMTU, MinATTMTU, MaxATTMTU)
	}

	if !dbus.ObjectPath(c.AppPath).IsValid() || c.AppPath == "/" {
		return fmt.Errorf("invalid application path %q", c.AppPath)
	}

	for name, v := range map[string]string{"address": c.Address, "netmask": c.Netmask, "gateway": c.Gateway} {
		if err := validateIPv4(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	for _, ns := range c.Nameservers {
		if net.ParseIP(ns) == nil {
			return fmt.Errorf("invalid nameserver %q", ns)
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// InterfaceMTU converts a BLE ATT MTU to the MTU of the TAP interface.
func InterfaceMTU(bleMTU int) int {
	return bleMTU - EthernetHeaderLen
}

func validateIPv4(s string) error {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid IPv4 address %q", s)
	}
	return nil
}
