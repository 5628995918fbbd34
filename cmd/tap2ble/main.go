// tap2ble bridges a TAP network interface to a companion phone over a pair
// of BLE GATT characteristics.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/config"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "tap2ble"
	app.Usage = "carry Ethernet frames between a TAP interface and a BLE companion"
	app.Version = version
	app.Flags = flags(config.Default())
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func flags(def *config.Config) []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "tun-device",
			Value:  def.TunDevice,
			Usage:  "TUN/TAP clone device",
			EnvVar: "TAP2BLE_TUN_DEVICE",
		},
		cli.StringFlag{
			Name:   "interface",
			Value:  def.InterfaceName,
			Usage:  "name of the TAP interface, empty lets the kernel choose",
			EnvVar: "TAP2BLE_INTERFACE",
		},
		cli.IntFlag{
			Name:   "default-mtu",
			Value:  def.DefaultMTU,
			Usage:  "BLE MTU assumed until the companion reports one",
			EnvVar: "TAP2BLE_DEFAULT_MTU",
		},
		cli.StringFlag{
			Name:   "app-path",
			Value:  def.AppPath,
			Usage:  "D-Bus object path of the GATT application",
			EnvVar: "TAP2BLE_APP_PATH",
		},
		cli.StringFlag{
			Name:   "address",
			Value:  def.Address,
			Usage:  "IPv4 address of the interface",
			EnvVar: "TAP2BLE_ADDRESS",
		},
		cli.StringFlag{
			Name:   "netmask",
			Value:  def.Netmask,
			EnvVar: "TAP2BLE_NETMASK",
		},
		cli.StringFlag{
			Name:   "gateway",
			Value:  def.Gateway,
			Usage:  "IPv4 gateway, normally the companion",
			EnvVar: "TAP2BLE_GATEWAY",
		},
		cli.StringFlag{
			Name:   "nameservers",
			Value:  strings.Join(def.Nameservers, ","),
			Usage:  "comma separated DNS servers",
			EnvVar: "TAP2BLE_NAMESERVERS",
		},
		cli.StringFlag{
			Name:   "status-addr",
			Value:  def.StatusAddr,
			Usage:  "listen address of the status endpoint, empty disables it",
			EnvVar: "TAP2BLE_STATUS_ADDR",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  def.LogLevel,
			EnvVar: "TAP2BLE_LOG_LEVEL",
		},
	}
}

func configFromContext(c *cli.Context) *config.Config {
	cfg := &config.Config{
		TunDevice:     c.String("tun-device"),
		InterfaceName: c.String("interface"),
		DefaultMTU:    c.Int("default-mtu"),
		AppPath:       c.String("app-path"),
		Address:       c.String("address"),
		Netmask:       c.String("netmask"),
		Gateway:       c.String("gateway"),
		StatusAddr:    c.String("status-addr"),
		LogLevel:      c.String("log-level"),
	}

	for _, ns := range strings.Split(c.String("nameservers"), ",") {
		if ns = strings.TrimSpace(ns); ns != "" {
			cfg.Nameservers = append(cfg.Nameservers, ns)
		}
	}
	return cfg
}
