package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/godbus/dbus/v5"
	"github.com/urfave/cli"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/bluez"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/bridge"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/connman"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/gatt"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/status"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/tap"
)

const (
	shutdownTimeout = 5 * time.Second
	signalQueueSize = 64
)

func run(c *cli.Context) error {
	cfg := configFromContext(c)
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError("invalid configuration: "+err.Error(), 2)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	log.Infof("tap2ble %s starting", version)

	iface, err := tap.Open(cfg.TunDevice, cfg.InterfaceName, logging.Component(log, "tap"))
	if err != nil {
		return fatal(log, "Failed to create TAP interface", err)
	}
	defer iface.Close()

	// shared connection, not closed
	conn, err := dbus.SystemBus()
	if err != nil {
		return fatal(log, "Failed to connect to the system bus", err)
	}

	pipe := gatt.NewPipe(logging.Component(log, "gatt"))
	defer pipe.Close()

	app := gatt.NewApplication(gatt.PathsFor(dbus.ObjectPath(cfg.AppPath)), pipe, logging.Component(log, "gatt"))
	if err := app.Export(conn); err != nil {
		return fatal(log, "Failed to export GATT application", err)
	}
	defer app.Unexport()

	bluezLog := logging.Component(log, "bluez")
	bz := bluez.NewClient(conn, bluezLog)
	signals := make(chan *dbus.Signal, signalQueueSize)
	if err := bz.Subscribe(signals); err != nil {
		return fatal(log, "Failed to watch BlueZ", err)
	}
	defer bz.Unsubscribe(signals)

	netcfg := connman.NewClient(conn, connman.Settings{
		Address:     cfg.Address,
		Netmask:     cfg.Netmask,
		Gateway:     cfg.Gateway,
		Nameservers: cfg.Nameservers,
	}, logging.Component(log, "connman"))

	br := bridge.New(bridge.Options{
		Interface:     iface,
		Pipe:          pipe,
		Monitor:       bluez.NewMonitor(bz, signals, bluezLog),
		Registrar:     bz,
		Configurator:  netcfg,
		AppPath:       app.Paths().App,
		DefaultMTU:    cfg.DefaultMTU,
		Log:           logging.Component(log, "bridge"),
		OnStateChange: notifyStatus,
	})

	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, br, logging.Component(log, "status"))
		if err := srv.Start(); err != nil {
			log.Warnf("status endpoint disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				srv.Shutdown(ctx)
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go watchdog(ctx, log)
	notify(log, daemon.SdNotifyReady)
	notifyStatus(br.Snapshot())

	runErr := br.Run(ctx)

	notify(log, daemon.SdNotifyStopping)
	log.Info("Shutting down tap2ble...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	br.Shutdown(shutdownCtx)

	if runErr != nil {
		return fatal(log, "Bridge stopped", runErr)
	}

	log.Info("tap2ble stopped")
	return nil
}

func fatal(log logging.Logger, msg string, err error) error {
	log.Errorf("%s: %v", msg, err)
	return cli.NewExitError(msg+": "+err.Error(), 1)
}

func notify(log logging.Logger, state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		log.Debugf("sd_notify %q failed: %v", state, err)
	}
}

func notifyStatus(s bridge.Snapshot) {
	daemon.SdNotify(false, "STATUS="+s.Status())
}

// watchdog pings systemd at half the configured interval.
func watchdog(ctx context.Context, log logging.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			notify(log, daemon.SdNotifyWatchdog)
		}
	}
}
