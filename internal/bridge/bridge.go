// Package bridge moves Ethernet frames between the TAP interface and the
// GATT characteristics, and keeps the interface in step with the companion
// connection and the negotiated ATT MTU.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/bluez"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/config"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/gatt"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/tap"
)

// Interface is the TAP device.
type Interface interface {
	Name() string
	BringUp() error
	BringDown() error
	SetMTU(mtu int) error
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
}

// Pipe is the GATT side: events from the characteristics and the TX value.
type Pipe interface {
	Events() <-chan gatt.Event
	Publish(value []byte) error
}

// Monitor reports adapter and connection changes.
type Monitor interface {
	Run(ctx context.Context) error
	Events() <-chan bluez.Event
}

// Registrar registers the GATT application with an adapter.
type Registrar interface {
	RegisterApplication(adapter, app dbus.ObjectPath)
	UnregisterApplication(ctx context.Context, adapter, app dbus.ObjectPath) error
}

// Configurator sets up addressing on the interface.
type Configurator interface {
	Reset(ctx context.Context, ifname string) error
	Clear(ctx context.Context, ifname string) error
}

const (
	frameQueueSize = 64
	rpcTimeout     = 5 * time.Second
)

// Options wires a Bridge. Interface, Pipe and Monitor are required.
type Options struct {
	Interface    Interface
	Pipe         Pipe
	Monitor      Monitor
	Registrar    Registrar
	Configurator Configurator

	// AppPath is the root of the exported GATT application.
	AppPath dbus.ObjectPath
	// DefaultMTU is the BLE MTU assumed until a hint arrives.
	DefaultMTU int

	Log logging.Logger

	// OnStateChange, when set, is called from the reactor after the link
	// state changes.
	OnStateChange func(Snapshot)
}

// Bridge is the reactor. All state below is owned by the goroutine running
// Run; Snapshot reads a copy guarded by mu.
type Bridge struct {
	iface    Interface
	pipe     Pipe
	monitor  Monitor
	registry Registrar
	netcfg   Configurator
	appPath  dbus.ObjectPath
	log      logging.Logger
	onChange func(Snapshot)

	defaultMTU int
	mtu        int // last BLE MTU applied, -1 until the first hint
	adapter    dbus.ObjectPath
	connected  bool
	up         bool

	mu   sync.Mutex
	snap Snapshot
}

// New returns a Bridge. It panics if a required option is missing.
func New(opts Options) *Bridge {
	if opts.Interface == nil || opts.Pipe == nil || opts.Monitor == nil {
		panic("bridge: Interface, Pipe and Monitor are required")
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.DefaultMTU == 0 {
		opts.DefaultMTU = config.DefaultBLEMTU
	}

	b := &Bridge{
		iface:      opts.Interface,
		pipe:       opts.Pipe,
		monitor:    opts.Monitor,
		registry:   opts.Registrar,
		netcfg:     opts.Configurator,
		appPath:    opts.AppPath,
		log:        opts.Log,
		onChange:   opts.OnStateChange,
		defaultMTU: opts.DefaultMTU,
		mtu:        -1,
	}
	b.snap = Snapshot{Interface: b.iface.Name(), MTU: -1}
	return b
}

// Run forwards frames and reacts to GATT and BlueZ events until ctx is done
// or a fatal error occurs, which is returned.
func (b *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan []byte, frameQueueSize)
	readErr := make(chan error, 1)
	go b.readFrames(ctx, frames, readErr)

	monitorErr := make(chan error, 1)
	go func() { monitorErr <- b.monitor.Run(ctx) }()

	pipeEvents := b.pipe.Events()
	monitorEvents := b.monitor.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case frame := <-frames:
			b.forwardToCompanion(frame)

		case err := <-readErr:
			return fmt.Errorf("reading from %s failed: %w", b.iface.Name(), err)

		case ev := <-pipeEvents:
			if err := b.handlePipeEvent(ev); err != nil {
				return err
			}

		case ev := <-monitorEvents:
			if err := b.handleMonitorEvent(ctx, ev); err != nil {
				return err
			}

		case err := <-monitorErr:
			if err != nil {
				return fmt.Errorf("bluez monitor stopped: %w", err)
			}
			monitorErr = nil
		}
	}
}

// readFrames blocks on the interface. It exits once the device is closed
// after ctx is done.
func (b *Bridge) readFrames(ctx context.Context, frames chan<- []byte, errs chan<- error) {
	for {
		frame, err := b.iface.ReadFrame()
		if err != nil {
			if errors.Is(err, tap.ErrClosed) && ctx.Err() != nil {
				return
			}
			errs <- err
			return
		}
		if len(frame) == 0 {
			continue
		}

		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bridge) forwardToCompanion(frame []byte) {
	if err := b.pipe.Publish(frame); err != nil {
		b.log.Warnf("TX notification failed: %v", err)
		b.update(func(s *Snapshot) { s.NotifyFailures++ })
	}
	b.update(func(s *Snapshot) {
		s.FramesToCompanion++
		s.BytesToCompanion += uint64(len(frame))
	})
}

func (b *Bridge) handlePipeEvent(ev gatt.Event) error {
	switch ev.Kind {
	case gatt.EventMTU:
		return b.applyMTU(ev.MTU, ev.Origin)

	case gatt.EventReceived:
		if err := b.iface.WriteFrame(ev.Payload); err != nil {
			b.log.Errorf("Failed to write to %s: %v", b.iface.Name(), err)
			b.update(func(s *Snapshot) { s.WriteFailures++ })
			return nil
		}
		b.update(func(s *Snapshot) {
			s.FramesFromCompanion++
			s.BytesFromCompanion += uint64(len(ev.Payload))
		})
	}
	return nil
}

// applyMTU resizes the interface when the hinted MTU differs from the last
// one applied. A failing resize is fatal.
func (b *Bridge) applyMTU(mtu int, origin gatt.Origin) error {
	if mtu == b.mtu {
		return nil
	}

	b.log.Infof("MTU changed to %d (via %s)", mtu, origin)
	b.mtu = mtu
	b.update(func(s *Snapshot) {
		s.MTU = mtu
		s.MTUChanges++
	})

	if err := b.iface.SetMTU(config.InterfaceMTU(mtu)); err != nil {
		return fmt.Errorf("failed to set MTU %d on %s: %w", config.InterfaceMTU(mtu), b.iface.Name(), err)
	}
	return nil
}

func (b *Bridge) handleMonitorEvent(ctx context.Context, ev bluez.Event) error {
	switch ev.Kind {
	case bluez.AdapterChanged:
		b.adapter = ev.Adapter
		b.update(func(s *Snapshot) { s.Adapter = string(ev.Adapter) })

		if ev.Adapter == "" {
			b.log.Info("No BLE adapter found")
			return b.linkDown(ctx)
		}

		b.log.Infof("BLE adapter %s found", ev.Adapter)
		if b.registry != nil {
			b.registry.RegisterApplication(ev.Adapter, b.appPath)
		}

	case bluez.ConnectedChanged:
		b.connected = ev.Connected
		b.update(func(s *Snapshot) { s.Connected = ev.Connected })

		if ev.Connected {
			b.log.Info("Companion connected")
			return b.linkUp(ctx)
		}
		b.log.Info("Companion disconnected")
		return b.linkDown(ctx)
	}
	return nil
}

func (b *Bridge) linkUp(ctx context.Context) error {
	if err := b.iface.BringUp(); err != nil {
		return fmt.Errorf("failed to bring %s up: %w", b.iface.Name(), err)
	}
	b.up = true

	mtu := b.mtu
	if mtu < 0 {
		mtu = b.defaultMTU
	}
	if err := b.iface.SetMTU(config.InterfaceMTU(mtu)); err != nil {
		return fmt.Errorf("failed to set MTU %d on %s: %w", config.InterfaceMTU(mtu), b.iface.Name(), err)
	}

	if b.netcfg != nil {
		rctx, cancel := context.WithTimeout(ctx, rpcTimeout)
		defer cancel()
		if err := b.netcfg.Reset(rctx, b.iface.Name()); err != nil {
			b.log.Warnf("failed to configure %s: %v", b.iface.Name(), err)
		}
	}

	b.stateChanged(func(s *Snapshot) { s.InterfaceUp = true })
	return nil
}

func (b *Bridge) linkDown(ctx context.Context) error {
	if !b.up {
		return nil
	}

	if err := b.iface.BringDown(); err != nil {
		return fmt.Errorf("failed to bring %s down: %w", b.iface.Name(), err)
	}
	b.up = false

	if b.netcfg != nil {
		rctx, cancel := context.WithTimeout(ctx, rpcTimeout)
		defer cancel()
		if err := b.netcfg.Clear(rctx, b.iface.Name()); err != nil {
			b.log.Warnf("failed to clear configuration of %s: %v", b.iface.Name(), err)
		}
	}

	b.stateChanged(func(s *Snapshot) { s.InterfaceUp = false })
	return nil
}

// Shutdown withdraws the application and brings the interface down. Call it
// after Run has returned.
func (b *Bridge) Shutdown(ctx context.Context) {
	if b.adapter != "" && b.registry != nil {
		if err := b.registry.UnregisterApplication(ctx, b.adapter, b.appPath); err != nil {
			b.log.Warnf("failed to unregister %s: %v", b.appPath, err)
		}
	}

	if b.up {
		if err := b.iface.BringDown(); err != nil {
			b.log.Warnf("failed to bring %s down: %v", b.iface.Name(), err)
		}
		b.up = false
		b.update(func(s *Snapshot) { s.InterfaceUp = false })
	}
}

// Snapshot returns the current state and counters. Safe for concurrent use.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

func (b *Bridge) update(fn func(*Snapshot)) {
	b.mu.Lock()
	fn(&b.snap)
	b.mu.Unlock()
}

func (b *Bridge) stateChanged(fn func(*Snapshot)) {
	b.update(fn)
	if b.onChange != nil {
		b.onChange(b.Snapshot())
	}
}
