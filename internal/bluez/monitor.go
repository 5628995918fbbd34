package bluez

import (
	"context"
	"sort"

	"github.com/godbus/dbus/v5"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// EventKind says which observed value changed.
type EventKind int

const (
	AdapterChanged EventKind = iota
	ConnectedChanged
)

func (k EventKind) String() string {
	if k == ConnectedChanged {
		return "connected"
	}
	return "adapter"
}

// Event reports a change of the adapter or of the connected flag. Events
// only fire when the value actually changes.
type Event struct {
	Kind      EventKind
	Adapter   dbus.ObjectPath // empty when no adapter is usable
	Connected bool
}

const eventQueueSize = 16

// Monitor follows BlueZ: whether it runs, which adapter can host a GATT
// application, and whether any device is connected.
type Monitor struct {
	om      ObjectManager
	signals <-chan *dbus.Signal
	log     logging.Logger
	events  chan Event

	// owned by the Run goroutine
	active    bool
	adapter   dbus.ObjectPath
	connected bool
	devices   map[dbus.ObjectPath]struct{}
}

// NewMonitor returns a Monitor reading BlueZ through om and reacting to the
// signals delivered on signals (see Client.Subscribe).
func NewMonitor(om ObjectManager, signals <-chan *dbus.Signal, log logging.Logger) *Monitor {
	return &Monitor{
		om:      om,
		signals: signals,
		log:     log,
		events:  make(chan Event, eventQueueSize),
	}
}

// Events returns the stream of adapter/connected changes.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Adapter is the current adapter path, empty if none.
func (m *Monitor) Adapter() dbus.ObjectPath {
	return m.adapter
}

// Connected reports whether a companion is connected.
func (m *Monitor) Connected() bool {
	return m.connected
}

// Run probes BlueZ once, then handles signals until ctx is done or the
// signal channel is closed.
func (m *Monitor) Run(ctx context.Context) error {
	running, err := m.om.ServiceRunning()
	if err != nil {
		m.log.Warnf("can't tell whether %s is running: %v", BusName, err)
	}
	if running {
		m.ServiceRegistered(ctx)
	} else {
		m.ServiceUnregistered(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-m.signals:
			if !ok {
				return nil
			}
			m.HandleSignal(ctx, sig)
		}
	}
}

// HandleSignal dispatches one bus signal.
func (m *Monitor) HandleSignal(ctx context.Context, sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case dbusIface + ".NameOwnerChanged":
		if len(sig.Body) < 3 {
			return
		}
		name, _ := sig.Body[0].(string)
		newOwner, _ := sig.Body[2].(string)
		if name != BusName {
			return
		}
		if newOwner != "" {
			m.ServiceRegistered(ctx)
		} else {
			m.ServiceUnregistered(ctx)
		}

	case objectManagerIface + ".InterfacesAdded", objectManagerIface + ".InterfacesRemoved":
		if m.active {
			m.refresh(ctx)
		}

	case propertiesIface + ".PropertiesChanged":
		if !m.active {
			return
		}
		if _, ok := m.devices[sig.Path]; ok {
			m.refresh(ctx)
		}
	}
}

// ServiceRegistered starts following BlueZ and enumerates its objects.
func (m *Monitor) ServiceRegistered(ctx context.Context) {
	m.log.Infof("Service %s is running", BusName)
	m.active = true
	m.refresh(ctx)
}

// ServiceUnregistered forgets the adapter and the connection.
func (m *Monitor) ServiceUnregistered(ctx context.Context) {
	m.log.Infof("Service %s is not running", BusName)
	m.active = false
	m.devices = nil
	m.setAdapter(ctx, "")
	m.setConnected(ctx, false)
}

// refresh re-enumerates BlueZ. A failed enumeration is not retried; the
// next signal triggers another one.
func (m *Monitor) refresh(ctx context.Context) {
	objects, err := m.om.ManagedObjects(ctx)
	if err != nil {
		m.log.Warnf("can't enumerate %s objects: %v", BusName, err)
		return
	}
	m.Apply(ctx, objects)
}

// Apply recomputes adapter and connected from a snapshot. Applying the same
// snapshot again fires nothing.
func (m *Monitor) Apply(ctx context.Context, objects ManagedObjects) {
	adapter, connected, devices := Evaluate(objects)
	m.devices = devices
	m.setAdapter(ctx, adapter)
	m.setConnected(ctx, connected)
}

func (m *Monitor) setAdapter(ctx context.Context, adapter dbus.ObjectPath) {
	if adapter == m.adapter {
		return
	}
	m.adapter = adapter
	m.emit(ctx, Event{Kind: AdapterChanged, Adapter: adapter, Connected: m.connected})
}

func (m *Monitor) setConnected(ctx context.Context, connected bool) {
	if connected == m.connected {
		return
	}
	m.connected = connected
	m.emit(ctx, Event{Kind: ConnectedChanged, Adapter: m.adapter, Connected: connected})
}

func (m *Monitor) emit(ctx context.Context, ev Event) {
	select {
	case m.events <- ev:
	case <-ctx.Done():
	}
}

// Evaluate derives the adapter, the connected flag and the set of device
// objects from a snapshot. The adapter is the first path, in sorted order,
// exposing GattManager1. connected is the OR of every Device1.Connected and
// is false when there is no adapter.
func Evaluate(objects ManagedObjects) (dbus.ObjectPath, bool, map[dbus.ObjectPath]struct{}) {
	paths := make([]string, 0, len(objects))
	for path := range objects {
		paths = append(paths, string(path))
	}
	sort.Strings(paths)

	var adapter dbus.ObjectPath
	connected := false
	devices := make(map[dbus.ObjectPath]struct{})

	for _, p := range paths {
		path := dbus.ObjectPath(p)
		ifaces := objects[path]

		if _, ok := ifaces[gattManagerIface]; ok && adapter == "" {
			adapter = path
		}

		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		devices[path] = struct{}{}
		if v, ok := props["Connected"]; ok {
			if c, ok := v.Value().(bool); ok && c {
				connected = true
			}
		}
	}

	if adapter == "" {
		connected = false
	}
	return adapter, connected, devices
}
