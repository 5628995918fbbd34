package gatt

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// BlueZ GATT interfaces implemented by the exported objects.
const (
	GattServiceIface        = "org.bluez.GattService1"
	GattCharacteristicIface = "org.bluez.GattCharacteristic1"

	objectManagerIface  = "org.freedesktop.DBus.ObjectManager"
	propertiesIface     = "org.freedesktop.DBus.Properties"
	introspectableIface = "org.freedesktop.DBus.Introspectable"
)

// Service and characteristic UUIDs the companion app looks for.
const (
	ServiceUUID = "00001071-0000-0000-0000-00A57E401D05"
	RXUUID      = "00001001-0000-0000-0000-00A57E401D05"
	TXUUID      = "00001002-0000-0000-0000-00A57E401D05"
)

var (
	rxFlags = []string{"encrypt-authenticated-write"}
	txFlags = []string{"encrypt-authenticated-read", "notify"}
)

// Paths are the object paths of the application tree.
type Paths struct {
	App     dbus.ObjectPath
	Service dbus.ObjectPath
	RX      dbus.ObjectPath
	TX      dbus.ObjectPath
}

// PathsFor derives the service and characteristic paths from the
// application root.
func PathsFor(app dbus.ObjectPath) Paths {
	service := app + "/service"
	return Paths{
		App:     app,
		Service: service,
		RX:      service + "/rx",
		TX:      service + "/tx",
	}
}

// Application is the object tree registered with BlueZ: one primary
// service owning RX and TX.
type Application struct {
	conn  *dbus.Conn
	paths Paths
	pipe  *Pipe
	log   logging.Logger
}

// NewApplication builds the tree without exporting it.
func NewApplication(paths Paths, pipe *Pipe, log logging.Logger) *Application {
	return &Application{paths: paths, pipe: pipe, log: log}
}

// Paths returns the object paths of the tree.
func (a *Application) Paths() Paths {
	return a.paths
}

// GetManagedObjects is the ObjectManager method BlueZ calls after
// RegisterApplication.
func (a *Application) GetManagedObjects() (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, *dbus.Error) {
	return a.ManagedObjects(), nil
}

// ManagedObjects lists the service and both characteristics with their
// properties.
func (a *Application) ManagedObjects() map[dbus.ObjectPath]map[string]map[string]dbus.Variant {
	objects := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant)
	for path, m := range a.propertyMaps() {
		ifaces := make(map[string]map[string]dbus.Variant)
		for iface, props := range m {
			values := make(map[string]dbus.Variant)
			for name, p := range props {
				if name == "Value" {
					continue
				}
				values[name] = dbus.MakeVariant(p.Value)
			}
			ifaces[iface] = values
		}
		objects[path] = ifaces
	}
	return objects
}

func (a *Application) propertyMaps() map[dbus.ObjectPath]prop.Map {
	return map[dbus.ObjectPath]prop.Map{
		a.paths.Service: {
			GattServiceIface: {
				"UUID":            {Value: ServiceUUID, Emit: prop.EmitConst},
				"Primary":         {Value: true, Emit: prop.EmitConst},
				"Characteristics": {Value: []dbus.ObjectPath{a.paths.RX, a.paths.TX}, Emit: prop.EmitConst},
			},
		},
		a.paths.RX: {
			GattCharacteristicIface: characteristicProps(a.paths.Service, RXUUID, rxFlags, nil),
		},
		a.paths.TX: {
			GattCharacteristicIface: characteristicProps(a.paths.Service, TXUUID, txFlags, a.pipe.Value()),
		},
	}
}

func characteristicProps(service dbus.ObjectPath, uuid string, flags []string, value []byte) map[string]*prop.Prop {
	props := map[string]*prop.Prop{
		"Service":     {Value: service, Emit: prop.EmitConst},
		"UUID":        {Value: uuid, Emit: prop.EmitConst},
		"Flags":       {Value: flags, Emit: prop.EmitConst},
		"Descriptors": {Value: []dbus.ObjectPath{}, Emit: prop.EmitConst},
	}
	if value != nil {
		// Change signals for Value are sent by busNotifier.
		props["Value"] = &prop.Prop{Value: value, Emit: prop.EmitFalse}
	}
	return props
}

// Export puts the tree on conn and wires TX notifications to it.
func (a *Application) Export(conn *dbus.Conn) error {
	a.conn = conn
	maps := a.propertyMaps()

	if err := conn.Export(a, a.paths.App, objectManagerIface); err != nil {
		return fmt.Errorf("failed to export application: %w", err)
	}
	if err := exportIntrospection(conn, a.paths.App, introspect.Interface{
		Name:    objectManagerIface,
		Methods: introspect.Methods(a),
	}); err != nil {
		return err
	}

	if _, err := a.exportObject(conn, a.paths.Service, nil, GattServiceIface, maps[a.paths.Service]); err != nil {
		return err
	}

	rx := &rxCharacteristic{pipe: a.pipe}
	if _, err := a.exportObject(conn, a.paths.RX, rx, GattCharacteristicIface, maps[a.paths.RX]); err != nil {
		return err
	}

	tx := &txCharacteristic{pipe: a.pipe, log: a.log}
	txProps, err := a.exportObject(conn, a.paths.TX, tx, GattCharacteristicIface, maps[a.paths.TX])
	if err != nil {
		return err
	}

	a.pipe.SetNotifier(&busNotifier{conn: conn, path: a.paths.TX, props: txProps})
	a.log.Infof("application exported at %s", a.paths.App)
	return nil
}

// Unexport removes the tree from the bus. TX notifications stop.
func (a *Application) Unexport() {
	if a.conn == nil {
		return
	}

	a.pipe.SetNotifier(nil)
	for _, path := range []dbus.ObjectPath{a.paths.TX, a.paths.RX, a.paths.Service, a.paths.App} {
		for _, iface := range []string{objectManagerIface, GattServiceIface, GattCharacteristicIface, propertiesIface, introspectableIface} {
			a.conn.Export(nil, path, iface)
		}
	}
	a.conn = nil
}

func (a *Application) exportObject(conn *dbus.Conn, path dbus.ObjectPath, obj interface{}, iface string, props prop.Map) (*prop.Properties, error) {
	if obj != nil {
		if err := conn.Export(obj, path, iface); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", path, err)
		}
	}

	p, err := prop.Export(conn, path, props)
	if err != nil {
		return nil, fmt.Errorf("failed to export properties of %s: %w", path, err)
	}

	gattIface := introspect.Interface{Name: iface, Properties: p.Introspection(iface)}
	if obj != nil {
		gattIface.Methods = introspect.Methods(obj)
	}
	if err := exportIntrospection(conn, path, prop.IntrospectData, gattIface); err != nil {
		return nil, err
	}

	return p, nil
}

func exportIntrospection(conn *dbus.Conn, path dbus.ObjectPath, ifaces ...introspect.Interface) error {
	node := &introspect.Node{
		Name:       string(path),
		Interfaces: append([]introspect.Interface{introspect.IntrospectData}, ifaces...),
	}
	if err := conn.Export(introspect.NewIntrospectable(node), path, introspectableIface); err != nil {
		return fmt.Errorf("failed to export introspection of %s: %w", path, err)
	}
	return nil
}

// rxCharacteristic receives frames from the companion.
type rxCharacteristic struct {
	pipe *Pipe
}

func (c *rxCharacteristic) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	return []byte{}, nil
}

func (c *rxCharacteristic) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	c.pipe.HandleWrite(value, options)
	return nil
}

func (c *rxCharacteristic) StartNotify() *dbus.Error { return nil }
func (c *rxCharacteristic) StopNotify() *dbus.Error  { return nil }

// txCharacteristic sends frames to the companion through notifications.
type txCharacteristic struct {
	pipe *Pipe
	log  logging.Logger
}

func (c *txCharacteristic) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	return c.pipe.HandleRead(options), nil
}

func (c *txCharacteristic) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	return nil
}

func (c *txCharacteristic) StartNotify() *dbus.Error {
	c.log.Debug("companion subscribed to TX")
	return nil
}

func (c *txCharacteristic) StopNotify() *dbus.Error {
	c.log.Debug("companion unsubscribed from TX")
	return nil
}

// busNotifier updates the TX Value property and emits PropertiesChanged,
// which BlueZ turns into a notification.
type busNotifier struct {
	conn  *dbus.Conn
	path  dbus.ObjectPath
	props *prop.Properties
}

func (n *busNotifier) Notify(value []byte) error {
	n.props.SetMust(GattCharacteristicIface, "Value", value)

	err := n.conn.Emit(n.path, propertiesIface+".PropertiesChanged",
		GattCharacteristicIface,
		map[string]dbus.Variant{"Value": dbus.MakeVariant(value)},
		[]string{})
	if err != nil {
		return fmt.Errorf("failed to send property notification signal: %w", err)
	}
	return nil
}
