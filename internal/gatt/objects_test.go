package gatt

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

func TestPathsFor(t *testing.T) {
	p := PathsFor("/org/asteroidos/tap2ble")

	assert.Equal(t, dbus.ObjectPath("/org/asteroidos/tap2ble"), p.App)
	assert.Equal(t, dbus.ObjectPath("/org/asteroidos/tap2ble/service"), p.Service)
	assert.Equal(t, dbus.ObjectPath("/org/asteroidos/tap2ble/service/rx"), p.RX)
	assert.Equal(t, dbus.ObjectPath("/org/asteroidos/tap2ble/service/tx"), p.TX)
}

func TestApplication_ManagedObjects(t *testing.T) {
	paths := PathsFor("/org/asteroidos/tap2ble")
	app := NewApplication(paths, NewPipe(logging.Discard()), logging.Discard())

	objects, dbusErr := app.GetManagedObjects()
	require.Nil(t, dbusErr)
	require.Len(t, objects, 3)

	service := objects[paths.Service][GattServiceIface]
	require.NotNil(t, service)
	assert.Equal(t, ServiceUUID, service["UUID"].Value())
	assert.Equal(t, true, service["Primary"].Value())
	assert.Equal(t, []dbus.ObjectPath{paths.RX, paths.TX}, service["Characteristics"].Value())

	rx := objects[paths.RX][GattCharacteristicIface]
	require.NotNil(t, rx)
	assert.Equal(t, RXUUID, rx["UUID"].Value())
	assert.Equal(t, paths.Service, rx["Service"].Value())
	assert.Equal(t, []string{"encrypt-authenticated-write"}, rx["Flags"].Value())
	assert.Equal(t, []dbus.ObjectPath{}, rx["Descriptors"].Value())

	tx := objects[paths.TX][GattCharacteristicIface]
	require.NotNil(t, tx)
	assert.Equal(t, TXUUID, tx["UUID"].Value())
	assert.Equal(t, []string{"encrypt-authenticated-read", "notify"}, tx["Flags"].Value())
	assert.NotContains(t, tx, "Value")
}

func TestRXCharacteristic(t *testing.T) {
	pipe := NewPipe(logging.Discard())
	rx := &rxCharacteristic{pipe: pipe}

	v, dbusErr := rx.ReadValue(nil)
	require.Nil(t, dbusErr)
	assert.Empty(t, v)

	require.Nil(t, rx.WriteValue([]byte("ping"), mtuOption(uint16(200))))
	assert.Equal(t, 200, nextEvent(t, pipe).MTU)
	assert.Equal(t, []byte("ping"), nextEvent(t, pipe).Payload)

	assert.Nil(t, rx.StartNotify())
	assert.Nil(t, rx.StopNotify())
}

func TestTXCharacteristic(t *testing.T) {
	pipe := NewPipe(logging.Discard())
	tx := &txCharacteristic{pipe: pipe, log: logging.Discard()}

	require.NoError(t, pipe.Publish([]byte("pong")))

	v, dbusErr := tx.ReadValue(mtuOption(uint16(180)))
	require.Nil(t, dbusErr)
	assert.Equal(t, []byte("pong"), v)
	assert.Equal(t, Event{Kind: EventMTU, Origin: OriginTX, MTU: 180}, nextEvent(t, pipe))

	// Writes to TX are accepted and dropped.
	require.Nil(t, tx.WriteValue([]byte("ignored"), nil))
	select {
	case ev := <-pipe.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	assert.Nil(t, tx.StartNotify())
	assert.Nil(t, tx.StopNotify())
}
