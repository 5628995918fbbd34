//go:build !linux

package tap

import (
	"errors"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// Device is only implemented on Linux.
type Device struct{}

// Open always fails outside Linux.
func Open(path, name string, log logging.Logger) (*Device, error) {
	return nil, errors.New("tap: TAP interfaces are only supported on linux")
}

func (d *Device) Name() string                  { return "" }
func (d *Device) IsUp() bool                    { return false }
func (d *Device) MTU() int                      { return 0 }
func (d *Device) BringUp() error                { return ErrClosed }
func (d *Device) BringDown() error              { return ErrClosed }
func (d *Device) SetMTU(int) error              { return ErrClosed }
func (d *Device) ReadFrame() ([]byte, error)    { return nil, ErrClosed }
func (d *Device) WriteFrame(frame []byte) error { return ErrClosed }
func (d *Device) Close() error                  { return nil }
