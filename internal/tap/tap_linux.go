//go:build linux

package tap

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// Device is a TAP interface created on /dev/net/tun. The descriptor is
// opened once in Open and released by Close.
type Device struct {
	file *os.File
	name string
	log  logging.Logger

	mu  sync.Mutex
	up  bool
	mtu int
}

// Open creates the TAP interface. name may be empty, in which case the
// kernel picks one (tap0, tap1, ...). The interface is left down.
func Open(path, name string, log logging.Logger) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", path)
	}

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't build interface request")
	}
	ifr.SetUint16(unix.IFF_TAP | unix.IFF_NO_PI)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't create TAP interface")
	}

	if err := unix.IoctlSetInt(fd, unix.TUNSETOFFLOAD, 0); err != nil {
		log.Warnf("can't disable TAP offload: %v", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't make TAP descriptor non-blocking")
	}

	// Throw away whatever the kernel queued while the interface was created.
	discard := make([]byte, FrameBufferSize)
	if n, err := unix.Read(fd, discard); err == nil {
		log.Debugf("drained %d bytes", n)
	}

	d := newDevice(os.NewFile(uintptr(fd), path), ifr.Name(), log)
	log.Infof("TAP interface created: %s", d.name)

	if err := d.setUp(false); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

func newDevice(file *os.File, name string, log logging.Logger) *Device {
	return &Device{file: file, name: name, log: log}
}

// Name is the interface name assigned by the kernel.
func (d *Device) Name() string {
	return d.name
}

// IsUp reports the administrative state last set through this Device.
func (d *Device) IsUp() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.up
}

// MTU returns the interface MTU last applied, 0 if none was.
func (d *Device) MTU() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mtu
}

// BringUp sets IFF_UP on the interface.
func (d *Device) BringUp() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.setUp(true); err != nil {
		return err
	}
	d.log.Info("interface up")
	return nil
}

// BringDown clears IFF_UP on the interface.
func (d *Device) BringDown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.setUp(false); err != nil {
		return err
	}
	d.log.Info("interface down")
	return nil
}

// SetMTU applies mtu to the interface. It does nothing while the interface
// is down; the caller applies the MTU again after BringUp.
func (d *Device) SetMTU(mtu int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.up {
		d.log.Debugf("interface down, not applying MTU %d", mtu)
		return nil
	}

	err := d.withIfreq(func(sock int, ifr *unix.Ifreq) error {
		ifr.SetUint32(uint32(mtu))
		return errors.Wrapf(unix.IoctlIfreq(sock, unix.SIOCSIFMTU, ifr), "can't set MTU %d", mtu)
	})
	if err != nil {
		return err
	}

	d.mtu = mtu
	d.log.Infof("MTU set to %d", mtu)
	return nil
}

// ReadFrame blocks until the kernel hands over a frame.
func (d *Device) ReadFrame() ([]byte, error) {
	buf := make([]byte, FrameBufferSize)

	n, err := d.file.Read(buf)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, errors.Wrap(err, "can't read TAP interface")
	}

	return buf[:n], nil
}

// WriteFrame hands one Ethernet frame to the kernel.
func (d *Device) WriteFrame(frame []byte) error {
	n, err := d.file.Write(frame)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return ErrClosed
		}
		return errors.Wrap(err, "can't write TAP interface")
	}

	if n <= 0 {
		return errors.New("can't write TAP interface: wrote 0 bytes")
	}

	return nil
}

// Close releases the descriptor, which removes the interface.
func (d *Device) Close() error {
	return errors.Wrap(d.file.Close(), "can't close TAP interface")
}

// setUp must be called with d.mu held (or before d is shared).
func (d *Device) setUp(up bool) error {
	err := d.withIfreq(func(sock int, ifr *unix.Ifreq) error {
		if err := unix.IoctlIfreq(sock, unix.SIOCGIFFLAGS, ifr); err != nil {
			return errors.Wrap(err, "can't get interface flags")
		}

		flags := ifr.Uint16()
		want := flags &^ unix.IFF_UP
		if up {
			want = flags | unix.IFF_UP
		}
		if want == flags {
			return nil
		}

		ifr.SetUint16(want)
		return errors.Wrap(unix.IoctlIfreq(sock, unix.SIOCSIFFLAGS, ifr), "can't set interface flags")
	})
	if err != nil {
		return err
	}

	d.up = up
	return nil
}

func (d *Device) withIfreq(fn func(sock int, ifr *unix.Ifreq) error) error {
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return errors.Wrap(err, "can't create socket")
	}
	defer unix.Close(sock)

	ifr, err := unix.NewIfreq(d.name)
	if err != nil {
		return errors.Wrap(err, "can't build interface request")
	}

	return fn(sock, ifr)
}
