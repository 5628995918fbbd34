//go:build linux

package tap

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// pipeDevice wires a Device to an os.Pipe so frame I/O can be exercised
// without /dev/net/tun.
func pipeDevice(t *testing.T) (*Device, *os.File, *os.File) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})

	return newDevice(r, "tap0", logging.Discard()), r, w
}

func TestDevice_ReadFrame(t *testing.T) {
	d, _, w := pipeDevice(t)

	frame := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02, 0x00, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06}
	_, err := w.Write(frame)
	require.NoError(t, err)

	got, err := d.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestDevice_ReadFrameAfterClose(t *testing.T) {
	d, _, _ := pipeDevice(t)

	errc := make(chan error, 1)
	go func() {
		_, err := d.ReadFrame()
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, d.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("ReadFrame did not return after Close")
	}
}

func TestDevice_WriteFrame(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	d := newDevice(w, "tap0", logging.Discard())
	require.NoError(t, d.WriteFrame([]byte("ping")))

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestDevice_WriteFrameAfterClose(t *testing.T) {
	d, _, _ := pipeDevice(t)
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.WriteFrame([]byte("x")), ErrClosed)
}

func TestDevice_SetMTUWhileDownIsSkipped(t *testing.T) {
	d, _, _ := pipeDevice(t)

	// tap0 does not exist here; reaching the ioctl would fail.
	require.NoError(t, d.SetMTU(186))
	assert.False(t, d.IsUp())
	assert.Zero(t, d.MTU())
	assert.Equal(t, "tap0", d.Name())
}
