// Package tap owns the kernel TAP interface whose Ethernet frames are carried
// over BLE.
package tap

import (
	"errors"
)

// FrameBufferSize is the size of the buffer each frame is read into.
const FrameBufferSize = 1500

// ErrClosed is returned by ReadFrame and WriteFrame once the device is closed.
var ErrClosed = errors.New("tap: device closed")
