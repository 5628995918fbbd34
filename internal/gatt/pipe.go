// Package gatt exposes the RX/TX characteristic pair the companion uses as a
// byte pipe, and the D-Bus objects BlueZ needs to serve it.
package gatt

import (
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

// Origin tells which characteristic an event came through.
type Origin int

const (
	OriginRX Origin = iota
	OriginTX
)

func (o Origin) String() string {
	if o == OriginTX {
		return "tx"
	}
	return "rx"
}

// EventKind distinguishes payloads from MTU hints.
type EventKind int

const (
	// EventReceived carries a payload the central wrote to RX.
	EventReceived EventKind = iota
	// EventMTU carries the MTU the central reported with an access.
	EventMTU
)

// Event is something the central did through the pipe. Events are delivered
// in the order the accesses arrived.
type Event struct {
	Kind    EventKind
	Origin  Origin
	MTU     int
	Payload []byte
}

// Notifier pushes a new TX value to subscribed centrals.
type Notifier interface {
	Notify(value []byte) error
}

const eventQueueSize = 64

// Pipe is the state behind the two characteristics: the RX write stream and
// the TX value with its change notifications.
type Pipe struct {
	log logging.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	// serialises enqueueing so an MTU hint stays ahead of its payload
	sendMu sync.Mutex

	mu       sync.Mutex
	value    []byte
	notifier Notifier
}

// NewPipe returns a Pipe with no notifier; Publish only stores the value
// until SetNotifier is called.
func NewPipe(log logging.Logger) *Pipe {
	return &Pipe{
		log:    log,
		events: make(chan Event, eventQueueSize),
		done:   make(chan struct{}),
	}
}

// SetNotifier installs the TX change notifier.
func (p *Pipe) SetNotifier(n Notifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifier = n
}

// Events returns the stream of RX payloads and MTU hints.
func (p *Pipe) Events() <-chan Event {
	return p.events
}

// HandleWrite is called when the central writes to RX.
func (p *Pipe) HandleWrite(value []byte, options map[string]dbus.Variant) {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	if mtu, ok := MTUFromOptions(options); ok {
		p.send(Event{Kind: EventMTU, Origin: OriginRX, MTU: mtu})
	} else {
		p.log.Warn("mtu not in WriteValue")
	}

	payload := make([]byte, len(value))
	copy(payload, value)
	p.send(Event{Kind: EventReceived, Origin: OriginRX, Payload: payload})
}

// HandleRead is called when the central reads TX instead of waiting for a
// notification. It returns the last published value.
func (p *Pipe) HandleRead(options map[string]dbus.Variant) []byte {
	p.sendMu.Lock()
	if mtu, ok := MTUFromOptions(options); ok {
		p.send(Event{Kind: EventMTU, Origin: OriginTX, MTU: mtu})
	} else {
		p.log.Warn("mtu not in ReadValue")
	}
	p.sendMu.Unlock()

	return p.Value()
}

// Publish stores value as the TX value and notifies subscribers. Every call
// notifies, including one repeating the previous value.
func (p *Pipe) Publish(value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	p.mu.Lock()
	p.value = v
	n := p.notifier
	p.mu.Unlock()

	if n == nil {
		return nil
	}
	return n.Notify(v)
}

// Value returns a copy of the current TX value.
func (p *Pipe) Value() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := make([]byte, len(p.value))
	copy(v, p.value)
	return v
}

// Close unblocks pending HandleWrite/HandleRead calls. Events still queued
// are left in the channel.
func (p *Pipe) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

func (p *Pipe) send(ev Event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// MTUFromOptions extracts the "mtu" entry BlueZ adds to ReadValue and
// WriteValue options.
func MTUFromOptions(options map[string]dbus.Variant) (int, bool) {
	v, ok := options["mtu"]
	if !ok {
		return 0, false
	}

	var mtu int
	switch n := v.Value().(type) {
	case uint16:
		mtu = int(n)
	case uint32:
		mtu = int(n)
	case uint64:
		mtu = int(n)
	case int16:
		mtu = int(n)
	case int32:
		mtu = int(n)
	case int64:
		mtu = int(n)
	case int:
		mtu = n
	case byte:
		mtu = int(n)
	default:
		return 0, false
	}

	if mtu <= 0 {
		return 0, false
	}
	return mtu, true
}
