package bridge

// Snapshot is a point-in-time view of the bridge.
type Snapshot struct {
	Interface   string `json:"interface"`
	InterfaceUp bool   `json:"interface_up"`
	Adapter     string `json:"adapter"`
	Connected   bool   `json:"connected"`
	// MTU is the last negotiated BLE MTU, -1 before the first hint.
	MTU int `json:"mtu"`

	FramesToCompanion   uint64 `json:"frames_to_companion"`
	BytesToCompanion    uint64 `json:"bytes_to_companion"`
	FramesFromCompanion uint64 `json:"frames_from_companion"`
	BytesFromCompanion  uint64 `json:"bytes_from_companion"`
	WriteFailures       uint64 `json:"write_failures"`
	NotifyFailures      uint64 `json:"notify_failures"`
	MTUChanges          uint64 `json:"mtu_changes"`
}

// Status is a one-line summary, used for the systemd STATUS field.
func (s Snapshot) Status() string {
	switch {
	case s.Adapter == "":
		return "waiting for a BLE adapter"
	case !s.Connected:
		return "waiting for the companion on " + s.Adapter
	case s.MTU < 0:
		return "connected, MTU not negotiated"
	default:
		return "connected"
	}
}
