package ports

import "context"

// TransportState tracks the connectivity lifecycle of the publish session.
type TransportState int

const (
	TransportDisabled TransportState = iota
	TransportConnecting
	TransportConnected
	TransportDisconnected
)

func (s TransportState) String() string {
	switch s {
	case TransportDisabled:
		return "disabled"
	case TransportConnecting:
		return "connecting"
	case TransportConnected:
		return "connected"
	case TransportDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Transport is the publish/subscribe session the dispatch driver relays
// samples and alerts through. The transport owns its reconnection timing;
// EnsureConnected is called once per tick and internally rate-limits
// connection attempts, so an unavailable broker costs at most one attempt per
// retry interval.
type Transport interface {
	// EnsureConnected brings the session up if it is enabled and due for a
	// retry, and reports whether the session is connected afterwards.
	EnsureConnected(ctx context.Context) bool

	// Connected reports the session state without side effects.
	Connected() bool

	// Publish sends one payload on the given topic. It fails when the session
	// is down or the broker rejects the packet.
	Publish(ctx context.Context, topic string, payload []byte) error

	// SetEnabled toggles the operator-level connectivity enablement
	// ("wifi on" / "wifi off"). Disabling tears the session down.
	SetEnabled(enabled bool)

	Enabled() bool
	State() TransportState

	// Close tears the session down for process shutdown.
	Close(ctx context.Context) error
}
