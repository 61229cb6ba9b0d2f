package cardioedge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// ErrTransportDisabled is returned by the in-process transports while disabled.
var ErrTransportDisabled = errors.New("cardioedge: transport disabled")

// ErrChannelTransportClosed is returned when a channel transport is published
// to after being closed.
var ErrChannelTransportClosed = errors.New("cardioedge: channel transport closed")

// PublishFunc receives every payload the dispatch driver publishes.
type PublishFunc func(topic string, payload []byte) error

// NewCallbackTransport adapts a function into a full Transport so embedders
// can consume telemetry in-process without a broker. It starts enabled and
// connected; SetEnabled simulates connectivity loss.
func NewCallbackTransport(name string, fn PublishFunc) Transport {
	if name == "" {
		name = "callback"
	}
	return &callbackTransport{name: name, fn: fn, enabled: true}
}

type callbackTransport struct {
	name string
	fn   PublishFunc

	mu      sync.Mutex
	enabled bool
}

func (t *callbackTransport) EnsureConnected(ctx context.Context) bool { return t.Connected() }

func (t *callbackTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *callbackTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	if !t.Connected() {
		return ErrTransportDisabled
	}
	if t.fn == nil {
		return fmt.Errorf("callback transport %q: nil handler", t.name)
	}
	return t.fn(topic, payload)
}

func (t *callbackTransport) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

func (t *callbackTransport) Enabled() bool { return t.Connected() }

func (t *callbackTransport) State() TransportState {
	if t.Connected() {
		return TransportConnected
	}
	return TransportDisabled
}

func (t *callbackTransport) Close(ctx context.Context) error {
	t.SetEnabled(false)
	return nil
}

// Published is one record emitted by a channel transport.
type Published struct {
	Topic   string
	Payload []byte
}

// NewChannelTransport exposes published payloads via a channel; it returns
// the transport, the read-only channel, and a close function the caller
// should invoke during shutdown.
func NewChannelTransport(name string, buffer int) (Transport, <-chan Published, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Published, buffer)
	t := &channelTransport{
		callbackTransport: callbackTransport{name: name, enabled: true},
		ch:                ch,
		closed:            make(chan struct{}),
	}
	t.fn = t.send
	return t, ch, func() { t.close() }
}

type channelTransport struct {
	callbackTransport
	ch     chan Published
	closed chan struct{}
	once   sync.Once
}

func (t *channelTransport) send(topic string, payload []byte) error {
	select {
	case <-t.closed:
		return ErrChannelTransportClosed
	case t.ch <- Published{Topic: topic, Payload: payload}:
		return nil
	}
}

func (t *channelTransport) close() {
	t.once.Do(func() {
		close(t.closed)
		close(t.ch)
	})
}

var _ ports.Transport = (*callbackTransport)(nil)
