package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// ErrNotConnected is returned by Publish while the session is down. The
// dispatch driver treats it as a routing signal, not a fault.
var ErrNotConnected = errors.New("mqtt: session not connected")

// Config captures the runtime details required to open an MQTT session.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`

	DataTopic  string `yaml:"data_topic"`
	AlertTopic string `yaml:"alert_topic"`
	QoS        byte   `yaml:"qos"`

	// Enabled is the boot-time connectivity enablement; the operator toggles
	// it at runtime with "wifi on" / "wifi off".
	Enabled bool `yaml:"enabled"`

	RetryInterval  time.Duration `yaml:"retry_interval"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	KeepAlive      uint16        `yaml:"keep_alive"`
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 1883
	}
	if c.ClientID == "" {
		c.ClientID = "cardio-" + uuid.NewString()[:8]
	}
	if c.DataTopic == "" {
		c.DataTopic = "cardio/data"
	}
	if c.AlertTopic == "" {
		c.AlertTopic = "cardio/alerts"
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 5 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = 30
	}
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.QoS > 1 {
		return fmt.Errorf("qos %d not supported, use 0 or 1", c.QoS)
	}
	if c.DataTopic == c.AlertTopic {
		return errors.New("data_topic and alert_topic must differ")
	}
	return nil
}

// Session is an MQTT v5 publish session with operator-level enablement and
// rate-limited reconnection. State machine: disabled → connecting → connected
// → disconnected → connecting…  The session owns its retry timing; the
// dispatch driver only observes the connected boolean.
type Session struct {
	cfg Config
	obs ports.Observability

	mu          sync.Mutex
	client      *paho.Client
	conn        net.Conn
	state       ports.TransportState
	enabled     bool
	lastAttempt time.Time
}

func NewSession(cfg Config, obs ports.Observability) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{cfg: cfg, obs: obs, state: ports.TransportDisabled}
	if cfg.Enabled {
		s.enabled = true
		s.state = ports.TransportDisconnected
	}
	return s, nil
}

// Topics returns the configured data and alert topics.
func (s *Session) Topics() (data, alert string) {
	return s.cfg.DataTopic, s.cfg.AlertTopic
}

func (s *Session) EnsureConnected(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return false
	}
	if s.state == ports.TransportConnected {
		return true
	}
	if !s.lastAttempt.IsZero() && time.Since(s.lastAttempt) < s.cfg.RetryInterval {
		return false
	}

	s.lastAttempt = time.Now()
	s.state = ports.TransportConnecting
	if err := s.connectLocked(ctx); err != nil {
		s.state = ports.TransportDisconnected
		s.obs.LogError("mqtt_connect_failed", err,
			ports.Field{Key: "broker", Value: fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)})
		return false
	}
	s.state = ports.TransportConnected
	s.obs.LogInfo("mqtt_connected",
		ports.Field{Key: "broker", Value: fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)},
		ports.Field{Key: "client_id", Value: s.cfg.ClientID})
	return true
}

func (s *Session) connectLocked(ctx context.Context) error {
	dctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dctx, "tcp", fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID:           s.cfg.ClientID,
		Conn:               conn,
		OnClientError:      func(err error) { s.markDisconnected(err) },
		OnServerDisconnect: func(d *paho.Disconnect) { s.markDisconnected(fmt.Errorf("server disconnect, reason %d", d.ReasonCode)) },
	})

	cp := &paho.Connect{
		ClientID:   s.cfg.ClientID,
		KeepAlive:  s.cfg.KeepAlive,
		CleanStart: true,
	}
	if s.cfg.Username != "" {
		cp.UsernameFlag = true
		cp.Username = s.cfg.Username
		cp.PasswordFlag = true
		cp.Password = []byte(s.cfg.Password)
	}

	connack, err := client.Connect(dctx, cp)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mqtt connect: %w", err)
	}
	if connack.ReasonCode != 0 {
		_ = conn.Close()
		return fmt.Errorf("mqtt connect rejected: reason %d", connack.ReasonCode)
	}

	s.client = client
	s.conn = conn
	return nil
}

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == ports.TransportConnected
}

func (s *Session) Publish(ctx context.Context, topic string, payload []byte) error {
	s.mu.Lock()
	client := s.client
	connected := s.state == ports.TransportConnected
	s.mu.Unlock()

	if !connected || client == nil {
		return ErrNotConnected
	}

	_, err := client.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     s.cfg.QoS,
		Payload: payload,
	})
	if err != nil {
		s.markDisconnected(err)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled == s.enabled {
		return
	}
	s.enabled = enabled
	if enabled {
		s.state = ports.TransportDisconnected
		s.lastAttempt = time.Time{} // connect on the next tick
		return
	}
	s.teardownLocked()
	s.state = ports.TransportDisabled
}

func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Session) State() ports.TransportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.enabled = false
	s.state = ports.TransportDisabled
	return nil
}

// markDisconnected is called from paho callbacks and failed publishes; the
// session reconnects on a later tick once the retry interval elapses.
func (s *Session) markDisconnected(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != ports.TransportConnected {
		return
	}
	s.client = nil
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.state = ports.TransportDisconnected
	s.obs.LogError("mqtt_session_lost", err)
}

func (s *Session) teardownLocked() {
	if s.client != nil {
		_ = s.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
		s.client = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

var _ ports.Transport = (*Session)(nil)
