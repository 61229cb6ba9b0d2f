package cardioedge

import (
	"context"
	"io"
	"time"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/console"
	base "github.com/FIAP-IA2024/CARDIO-IOT-edge/pkg/cardioedge"
)

// Re-exported errors for convenience.
var (
	ErrTransportDisabled      = base.ErrTransportDisabled
	ErrChannelTransportClosed = base.ErrChannelTransportClosed
)

// Type aliases so consumers can import the repository root directly.
type (
	Config            = base.Config
	MQTTConfig        = base.MQTTConfig
	MetricsConfig     = base.MetricsConfig
	SimulationConfig  = base.SimulationConfig
	VitalsConfig      = base.VitalsConfig
	Thresholds        = base.Thresholds
	ThresholdRange    = base.ThresholdRange
	Policy            = base.Policy
	Runtime           = base.Runtime
	RuntimeOption     = base.RuntimeOption
	Sample            = base.Sample
	Alert             = base.Alert
	Severity          = base.Severity
	Transport         = base.Transport
	TransportState    = base.TransportState
	SampleBuffer      = base.SampleBuffer
	EnvironmentReader = base.EnvironmentReader
	MotionReader      = base.MotionReader
	EnvReading        = base.EnvReading
	MotionReading     = base.MotionReading
	Observability     = base.Observability
	Field             = base.Field
	Command           = base.Command
	CommandKind       = base.CommandKind
	Published         = base.Published
	PublishFunc       = base.PublishFunc
)

const (
	SeverityWarning  = base.SeverityWarning
	SeverityCritical = base.SeverityCritical

	TransportDisabled     = base.TransportDisabled
	TransportConnecting   = base.TransportConnecting
	TransportConnected    = base.TransportConnected
	TransportDisconnected = base.TransportDisconnected

	CommandSetBPM  = base.CommandSetBPM
	CommandAuto    = base.CommandAuto
	CommandWifiOn  = base.CommandWifiOn
	CommandWifiOff = base.CommandWifiOff
	CommandStatus  = base.CommandStatus
	CommandHelp    = base.CommandHelp
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime constructors.
func Open(path string, opts ...RuntimeOption) (*Runtime, error) {
	return base.Open(path, opts...)
}

func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

// Runtime options.
func WithTransport(tr Transport) RuntimeOption {
	return base.WithTransport(tr)
}

func WithBuffer(b SampleBuffer) RuntimeOption {
	return base.WithBuffer(b)
}

func WithEnvironmentReader(r EnvironmentReader) RuntimeOption {
	return base.WithEnvironmentReader(r)
}

func WithMotionReader(r MotionReader) RuntimeOption {
	return base.WithMotionReader(r)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithConsoleOutput(w io.Writer) RuntimeOption {
	return base.WithConsoleOutput(w)
}

func WithClock(now func() time.Time) RuntimeOption {
	return base.WithClock(now)
}

// Transport adapters.
func NewCallbackTransport(name string, fn PublishFunc) Transport {
	return base.NewCallbackTransport(name, fn)
}

func NewChannelTransport(name string, buffer int) (Transport, <-chan Published, func()) {
	return base.NewChannelTransport(name, buffer)
}

// Operator console.
func ParseCommand(line string) (Command, error) {
	return base.ParseCommand(line)
}

func ListenConsole(ctx context.Context, r io.Reader, w io.Writer) <-chan Command {
	return console.Listen(ctx, r, w)
}

func ConsoleHelp() string {
	return console.HelpText()
}
