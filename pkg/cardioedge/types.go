package cardioedge

import (
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/console"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// Sample is the telemetry snapshot published on the data topic. It mirrors
// internal/domain.Sample but is exported so embedders can reference it.
type Sample = domain.Sample

// Alert is the threshold-breach record published on the alert topic.
type Alert = domain.Alert

// Severity of an Alert.
type Severity = domain.Severity

const (
	SeverityWarning  = domain.SeverityWarning
	SeverityCritical = domain.SeverityCritical
)

// Transport is the publish session the dispatch driver relays through.
type Transport = ports.Transport

// TransportState tracks the connectivity lifecycle.
type TransportState = ports.TransportState

const (
	TransportDisabled     = ports.TransportDisabled
	TransportConnecting   = ports.TransportConnecting
	TransportConnected    = ports.TransportConnected
	TransportDisconnected = ports.TransportDisconnected
)

// SampleBuffer is the bounded offline ring absorbing samples while the
// transport is down.
type SampleBuffer = ports.SampleBuffer

// EnvironmentReader and MotionReader are the sensor driver boundaries.
type (
	EnvironmentReader = ports.EnvironmentReader
	MotionReader      = ports.MotionReader
	EnvReading        = ports.EnvReading
	MotionReading     = ports.MotionReading
)

// Observability emits metrics and logs about the dispatch loop.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Policy bundles cadence and buffering tunables.
type Policy = ports.Policy

// Command is one parsed operator instruction.
type Command = console.Command

// CommandKind discriminates operator commands.
type CommandKind = console.Kind

const (
	CommandSetBPM  = console.KindSetBPM
	CommandAuto    = console.KindAuto
	CommandWifiOn  = console.KindWifiOn
	CommandWifiOff = console.KindWifiOff
	CommandStatus  = console.KindStatus
	CommandHelp    = console.KindHelp
)

// ParseCommand parses one operator input line.
func ParseCommand(line string) (Command, error) {
	return console.Parse(line)
}
