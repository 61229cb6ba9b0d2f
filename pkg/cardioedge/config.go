package cardioedge

import (
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/mqtt"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/sensors"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/classify"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/config"
)

// Config re-exports the root configuration struct so embedders can construct
// or modify it programmatically.
type Config = config.Config

type (
	// MQTTConfig holds broker connection and topic details.
	MQTTConfig = mqtt.Config
	// Thresholds are the fixed alert limits.
	Thresholds = classify.Limits
	// ThresholdRange is one inclusive min/max band.
	ThresholdRange = classify.Range
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// SimulationConfig enables the deterministic vitals oscillation.
	SimulationConfig = config.SimulationConfig
	// VitalsConfig shapes the simulated triangle wave.
	VitalsConfig = sensors.VitalsConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
