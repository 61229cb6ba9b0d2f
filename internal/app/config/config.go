package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/mqtt"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/sensors"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/classify"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

type Config struct {
	DeviceID   string           `yaml:"device_id"`
	Policy     ports.Policy     `yaml:"policy"`
	Thresholds classify.Limits  `yaml:"thresholds"`
	MQTT       mqtt.Config      `yaml:"mqtt"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Simulation SimulationConfig `yaml:"simulation"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// SimulationConfig enables the deterministic vitals oscillation in place of
// the physical environment sensor.
type SimulationConfig struct {
	Enabled bool                 `yaml:"enabled"`
	Vitals  sensors.VitalsConfig `yaml:"vitals"`

	// MotionAmplitude and MotionPeriod shape the simulated wrist movement.
	// Amplitude 0 simulates a device at rest.
	MotionAmplitude float64 `yaml:"motion_amplitude"`
	MotionPeriod    int     `yaml:"motion_period"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DeviceID == "" {
		c.DeviceID = "cardio-01"
	}
	if c.Policy.BufferCapacity == 0 {
		c.Policy.BufferCapacity = 100
	}
	if c.Policy.TickInterval == 0 {
		c.Policy.TickInterval = time.Second
	}
	if c.Policy.DrainPause == 0 {
		c.Policy.DrainPause = 100 * time.Millisecond
	}
	if c.Policy.MotionActiveG == 0 {
		c.Policy.MotionActiveG = 0.25
	}
	if c.Policy.RestingAfter == 0 {
		c.Policy.RestingAfter = 10 * time.Second
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Simulation.MotionPeriod == 0 {
		c.Simulation.MotionPeriod = 20
	}

	c.Thresholds.ApplyDefaults()
	c.MQTT.ApplyDefaults()
	c.Simulation.Vitals.ApplyDefaults()
}

func (c *Config) validate() error {
	if c.Policy.BufferCapacity < 1 {
		return fmt.Errorf("policy.buffer_capacity must be at least 1, got %d", c.Policy.BufferCapacity)
	}
	if c.Policy.TickInterval < 10*time.Millisecond {
		return fmt.Errorf("policy.tick_interval %s is below the 10ms floor", c.Policy.TickInterval)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt config: %w", err)
	}
	return nil
}
