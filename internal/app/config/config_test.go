package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
device_id: ward-7-bed-3
mqtt:
  host: broker.local
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.DeviceID != "ward-7-bed-3" {
		t.Fatalf("device id %q", cfg.DeviceID)
	}
	if cfg.Policy.BufferCapacity != 100 {
		t.Fatalf("expected buffer capacity default 100, got %d", cfg.Policy.BufferCapacity)
	}
	if cfg.Policy.TickInterval != time.Second {
		t.Fatalf("expected tick interval default 1s, got %s", cfg.Policy.TickInterval)
	}
	if cfg.Policy.DrainPause != 100*time.Millisecond {
		t.Fatalf("expected drain pause default 100ms, got %s", cfg.Policy.DrainPause)
	}
	if cfg.Thresholds.Temperature.Max != 38.0 {
		t.Fatalf("expected temperature max default 38.0, got %f", cfg.Thresholds.Temperature.Max)
	}
	if cfg.MQTT.Host != "broker.local" || cfg.MQTT.Port != 1883 {
		t.Fatalf("mqtt defaults not applied: %+v", cfg.MQTT)
	}
	if cfg.MQTT.DataTopic != "cardio/data" || cfg.MQTT.AlertTopic != "cardio/alerts" {
		t.Fatalf("topic defaults not applied: %+v", cfg.MQTT)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("expected default metrics addr :9100, got %s", cfg.Metrics.Addr)
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	path := writeConfig(t, `
policy:
  buffer_capacity: -5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected negative buffer capacity to fail validation")
	}

	// Durations unmarshal as nanoseconds; 5000000ns = 5ms, below the floor.
	path = writeConfig(t, `
policy:
  tick_interval: 5000000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected sub-10ms tick interval to fail validation")
	}
}

func TestLoadRejectsBadThresholds(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  temperature:
    min: 40
    max: 38
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected inverted temperature range to fail validation")
	}
}

func TestLoadParsesSimulation(t *testing.T) {
	path := writeConfig(t, `
simulation:
  enabled: true
  motion_amplitude: 0.5
  vitals:
    upper_temperature: 41.0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Simulation.Enabled {
		t.Fatal("simulation should be enabled")
	}
	if cfg.Simulation.Vitals.UpperTemperature != 41.0 {
		t.Fatalf("vitals override lost: %f", cfg.Simulation.Vitals.UpperTemperature)
	}
	if cfg.Simulation.Vitals.LowerTemperature != 14.0 {
		t.Fatalf("vitals defaults not applied: %f", cfg.Simulation.Vitals.LowerTemperature)
	}
	if cfg.Simulation.MotionPeriod != 20 {
		t.Fatalf("motion period default not applied: %d", cfg.Simulation.MotionPeriod)
	}
}
