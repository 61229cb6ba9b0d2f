package sensors

import (
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// Physically plausible absolute bounds. The oscillation clamps to these
// regardless of ramp direction.
const (
	minTemperature = -10.0
	maxTemperature = 50.0
	minHumidity    = 0.0
	maxHumidity    = 100.0
	minBPM         = 30.0
	maxBPM         = 200.0
)

// VitalsConfig drives the simulated environment/vitals reader. The upper
// targets sit above all alert thresholds and the lower targets below them,
// so the triangle wave exercises both alert edges repeatedly.
type VitalsConfig struct {
	StartTemperature float64 `yaml:"start_temperature"`
	StartHumidity    float64 `yaml:"start_humidity"`
	StartBPM         float64 `yaml:"start_bpm"`

	UpperTemperature float64 `yaml:"upper_temperature"`
	UpperHumidity    float64 `yaml:"upper_humidity"`
	UpperBPM         float64 `yaml:"upper_bpm"`

	LowerTemperature float64 `yaml:"lower_temperature"`
	LowerHumidity    float64 `yaml:"lower_humidity"`
	LowerBPM         float64 `yaml:"lower_bpm"`

	TemperatureStep float64 `yaml:"temperature_step"`
	HumidityStep    float64 `yaml:"humidity_step"`
	BPMStep         float64 `yaml:"bpm_step"`
}

func (c *VitalsConfig) ApplyDefaults() {
	if c.StartTemperature == 0 {
		c.StartTemperature = 25.0
	}
	if c.StartHumidity == 0 {
		c.StartHumidity = 55.0
	}
	if c.StartBPM == 0 {
		c.StartBPM = 72
	}
	if c.UpperTemperature == 0 {
		c.UpperTemperature = 39.5
	}
	if c.UpperHumidity == 0 {
		c.UpperHumidity = 85.0
	}
	if c.UpperBPM == 0 {
		c.UpperBPM = 130
	}
	if c.LowerTemperature == 0 {
		c.LowerTemperature = 14.0
	}
	if c.LowerHumidity == 0 {
		c.LowerHumidity = 40.0
	}
	if c.LowerBPM == 0 {
		c.LowerBPM = 45
	}
	if c.TemperatureStep == 0 {
		c.TemperatureStep = 0.5
	}
	if c.HumidityStep == 0 {
		c.HumidityStep = 1.5
	}
	if c.BPMStep == 0 {
		c.BPMStep = 2
	}
}

// SimVitals advances temperature, humidity, and heart rate linearly toward
// the current target extreme. When all three channels reach it, the target
// set flips and the ramp reverses: a continuous triangle wave.
type SimVitals struct {
	cfg    VitalsConfig
	temp   float64
	hum    float64
	bpm    float64
	rising bool
}

func NewSimVitals(cfg VitalsConfig) *SimVitals {
	cfg.ApplyDefaults()
	return &SimVitals{
		cfg:    cfg,
		temp:   cfg.StartTemperature,
		hum:    cfg.StartHumidity,
		bpm:    cfg.StartBPM,
		rising: true,
	}
}

func (s *SimVitals) ReadEnvironment() (ports.EnvReading, error) {
	tTarget, hTarget, bTarget := s.cfg.LowerTemperature, s.cfg.LowerHumidity, s.cfg.LowerBPM
	if s.rising {
		tTarget, hTarget, bTarget = s.cfg.UpperTemperature, s.cfg.UpperHumidity, s.cfg.UpperBPM
	}

	s.temp = clamp(stepToward(s.temp, tTarget, s.cfg.TemperatureStep), minTemperature, maxTemperature)
	s.hum = clamp(stepToward(s.hum, hTarget, s.cfg.HumidityStep), minHumidity, maxHumidity)
	s.bpm = clamp(stepToward(s.bpm, bTarget, s.cfg.BPMStep), minBPM, maxBPM)

	if s.temp == tTarget && s.hum == hTarget && s.bpm == bTarget {
		s.rising = !s.rising
	}

	return ports.EnvReading{Temperature: s.temp, Humidity: s.hum, BPM: s.bpm}, nil
}

func stepToward(cur, target, step float64) float64 {
	switch {
	case cur < target:
		cur += step
		if cur > target {
			cur = target
		}
	case cur > target:
		cur -= step
		if cur < target {
			cur = target
		}
	}
	return cur
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ ports.EnvironmentReader = (*SimVitals)(nil)
