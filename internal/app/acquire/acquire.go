package acquire

import (
	"math"
	"time"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

const (
	restingBPM = 70
	minAutoBPM = 60
	maxAutoBPM = 150

	// Manual override bounds, shared with the operator console.
	MinManualBPM = 30
	MaxManualBPM = 200
)

// Config for the acquisition stage.
type Config struct {
	DeviceID      string
	MotionActiveG float64       // motion intensity above this counts as activity
	RestingAfter  time.Duration // idle time before the bpm ramps back to resting
	Now           func() time.Time
}

// Acquirer produces exactly one Sample per call. It owns the last-known
// sensor values (transient-fault fallback) and the heart-rate derivation
// state machine.
type Acquirer struct {
	env    ports.EnvironmentReader
	motion ports.MotionReader
	cfg    Config

	epoch time.Time

	lastTemp     float64
	lastHum      float64
	lastMotion   ports.MotionReading
	currentBPM   int
	manualBPM    int // 0 means no override
	lastMotionAt time.Time
}

func New(env ports.EnvironmentReader, motion ports.MotionReader, cfg Config) *Acquirer {
	if cfg.MotionActiveG <= 0 {
		cfg.MotionActiveG = 0.25
	}
	if cfg.RestingAfter <= 0 {
		cfg.RestingAfter = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now()
	return &Acquirer{
		env:          env,
		motion:       motion,
		cfg:          cfg,
		epoch:        now,
		lastTemp:     25.0,
		lastHum:      50.0,
		lastMotion:   ports.MotionReading{Z: 1},
		currentBPM:   restingBPM,
		lastMotionAt: now,
	}
}

// Sample reads both sensors and derives one immutable snapshot. Sensor faults
// are recovered locally by retaining the previous valid value; Sample itself
// never fails.
func (a *Acquirer) Sample(connected bool) *domain.Sample {
	now := a.cfg.Now()

	env, err := a.env.ReadEnvironment()
	if err == nil {
		if !math.IsNaN(env.Temperature) {
			a.lastTemp = env.Temperature
		}
		if !math.IsNaN(env.Humidity) {
			a.lastHum = env.Humidity
		}
	}

	if m, err := a.motion.ReadMotion(); err == nil {
		a.lastMotion = m
	}
	intensity := round2(magnitude(a.lastMotion))

	bpm := a.deriveBPM(env, err, intensity, now)

	mode := domain.HeartRateAuto
	if a.manualBPM > 0 {
		mode = domain.HeartRateManual
	}
	status := domain.StatusOffline
	if connected {
		status = domain.StatusOnline
	}

	return &domain.Sample{
		Timestamp:   now.Sub(a.epoch).Milliseconds(),
		Temperature: round1(a.lastTemp),
		Humidity:    round1(a.lastHum),
		BPM:         bpm,
		Movement:    intensity,
		DeviceID:    a.cfg.DeviceID,
		Status:      status,
		BPMMode:     mode,
	}
}

// deriveBPM resolves the heart rate for this tick. Precedence: manual
// override, then a simulated vitals channel when the reader provides one,
// then the motion-driven state machine.
func (a *Acquirer) deriveBPM(env ports.EnvReading, envErr error, intensity float64, now time.Time) int {
	if a.manualBPM > 0 {
		return a.manualBPM
	}

	if envErr == nil && !math.IsNaN(env.BPM) {
		a.currentBPM = clampInt(int(math.Round(env.BPM)), MinManualBPM, MaxManualBPM)
		return a.currentBPM
	}

	if intensity > a.cfg.MotionActiveG {
		a.lastMotionAt = now
		target := 70 + 30*intensity
		if target < minAutoBPM {
			target = minAutoBPM
		}
		if target > maxAutoBPM {
			target = maxAutoBPM
		}
		a.currentBPM = stepToward(a.currentBPM, int(math.Round(target)), 2)
	} else if now.Sub(a.lastMotionAt) >= a.cfg.RestingAfter {
		a.currentBPM = stepToward(a.currentBPM, restingBPM, 1)
	}
	return a.currentBPM
}

// SetManualBPM installs a sticky override. It reports whether the value was
// within the accepted range.
func (a *Acquirer) SetManualBPM(bpm int) bool {
	if bpm < MinManualBPM || bpm > MaxManualBPM {
		return false
	}
	a.manualBPM = bpm
	return true
}

// ClearManualBPM returns heart-rate derivation to automatic mode.
func (a *Acquirer) ClearManualBPM() {
	if a.manualBPM > 0 {
		a.currentBPM = a.manualBPM
	}
	a.manualBPM = 0
}

// ManualBPM reports the current override, if any.
func (a *Acquirer) ManualBPM() (int, bool) {
	return a.manualBPM, a.manualBPM > 0
}

// magnitude cancels gravity on the vertical axis for a device sitting level.
func magnitude(m ports.MotionReading) float64 {
	return math.Sqrt(m.X*m.X + m.Y*m.Y + (m.Z-1)*(m.Z-1))
}

func stepToward(cur, target, step int) int {
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
