package sensors

import (
	"math"
	"testing"
)

func TestSimVitalsTriangleWave(t *testing.T) {
	sim := NewSimVitals(VitalsConfig{})

	// Ramp up until all three channels hit the upper targets.
	var reachedUpper bool
	for i := 0; i < 200; i++ {
		r, err := sim.ReadEnvironment()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if r.Temperature == sim.cfg.UpperTemperature &&
			r.Humidity == sim.cfg.UpperHumidity &&
			r.BPM == sim.cfg.UpperBPM {
			reachedUpper = true
			break
		}
	}
	if !reachedUpper {
		t.Fatal("simulation never reached the upper target set")
	}
	if sim.rising {
		t.Fatal("ramp direction should flip at the upper target")
	}

	// Next read must move down again.
	r, _ := sim.ReadEnvironment()
	if r.Temperature >= sim.cfg.UpperTemperature {
		t.Fatalf("temperature did not reverse: %f", r.Temperature)
	}

	// And eventually bottom out at the lower target set.
	var reachedLower bool
	for i := 0; i < 200; i++ {
		r, _ = sim.ReadEnvironment()
		if r.Temperature == sim.cfg.LowerTemperature &&
			r.Humidity == sim.cfg.LowerHumidity &&
			r.BPM == sim.cfg.LowerBPM {
			reachedLower = true
			break
		}
	}
	if !reachedLower {
		t.Fatal("simulation never reached the lower target set")
	}
}

func TestSimVitalsStepSizes(t *testing.T) {
	sim := NewSimVitals(VitalsConfig{})
	prev, _ := sim.ReadEnvironment()
	cur, _ := sim.ReadEnvironment()

	if d := math.Abs(cur.Temperature - prev.Temperature); d != sim.cfg.TemperatureStep {
		t.Fatalf("temperature step %f, want %f", d, sim.cfg.TemperatureStep)
	}
	if d := math.Abs(cur.Humidity - prev.Humidity); d != sim.cfg.HumidityStep {
		t.Fatalf("humidity step %f, want %f", d, sim.cfg.HumidityStep)
	}
	if d := math.Abs(cur.BPM - prev.BPM); d != sim.cfg.BPMStep {
		t.Fatalf("bpm step %f, want %f", d, sim.cfg.BPMStep)
	}
}

func TestWaveMotionStaysBounded(t *testing.T) {
	w := NewWaveMotion(0.8, 16)
	for i := 0; i < 64; i++ {
		r, err := w.ReadMotion()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if math.Abs(r.X) > 0.8 || math.Abs(r.Y) > 0.8 {
			t.Fatalf("horizontal acceleration out of range: %+v", r)
		}
		if r.Z != 1 {
			t.Fatalf("vertical axis should carry gravity, got %f", r.Z)
		}
	}
}
