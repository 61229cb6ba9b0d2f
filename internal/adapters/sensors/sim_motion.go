package sensors

import (
	"math"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// RestingMotion reports a device sitting level: gravity on the vertical axis,
// nothing else.
type RestingMotion struct{}

func (RestingMotion) ReadMotion() (ports.MotionReading, error) {
	return ports.MotionReading{X: 0, Y: 0, Z: 1}, nil
}

// WaveMotion simulates periodic wrist movement: a sine sweep on the
// horizontal axes on top of gravity. Amplitude is in g; period is in reads.
type WaveMotion struct {
	amplitude float64
	period    int
	tick      int
}

func NewWaveMotion(amplitude float64, period int) *WaveMotion {
	if period <= 0 {
		period = 20
	}
	return &WaveMotion{amplitude: amplitude, period: period}
}

func (w *WaveMotion) ReadMotion() (ports.MotionReading, error) {
	phase := 2 * math.Pi * float64(w.tick) / float64(w.period)
	w.tick++
	return ports.MotionReading{
		X: w.amplitude * math.Sin(phase),
		Y: w.amplitude * math.Cos(phase),
		Z: 1,
	}, nil
}

var (
	_ ports.MotionReader = RestingMotion{}
	_ ports.MotionReader = (*WaveMotion)(nil)
)
