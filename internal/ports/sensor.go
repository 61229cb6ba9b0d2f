package ports

// EnvReading is one raw environmental reading. BPM is NaN when the reader has
// no heart-rate channel (physical sensors); the simulated vitals reader fills
// it so the oscillation policy can exercise the bpm alert edges.
type EnvReading struct {
	Temperature float64
	Humidity    float64
	BPM         float64
}

// EnvironmentReader abstracts the temperature/humidity sensor driver. A
// reading of NaN on any channel means the sensor faulted transiently; the
// acquisition stage retains the last known value.
type EnvironmentReader interface {
	ReadEnvironment() (EnvReading, error)
}

// MotionReading is one three-axis acceleration reading in g.
type MotionReading struct {
	X, Y, Z float64
}

// MotionReader abstracts the accelerometer driver.
type MotionReader interface {
	ReadMotion() (MotionReading, error)
}
