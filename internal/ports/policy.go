package ports

import "time"

// Policy bundles the tunables that shape acquisition cadence, buffering, and
// drain behavior.
type Policy struct {
	// BufferCapacity is the fixed size of the offline ring buffer.
	BufferCapacity int `yaml:"buffer_capacity"`

	// TickInterval is the fixed cadence of the acquire→classify→route loop.
	TickInterval time.Duration `yaml:"tick_interval"`

	// DrainPause is the sleep between consecutive publishes while draining
	// the offline buffer.
	DrainPause time.Duration `yaml:"drain_pause"`

	// MotionActiveG is the motion-intensity threshold (g) above which the
	// heart-rate derivation considers the wearer active.
	MotionActiveG float64 `yaml:"motion_active_g"`

	// RestingAfter is how long without motion before the heart rate ramps
	// back toward its resting value.
	RestingAfter time.Duration `yaml:"resting_after"`
}
