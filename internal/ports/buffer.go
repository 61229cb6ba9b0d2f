package ports

import (
	"context"
	"time"
)

// SampleBuffer is the bounded in-memory buffer that absorbs serialized
// samples while the transport is down. Enqueue never fails: when the buffer
// is full the oldest entry is overwritten, so the buffer always holds the
// most recent Cap() samples.
type SampleBuffer interface {
	Enqueue(payload []byte)

	// Drain publishes buffered entries oldest-first, removing each only after
	// publish confirms success. It stops on the first publish failure, leaving
	// the remaining entries intact, and sleeps pause between publishes to
	// avoid overwhelming the transport. It returns the number of entries
	// published.
	Drain(ctx context.Context, publish func(payload []byte) error, pause time.Duration) (int, error)

	Len() int
	Cap() int
}
