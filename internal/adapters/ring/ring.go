package ring

import (
	"context"
	"sync"
	"time"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// Buffer is a fixed-capacity ring of serialized samples over a preallocated
// slice. Write and read positions are indices modulo capacity; occupancy is
// tracked independently. When the buffer is full a new entry overwrites the
// slot at the write index and the read index advances in lockstep, so the
// buffer always holds the most recent capacity entries and never rejects a
// write.
//
// Enqueue and Drain are only ever called from the dispatch goroutine; the
// mutex guards concurrent readers (Len, Snapshot from the console and the
// metrics gauge loop).
type Buffer struct {
	mu          sync.Mutex
	slots       [][]byte
	readIdx     int
	writeIdx    int
	count       int
	overwritten uint64
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{slots: make([][]byte, capacity)}
}

// Enqueue stores one serialized sample. O(1), never fails.
func (b *Buffer) Enqueue(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.slots[b.writeIdx] = payload
	b.writeIdx = (b.writeIdx + 1) % len(b.slots)

	if b.count == len(b.slots) {
		// Full: the oldest entry was just overwritten.
		b.readIdx = b.writeIdx
		b.overwritten++
		return
	}
	b.count++
}

// Drain publishes entries oldest-first. An entry is removed only after
// publish confirms success; the first failure aborts the pass with the
// remaining entries intact. Once the buffer empties, both indices reset to
// zero.
func (b *Buffer) Drain(ctx context.Context, publish func(payload []byte) error, pause time.Duration) (int, error) {
	published := 0
	for {
		b.mu.Lock()
		if b.count == 0 {
			b.readIdx, b.writeIdx = 0, 0
			b.mu.Unlock()
			return published, nil
		}
		payload := b.slots[b.readIdx]
		b.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return published, err
		}
		if err := publish(payload); err != nil {
			return published, err
		}

		b.mu.Lock()
		b.slots[b.readIdx] = nil
		b.readIdx = (b.readIdx + 1) % len(b.slots)
		b.count--
		empty := b.count == 0
		if empty {
			b.readIdx, b.writeIdx = 0, 0
		}
		b.mu.Unlock()

		published++
		if empty {
			return published, nil
		}

		if pause > 0 {
			select {
			case <-ctx.Done():
				return published, ctx.Err()
			case <-time.After(pause):
			}
		}
	}
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Buffer) Cap() int {
	return len(b.slots)
}

// Overwritten returns how many entries have been lost to the
// overwrite-oldest policy since the buffer was created.
func (b *Buffer) Overwritten() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overwritten
}

// Snapshot returns a copy of the buffered payloads, oldest first.
func (b *Buffer) Snapshot() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([][]byte, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.slots[(b.readIdx+i)%len(b.slots)])
	}
	return out
}

var _ ports.SampleBuffer = (*Buffer)(nil)
