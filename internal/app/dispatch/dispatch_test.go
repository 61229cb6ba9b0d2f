package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/observability"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/ring"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/acquire"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/classify"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

type fakeTransport struct {
	connected  bool
	failAfter  int // fail publishes once this many have succeeded; -1 = never
	published  []publishCall
	dropReason error
}

type publishCall struct {
	topic   string
	payload []byte
}

func newFakeTransport(connected bool) *fakeTransport {
	return &fakeTransport{connected: connected, failAfter: -1, dropReason: errors.New("broker down")}
}

func (f *fakeTransport) EnsureConnected(ctx context.Context) bool { return f.connected }
func (f *fakeTransport) Connected() bool                          { return f.connected }
func (f *fakeTransport) SetEnabled(enabled bool)                  { f.connected = enabled }
func (f *fakeTransport) Enabled() bool                            { return f.connected }
func (f *fakeTransport) Close(ctx context.Context) error          { return nil }

func (f *fakeTransport) State() ports.TransportState {
	if f.connected {
		return ports.TransportConnected
	}
	return ports.TransportDisconnected
}

func (f *fakeTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	if !f.connected {
		return f.dropReason
	}
	if f.failAfter >= 0 && len(f.published) >= f.failAfter {
		return f.dropReason
	}
	f.published = append(f.published, publishCall{topic: topic, payload: payload})
	return nil
}

type recordingObs struct {
	counters      map[string]float64
	droppedAlerts int
}

func newRecordingObs() *recordingObs { return &recordingObs{counters: map[string]float64{}} }

func (r *recordingObs) LogInfo(string, ...ports.Field)         {}
func (r *recordingObs) LogError(string, error, ...ports.Field) {}
func (r *recordingObs) IncCounter(name string, v float64)      { r.counters[name] += v }
func (r *recordingObs) ObserveLatency(string, float64)         {}
func (r *recordingObs) SetGauge(string, float64)               {}
func (r *recordingObs) RecordDroppedAlert(*domain.Alert)       { r.droppedAlerts++ }

type scriptedEnv struct {
	readings []ports.EnvReading
	i        int
}

func (s *scriptedEnv) ReadEnvironment() (ports.EnvReading, error) {
	r := s.readings[s.i]
	if s.i < len(s.readings)-1 {
		s.i++
	}
	return r, nil
}

type stillMotion struct{}

func (stillMotion) ReadMotion() (ports.MotionReading, error) {
	return ports.MotionReading{Z: 1}, nil
}

func reading(temp, hum float64) ports.EnvReading {
	return ports.EnvReading{Temperature: temp, Humidity: hum, BPM: math.NaN()}
}

func newDriver(tr ports.Transport, obs ports.Observability, env *scriptedEnv, capacity int) *Driver {
	clock := time.Unix(0, 0)
	acq := acquire.New(env, stillMotion{}, acquire.Config{
		DeviceID: "cardio-01",
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	return New(acq, classify.New(classify.Limits{}), ring.New(capacity), tr, obs,
		"cardio/data", "cardio/alerts", 0)
}

func TestTickPublishesWhenConnected(t *testing.T) {
	tr := newFakeTransport(true)
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: []ports.EnvReading{reading(25, 50)}}, 10)

	d.Tick(context.Background())

	if len(tr.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(tr.published))
	}
	if tr.published[0].topic != "cardio/data" {
		t.Fatalf("topic %q", tr.published[0].topic)
	}

	var s domain.Sample
	if err := json.Unmarshal(tr.published[0].payload, &s); err != nil {
		t.Fatalf("unmarshal published sample: %v", err)
	}
	if s.Status != domain.StatusOnline || s.DeviceID != "cardio-01" {
		t.Fatalf("unexpected sample on the wire: %+v", s)
	}
	if d.BufferLen() != 0 {
		t.Fatalf("nothing should be buffered, got %d", d.BufferLen())
	}
}

func TestTickBuffersWhenDisconnected(t *testing.T) {
	tr := newFakeTransport(false)
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: []ports.EnvReading{reading(25, 50)}}, 10)

	for i := 0; i < 3; i++ {
		d.Tick(context.Background())
	}

	if len(tr.published) != 0 {
		t.Fatalf("no publishes expected offline, got %d", len(tr.published))
	}
	if d.BufferLen() != 3 {
		t.Fatalf("buffer occupancy %d, want 3", d.BufferLen())
	}
	if s := d.Last(); s == nil || s.Status != domain.StatusOffline {
		t.Fatalf("last sample should be offline: %+v", s)
	}
}

func TestTickDrainsBufferOnReconnect(t *testing.T) {
	tr := newFakeTransport(false)
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: []ports.EnvReading{reading(25, 50)}}, 10)

	for i := 0; i < 4; i++ {
		d.Tick(context.Background())
	}

	tr.connected = true
	d.Tick(context.Background())

	// One live sample plus four drained, all on the data topic, FIFO.
	if len(tr.published) != 5 {
		t.Fatalf("expected 5 publishes, got %d", len(tr.published))
	}
	if d.BufferLen() != 0 {
		t.Fatalf("buffer should be empty, got %d", d.BufferLen())
	}

	var prev int64 = -1
	for _, p := range tr.published[1:] {
		var s domain.Sample
		if err := json.Unmarshal(p.payload, &s); err != nil {
			t.Fatalf("unmarshal drained sample: %v", err)
		}
		if s.Timestamp <= prev {
			t.Fatalf("drain out of order: %d after %d", s.Timestamp, prev)
		}
		prev = s.Timestamp
	}
}

func TestTickDrainAbortPreservesRemainder(t *testing.T) {
	tr := newFakeTransport(false)
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: []ports.EnvReading{reading(25, 50)}}, 10)

	for i := 0; i < 5; i++ {
		d.Tick(context.Background())
	}

	// Live publish plus two drained entries succeed, then the broker fails.
	tr.connected = true
	tr.failAfter = 3
	d.Tick(context.Background())

	if len(tr.published) != 3 {
		t.Fatalf("expected 3 publishes before failure, got %d", len(tr.published))
	}
	if d.BufferLen() != 3 {
		t.Fatalf("remaining buffer %d, want 3", d.BufferLen())
	}
}

func TestAlertPublishedOnlineOnly(t *testing.T) {
	hot := []ports.EnvReading{reading(39.5, 50)} // above the 38.0 limit

	tr := newFakeTransport(true)
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: hot}, 10)
	d.Tick(context.Background())

	var alertSeen bool
	for _, p := range tr.published {
		if p.topic == "cardio/alerts" {
			alertSeen = true
			var a domain.Alert
			if err := json.Unmarshal(p.payload, &a); err != nil {
				t.Fatalf("unmarshal alert: %v", err)
			}
			if a.Type != domain.TagTempHigh || a.Severity != domain.SeverityCritical {
				t.Fatalf("unexpected alert: %+v", a)
			}
		}
	}
	if !alertSeen {
		t.Fatal("expected an alert on the alert topic")
	}
	if obs.droppedAlerts != 0 {
		t.Fatalf("no drops expected online, got %d", obs.droppedAlerts)
	}

	// Same breach while offline: sample buffered, alert silently dropped.
	tr2 := newFakeTransport(false)
	obs2 := newRecordingObs()
	d2 := newDriver(tr2, obs2, &scriptedEnv{readings: hot}, 10)
	d2.Tick(context.Background())

	if obs2.droppedAlerts != 1 {
		t.Fatalf("offline alert must be dropped and counted, got %d", obs2.droppedAlerts)
	}
	if d2.BufferLen() != 1 {
		t.Fatalf("sample must still be buffered, got %d", d2.BufferLen())
	}
}

func TestOverflowIsCounted(t *testing.T) {
	tr := newFakeTransport(false)
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: []ports.EnvReading{reading(25, 50)}}, 3)

	for i := 0; i < 5; i++ {
		d.Tick(context.Background())
	}

	if d.BufferLen() != 3 {
		t.Fatalf("buffer should cap at 3, got %d", d.BufferLen())
	}
	if got := obs.counters[observability.MetricBufferOverwritten]; got != 2 {
		t.Fatalf("overwritten counter %v, want 2", got)
	}
}

func TestLivePublishFailureFallsBackToBuffer(t *testing.T) {
	tr := newFakeTransport(true)
	tr.failAfter = 0 // every publish fails while "connected"
	obs := newRecordingObs()
	d := newDriver(tr, obs, &scriptedEnv{readings: []ports.EnvReading{reading(25, 50)}}, 10)

	d.Tick(context.Background())

	if d.BufferLen() != 1 {
		t.Fatalf("failed live publish must enqueue the sample, got %d buffered", d.BufferLen())
	}
}
