package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/observability"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/acquire"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/classify"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// Driver runs one acquire → classify → route pass per tick. It is
// level-triggered: connectivity is re-evaluated fresh on every tick, and the
// offline buffer is drained opportunistically whenever the transport is up.
// All state mutation happens on the single goroutine that calls Tick.
type Driver struct {
	acq *acquire.Acquirer
	cls *classify.Classifier
	buf ports.SampleBuffer
	tr  ports.Transport
	obs ports.Observability

	dataTopic  string
	alertTopic string
	drainPause time.Duration

	lastOverwritten uint64

	mu   sync.Mutex
	last *domain.Sample
}

func New(acq *acquire.Acquirer, cls *classify.Classifier, buf ports.SampleBuffer,
	tr ports.Transport, obs ports.Observability, dataTopic, alertTopic string,
	drainPause time.Duration) *Driver {
	return &Driver{
		acq:        acq,
		cls:        cls,
		buf:        buf,
		tr:         tr,
		obs:        obs,
		dataTopic:  dataTopic,
		alertTopic: alertTopic,
		drainPause: drainPause,
	}
}

// Tick executes one dispatch pass. Nothing in here is fatal: a transport
// failure routes the sample into the buffer and the pass completes.
func (d *Driver) Tick(ctx context.Context) {
	connected := d.tr.EnsureConnected(ctx)

	sample := d.acq.Sample(connected)
	alert := d.cls.Classify(sample)

	payload, err := json.Marshal(sample)
	if err != nil {
		// Sample is a plain value type; this cannot happen in practice.
		d.obs.LogError("sample_marshal_failed", err)
		return
	}

	if connected {
		d.dispatchOnline(ctx, payload, alert)
	} else {
		d.buf.Enqueue(payload)
		d.obs.IncCounter(observability.MetricSamplesBuffered, 1)
		if alert != nil {
			d.obs.RecordDroppedAlert(alert)
		}
	}

	d.mu.Lock()
	d.last = sample
	d.mu.Unlock()

	if ow, ok := d.buf.(interface{ Overwritten() uint64 }); ok {
		if n := ow.Overwritten(); n > d.lastOverwritten {
			d.obs.IncCounter(observability.MetricBufferOverwritten, float64(n-d.lastOverwritten))
			d.lastOverwritten = n
		}
	}

	d.obs.SetGauge(observability.MetricBufferOccupancy, float64(d.buf.Len()))
	d.obs.SetGauge(observability.MetricBPM, float64(sample.BPM))
	d.obs.SetGauge(observability.MetricConnected, boolGauge(d.tr.Connected()))
}

func (d *Driver) dispatchOnline(ctx context.Context, payload []byte, alert *domain.Alert) {
	start := time.Now()
	if err := d.tr.Publish(ctx, d.dataTopic, payload); err != nil {
		// The live sample is not lost: it joins the buffer and the drain is
		// skipped, since the transport is evidently failing.
		d.obs.LogError("sample_publish_failed", err)
		d.obs.IncCounter(observability.MetricPublishFailures, 1)
		d.buf.Enqueue(payload)
		d.obs.IncCounter(observability.MetricSamplesBuffered, 1)
		if alert != nil {
			d.obs.RecordDroppedAlert(alert)
		}
		return
	}
	d.obs.ObserveLatency(observability.MetricPublishLatency, time.Since(start).Seconds())
	d.obs.IncCounter(observability.MetricSamplesPublished, 1)

	if alert != nil {
		d.publishAlert(ctx, alert)
	}

	d.drain(ctx)
}

func (d *Driver) publishAlert(ctx context.Context, alert *domain.Alert) {
	body, err := json.Marshal(alert)
	if err != nil {
		d.obs.LogError("alert_marshal_failed", err)
		return
	}
	if err := d.tr.Publish(ctx, d.alertTopic, body); err != nil {
		// Alerts are never buffered; a failed publish drops the alert.
		d.obs.LogError("alert_publish_failed", err)
		d.obs.IncCounter(observability.MetricPublishFailures, 1)
		d.obs.RecordDroppedAlert(alert)
		return
	}
	d.obs.IncCounter(observability.MetricAlertsPublished, 1)
}

func (d *Driver) drain(ctx context.Context) {
	if d.buf.Len() == 0 {
		return
	}
	pending := d.buf.Len()
	drained, err := d.buf.Drain(ctx, func(p []byte) error {
		return d.tr.Publish(ctx, d.dataTopic, p)
	}, d.drainPause)
	if drained > 0 {
		d.obs.IncCounter(observability.MetricSamplesPublished, float64(drained))
	}
	if err != nil {
		d.obs.IncCounter(observability.MetricPublishFailures, 1)
		d.obs.LogError("drain_aborted", err,
			ports.Field{Key: "drained", Value: drained},
			ports.Field{Key: "remaining", Value: pending - drained})
		return
	}
	if drained > 0 {
		d.obs.LogInfo("buffer_drained", ports.Field{Key: "samples", Value: drained})
	}
}

// Last returns the most recent sample, for the operator status command.
func (d *Driver) Last() *domain.Sample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// BufferLen reports the offline buffer occupancy.
func (d *Driver) BufferLen() int { return d.buf.Len() }

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
