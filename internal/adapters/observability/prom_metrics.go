package observability

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// Metric names recognized by PromObs.
const (
	MetricSamplesPublished  = "cardio_samples_published_total"
	MetricSamplesBuffered   = "cardio_samples_buffered_total"
	MetricBufferOverwritten = "cardio_buffer_overwritten_total"
	MetricAlertsPublished   = "cardio_alerts_published_total"
	MetricAlertsDropped     = "cardio_alerts_dropped_total"
	MetricPublishFailures   = "cardio_publish_failures_total"
	MetricBufferOccupancy   = "cardio_buffer_occupancy"
	MetricConnected         = "cardio_transport_connected"
	MetricBPM               = "cardio_bpm"
	MetricPublishLatency    = "cardio_publish_latency_seconds"
)

type PromObs struct {
	registry *prometheus.Registry
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSamplesPublished,
		Help: "Total samples published on the data topic, live or drained.",
	})
	buffered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSamplesBuffered,
		Help: "Total samples diverted into the offline buffer.",
	})
	overwritten := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricBufferOverwritten,
		Help: "Samples lost to the overwrite-oldest policy of the full buffer.",
	})
	alertsPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricAlertsPublished,
		Help: "Total alerts published on the alert topic.",
	})
	alertsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricAlertsDropped,
		Help: "Alerts raised while the transport was down. Alerts are never buffered.",
	})
	publishFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPublishFailures,
		Help: "Publish attempts rejected by the transport.",
	})
	occupancy := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricBufferOccupancy,
		Help: "Current number of samples in the offline buffer.",
	})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricConnected,
		Help: "1 while the transport session is connected.",
	})
	bpm := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricBPM,
		Help: "Heart rate of the most recent sample.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricPublishLatency,
		Help:    "Latency of individual publish calls.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(published, buffered, overwritten, alertsPublished,
		alertsDropped, publishFailures, occupancy, connected, bpm, latency)

	return &PromObs{
		registry: registry,
		counters: map[string]prometheus.Counter{
			MetricSamplesPublished:  published,
			MetricSamplesBuffered:   buffered,
			MetricBufferOverwritten: overwritten,
			MetricAlertsPublished:   alertsPublished,
			MetricAlertsDropped:     alertsDropped,
			MetricPublishFailures:   publishFailures,
		},
		gauges: map[string]prometheus.Gauge{
			MetricBufferOccupancy: occupancy,
			MetricConnected:       connected,
			MetricBPM:             bpm,
		},
		histos: map[string]prometheus.Observer{
			MetricPublishLatency: latency,
		},
	}
}

// Handler serves the /metrics endpoint for this instance's registry.
func (p *PromObs) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordDroppedAlert(a *domain.Alert) {
	p.IncCounter(MetricAlertsDropped, 1)
	if a != nil {
		log.Printf("WARN: alert dropped while offline: type=%s severity=%s", a.Type, a.Severity)
	}
}

func formatFields(fields []ports.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

var _ ports.Observability = (*PromObs)(nil)
