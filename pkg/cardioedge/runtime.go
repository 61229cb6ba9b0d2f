package cardioedge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/mqtt"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/observability"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/ring"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/adapters/sensors"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/acquire"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/classify"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/console"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/dispatch"
	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	transport  ports.Transport
	buffer     ports.SampleBuffer
	env        ports.EnvironmentReader
	motion     ports.MotionReader
	obs        ports.Observability
	now        func() time.Time
	consoleOut io.Writer
}

// WithTransport injects a custom transport (callback, channel, alternative broker client).
func WithTransport(tr Transport) RuntimeOption {
	return func(o *runtimeOverrides) { o.transport = tr }
}

// WithBuffer swaps the offline ring for a caller-provided implementation.
func WithBuffer(b SampleBuffer) RuntimeOption {
	return func(o *runtimeOverrides) { o.buffer = b }
}

// WithEnvironmentReader injects a real sensor driver in place of the simulation.
func WithEnvironmentReader(r EnvironmentReader) RuntimeOption {
	return func(o *runtimeOverrides) { o.env = r }
}

// WithMotionReader injects a real accelerometer driver.
func WithMotionReader(r MotionReader) RuntimeOption {
	return func(o *runtimeOverrides) { o.motion = r }
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.obs = obs }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) RuntimeOption {
	return func(o *runtimeOverrides) { o.now = now }
}

// WithConsoleOutput redirects operator command replies (default os.Stdout).
func WithConsoleOutput(w io.Writer) RuntimeOption {
	return func(o *runtimeOverrides) { o.consoleOut = w }
}

// Runtime wires acquisition → classification → dispatch → buffer/transport
// and drives one tick per interval. All agent state is mutated on the Run
// goroutine: ticks and operator commands are serialized through one select
// loop, so the pipeline needs no further locking.
type Runtime struct {
	cfg        *Config
	obs        ports.Observability
	buffer     ports.SampleBuffer
	transport  ports.Transport
	acq        *acquire.Acquirer
	driver     *dispatch.Driver
	commands   chan console.Command
	consoleOut io.Writer
	metricsSrv *http.Server
}

// NewRuntime bootstraps the default adapters (MQTT session, ring buffer,
// simulated sensors, Prometheus observability). RuntimeOption values override
// any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var o runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	obs := o.obs
	if obs == nil {
		obs = observability.NewPromObs()
	}

	buffer := o.buffer
	if buffer == nil {
		buffer = ring.New(cfg.Policy.BufferCapacity)
	}

	transport := o.transport
	if transport == nil {
		session, err := mqtt.NewSession(cfg.MQTT, obs)
		if err != nil {
			return nil, err
		}
		transport = session
	}

	env := o.env
	if env == nil {
		if !cfg.Simulation.Enabled {
			return nil, fmt.Errorf("no environment reader: enable simulation or inject a sensor driver")
		}
		env = sensors.NewSimVitals(cfg.Simulation.Vitals)
	}

	motion := o.motion
	if motion == nil {
		if cfg.Simulation.Enabled && cfg.Simulation.MotionAmplitude > 0 {
			motion = sensors.NewWaveMotion(cfg.Simulation.MotionAmplitude, cfg.Simulation.MotionPeriod)
		} else {
			motion = sensors.RestingMotion{}
		}
	}

	acq := acquire.New(env, motion, acquire.Config{
		DeviceID:      cfg.DeviceID,
		MotionActiveG: cfg.Policy.MotionActiveG,
		RestingAfter:  cfg.Policy.RestingAfter,
		Now:           o.now,
	})

	driver := dispatch.New(acq, classify.New(cfg.Thresholds), buffer, transport, obs,
		cfg.MQTT.DataTopic, cfg.MQTT.AlertTopic, cfg.Policy.DrainPause)

	consoleOut := o.consoleOut
	if consoleOut == nil {
		consoleOut = os.Stdout
	}

	return &Runtime{
		cfg:        cfg,
		obs:        obs,
		buffer:     buffer,
		transport:  transport,
		acq:        acq,
		driver:     driver,
		commands:   make(chan console.Command, 8),
		consoleOut: consoleOut,
	}, nil
}

// Open is a shortcut: load the YAML config and build a runtime from it.
func Open(path string, opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewRuntime(cfg, opts...)
}

// Tick runs one acquire→classify→route pass. Exposed so hosts with their own
// scheduler can drive the agent instead of calling Run.
func (r *Runtime) Tick(ctx context.Context) {
	r.driver.Tick(ctx)
}

// Submit hands an operator command to the runtime; it is applied between
// ticks on the Run goroutine.
func (r *Runtime) Submit(cmd Command) {
	r.commands <- cmd
}

// Run starts the metrics endpoint and blocks driving the tick loop until the
// context is cancelled, then shuts down gracefully.
func (r *Runtime) Run(ctx context.Context) error {
	r.startMetrics()

	ticker := time.NewTicker(r.cfg.Policy.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return r.Shutdown(shutdownCtx)
		case cmd := <-r.commands:
			r.apply(cmd)
		case <-ticker.C:
			r.driver.Tick(ctx)
		}
	}
}

// Shutdown stops the metrics server and tears the transport down.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if err := r.transport.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Runtime) apply(cmd console.Command) {
	switch cmd.Kind {
	case console.KindSetBPM:
		if r.acq.SetManualBPM(cmd.BPM) {
			fmt.Fprintf(r.consoleOut, "manual bpm set to %d\n", cmd.BPM)
		} else {
			fmt.Fprintf(r.consoleOut, "error: bpm %d out of range %d..%d\n",
				cmd.BPM, acquire.MinManualBPM, acquire.MaxManualBPM)
		}
	case console.KindAuto:
		r.acq.ClearManualBPM()
		fmt.Fprintln(r.consoleOut, "heart rate back to automatic derivation")
	case console.KindWifiOn:
		r.transport.SetEnabled(true)
		fmt.Fprintln(r.consoleOut, "connectivity enabled")
	case console.KindWifiOff:
		r.transport.SetEnabled(false)
		fmt.Fprintln(r.consoleOut, "connectivity disabled")
	case console.KindStatus:
		fmt.Fprintln(r.consoleOut, r.status())
	case console.KindHelp:
		fmt.Fprintln(r.consoleOut, console.HelpText())
	}
}

func (r *Runtime) status() string {
	s := fmt.Sprintf("device: %s\ntransport: %s\nbuffer: %d/%d",
		r.cfg.DeviceID, r.transport.State(), r.buffer.Len(), r.buffer.Cap())
	if bpm, ok := r.acq.ManualBPM(); ok {
		s += fmt.Sprintf("\nbpm override: %d", bpm)
	} else {
		s += "\nbpm mode: auto"
	}
	if last := r.driver.Last(); last != nil {
		s += fmt.Sprintf("\nlast sample: t=%dms temp=%.1fC hum=%.1f%% bpm=%d move=%.2fg status=%s",
			last.Timestamp, last.Temperature, last.Humidity, last.BPM, last.Movement, last.Status)
	}
	return s
}

func (r *Runtime) startMetrics() {
	handler, ok := r.obs.(interface{ Handler() http.Handler })
	if !ok || r.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}
