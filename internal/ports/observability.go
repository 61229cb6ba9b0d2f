package ports

import "github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)

	// RecordDroppedAlert accounts for an alert raised while the transport was
	// down. Alerts are never buffered offline; this is the only trace they
	// leave.
	RecordDroppedAlert(a *domain.Alert)
}

type Field struct {
	Key   string
	Value any
}
