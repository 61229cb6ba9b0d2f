package domain

// Severity of an Alert. Critical dominates warning when multiple thresholds
// trip on the same sample.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Threshold breach tags. Composite alerts join them with underscores in the
// order the channels are evaluated.
const (
	TagTempHigh     = "temp_high"
	TagTempLow      = "temp_low"
	TagBPMHigh      = "bpm_high"
	TagBPMLow       = "bpm_low"
	TagHumidityHigh = "humidity_high"
)

// Alert is a derived record signaling one or more threshold breaches in a
// Sample. It echoes the triggering sample's key fields so the alert topic is
// self-contained.
type Alert struct {
	Timestamp   int64    `json:"timestamp"`
	DeviceID    string   `json:"device_id"`
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Temperature float64  `json:"temperature"`
	Humidity    float64  `json:"humidity"`
	BPM         int      `json:"bpm"`
	Movement    float64  `json:"movement"`
}
