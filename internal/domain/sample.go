package domain

// HeartRateMode tags how the bpm field of a Sample was produced.
type HeartRateMode string

const (
	HeartRateManual HeartRateMode = "manual"
	HeartRateAuto   HeartRateMode = "auto"
)

// Connectivity status reported on the data topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Sample is the canonical unit of telemetry: one timestamped bundle of
// derived sensor readings, produced once per dispatch tick and immutable
// thereafter.
type Sample struct {
	Timestamp   int64         `json:"timestamp"` // milliseconds since agent start
	Temperature float64       `json:"temperature"`
	Humidity    float64       `json:"humidity"`
	BPM         int           `json:"bpm"`
	Movement    float64       `json:"movement"`
	DeviceID    string        `json:"device_id"`
	Status      string        `json:"status"`
	BPMMode     HeartRateMode `json:"bpm_mode"`
}
