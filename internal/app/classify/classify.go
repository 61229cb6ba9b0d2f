package classify

import (
	"fmt"
	"strings"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/domain"
)

// Range is a static inclusive band; readings outside it trip an alert.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Limits are the fixed alert thresholds. Humidity carries a maximum only;
// there is no humidity_low alert.
type Limits struct {
	Temperature Range   `yaml:"temperature"`
	BPM         Range   `yaml:"bpm"`
	HumidityMax float64 `yaml:"humidity_max"`
}

func (l *Limits) ApplyDefaults() {
	if l.Temperature.Min == 0 && l.Temperature.Max == 0 {
		l.Temperature = Range{Min: 15.0, Max: 38.0}
	}
	if l.BPM.Min == 0 && l.BPM.Max == 0 {
		l.BPM = Range{Min: 50, Max: 120}
	}
	if l.HumidityMax == 0 {
		l.HumidityMax = 80.0
	}
}

func (l *Limits) Validate() error {
	if l.Temperature.Min >= l.Temperature.Max {
		return fmt.Errorf("temperature range inverted: %v", l.Temperature)
	}
	if l.BPM.Min >= l.BPM.Max {
		return fmt.Errorf("bpm range inverted: %v", l.BPM)
	}
	if l.HumidityMax <= 0 {
		return fmt.Errorf("humidity_max must be positive, got %v", l.HumidityMax)
	}
	return nil
}

// Classifier evaluates samples against the limits and yields at most one
// composite alert per sample.
type Classifier struct {
	limits Limits
}

func New(limits Limits) *Classifier {
	limits.ApplyDefaults()
	return &Classifier{limits: limits}
}

// Classify checks the channels in fixed order (temperature, heart rate,
// humidity). Temperature and heart-rate breaches are critical, a humidity
// breach is a warning; critical dominates when several channels trip at once.
// It returns nil when the sample is in range.
func (c *Classifier) Classify(s *domain.Sample) *domain.Alert {
	var (
		tags     []string
		messages []string
		severity = domain.SeverityWarning
	)

	switch {
	case s.Temperature > c.limits.Temperature.Max:
		tags = append(tags, domain.TagTempHigh)
		messages = append(messages, fmt.Sprintf("temperature %.1fC above limit %.1fC", s.Temperature, c.limits.Temperature.Max))
		severity = domain.SeverityCritical
	case s.Temperature < c.limits.Temperature.Min:
		tags = append(tags, domain.TagTempLow)
		messages = append(messages, fmt.Sprintf("temperature %.1fC below limit %.1fC", s.Temperature, c.limits.Temperature.Min))
		severity = domain.SeverityCritical
	}

	switch {
	case float64(s.BPM) > c.limits.BPM.Max:
		tags = append(tags, domain.TagBPMHigh)
		messages = append(messages, fmt.Sprintf("heart rate %d bpm above limit %.0f", s.BPM, c.limits.BPM.Max))
		severity = domain.SeverityCritical
	case float64(s.BPM) < c.limits.BPM.Min:
		tags = append(tags, domain.TagBPMLow)
		messages = append(messages, fmt.Sprintf("heart rate %d bpm below limit %.0f", s.BPM, c.limits.BPM.Min))
		severity = domain.SeverityCritical
	}

	if s.Humidity > c.limits.HumidityMax {
		tags = append(tags, domain.TagHumidityHigh)
		messages = append(messages, fmt.Sprintf("humidity %.1f%% above limit %.1f%%", s.Humidity, c.limits.HumidityMax))
	}

	if len(tags) == 0 {
		return nil
	}

	return &domain.Alert{
		Timestamp:   s.Timestamp,
		DeviceID:    s.DeviceID,
		Type:        strings.Join(tags, "_"),
		Message:     strings.Join(messages, " | "),
		Severity:    severity,
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		BPM:         s.BPM,
		Movement:    s.Movement,
	}
}
