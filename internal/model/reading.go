package model

import (
	"strings"
	"time"
)

// RateTypeDescription classifies a metering channel by what it measures.
// Keep these values stable; they are written verbatim to the canonical CSV.
type RateTypeDescription string

const (
	RateTypeUsage RateTypeDescription = "Usage"
	RateTypeSolar RateTypeDescription = "Solar"
	RateTypeOther RateTypeDescription = "Other"
)

// RateTypeFromSuffix maps a NEM12 channel suffix to a rate type description.
// Import (consumption) channels start with E, export (solar feed-in)
// channels with B; everything else is treated as Other.
func RateTypeFromSuffix(suffix string) RateTypeDescription {
	switch {
	case strings.HasPrefix(suffix, "E"):
		return RateTypeUsage
	case strings.HasPrefix(suffix, "B"):
		return RateTypeSolar
	default:
		return RateTypeOther
	}
}

// MeterReading is one half-open interval observation for a metering channel.
// Readings are immutable once merged into the canonical dataset.
type MeterReading struct {
	AccountNumber     string
	NMI               string
	DeviceNumber      string
	DeviceType        string
	RegisterCode      string // "<device serial>#<channel suffix>", e.g. "12345#E1"
	RateType          RateTypeDescription
	StartTime         time.Time
	EndTime           time.Time // strictly after StartTime
	ProfileReadValue  float64   // kWh transferred during the interval
	RegisterReadValue float64
	QualityFlag       string
}

// ReadingKey is the dedup identity of a reading. At most one stored reading
// may exist per key; start times are compared at minute resolution.
type ReadingKey struct {
	NMI          string
	RegisterCode string
	StartMinute  time.Time
}

func (r MeterReading) Key() ReadingKey {
	return ReadingKey{
		NMI:          r.NMI,
		RegisterCode: r.RegisterCode,
		StartMinute:  r.StartTime.Truncate(time.Minute),
	}
}

// Quarter returns the calendar quarter (1..4) containing t.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
