// Package vitals classifies vital-sign readings into severity tiers and
// computes per-channel trends against a previous reading.
package vitals

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
)

// Channel names one vital sign.
type Channel string

const (
	Temperature      Channel = "temperature"
	BloodPressure    Channel = "bloodPressure"
	HeartRate        Channel = "heartRate"
	RespiratoryRate  Channel = "respiratoryRate"
	OxygenSaturation Channel = "oxygenSaturation"
	Height           Channel = "height"
	Weight           Channel = "weight"
	BMI              Channel = "bmi"
)

// Channels lists every channel in classification order.
var Channels = []Channel{
	Temperature, BloodPressure, HeartRate, RespiratoryRate,
	OxygenSaturation, Height, Weight, BMI,
}

// Severity is the clinical tier of a value.
type Severity string

const (
	Normal   Severity = "Normal"
	Caution  Severity = "Caution"
	Critical Severity = "Critical"
)

func (s Severity) rank() int {
	switch s {
	case Caution:
		return 1
	case Critical:
		return 2
	}
	return 0
}

// Trend is the direction of change since the previous reading.
type Trend string

const (
	Up      Trend = "Up"
	Down    Trend = "Down"
	Flat    Trend = "Flat"
	Unknown Trend = "Unknown"
)

// Classification is the result for one channel.
type Classification struct {
	Severity Severity `json:"severity"`
	Trend    Trend    `json:"trend"`
}

// Result maps each channel present in the reading to its classification.
type Result map[Channel]Classification

// Worst returns the highest severity in the result, Normal when empty.
func (r Result) Worst() Severity {
	worst := Normal
	for _, c := range r {
		if c.Severity.rank() > worst.rank() {
			worst = c.Severity
		}
	}
	return worst
}

// Measurement is a scalar with its unit.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// BloodPressureReading holds a systolic/diastolic pair.
type BloodPressureReading struct {
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
	Unit      string  `json:"unit,omitempty"`
}

// Reading is one set of vital signs. Absent channels are nil.
type Reading struct {
	ID               string                `json:"id,omitempty"`
	PatientID        string                `json:"patientId"`
	RecordedAt       time.Time             `json:"recordedAt"`
	RecordedBy       *r4.Reference         `json:"recordedBy,omitempty"`
	Temperature      *Measurement          `json:"temperature,omitempty"`
	BloodPressure    *BloodPressureReading `json:"bloodPressure,omitempty"`
	HeartRate        *Measurement          `json:"heartRate,omitempty"`
	RespiratoryRate  *Measurement          `json:"respiratoryRate,omitempty"`
	OxygenSaturation *Measurement          `json:"oxygenSaturation,omitempty"`
	Height           *Measurement          `json:"height,omitempty"`
	Weight           *Measurement          `json:"weight,omitempty"`
	BMI              *float64              `json:"bmi,omitempty"`
	Notes            string                `json:"notes,omitempty"`
}

// NewReading returns an empty reading with a generated id.
func NewReading(patientID string, recordedAt time.Time) Reading {
	return Reading{ID: uuid.NewString(), PatientID: patientID, RecordedAt: recordedAt}
}

// Value returns the primary scalar of ch: systolic for blood pressure and
// degrees Celsius for temperature. ok is false when the channel is absent or
// its value is not finite.
func (r *Reading) Value(ch Channel) (v float64, ok bool) {
	if r == nil {
		return 0, false
	}
	switch ch {
	case Temperature:
		if r.Temperature == nil {
			return 0, false
		}
		v = toCelsius(r.Temperature.Value, r.Temperature.Unit)
	case BloodPressure:
		if r.BloodPressure == nil {
			return 0, false
		}
		v = r.BloodPressure.Systolic
	case HeartRate:
		return finite(r.HeartRate)
	case RespiratoryRate:
		return finite(r.RespiratoryRate)
	case OxygenSaturation:
		return finite(r.OxygenSaturation)
	case Height:
		return finite(r.Height)
	case Weight:
		return finite(r.Weight)
	case BMI:
		if r.BMI == nil {
			return 0, false
		}
		v = *r.BMI
	default:
		return 0, false
	}
	return v, isFinite(v)
}

func finite(m *Measurement) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return m.Value, isFinite(m.Value)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Classify classifies every channel present in reading with the default
// classifier. previous may be nil.
func Classify(reading Reading, previous *Reading) Result {
	return defaultClassifier.Classify(reading, previous)
}

func trend(current float64, previous float64, hasPrevious bool) Trend {
	switch {
	case !hasPrevious:
		return Unknown
	case current > previous:
		return Up
	case current < previous:
		return Down
	}
	return Flat
}
