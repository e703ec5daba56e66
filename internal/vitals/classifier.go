package vitals

import (
	"strings"

	"github.com/shopspring/decimal"
)

var defaultClassifier = NewClassifier()

// Classifier classifies readings. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	derivedBMI bool
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithDerivedBMI computes BMI from height and weight when a reading carries
// no BMI of its own.
func WithDerivedBMI() ClassifierOption {
	return func(c *Classifier) { c.derivedBMI = true }
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns a classification for every channel present in reading.
// previous may be nil, in which case every trend is Unknown.
func (c *Classifier) Classify(reading Reading, previous *Reading) Result {
	result := make(Result)
	for _, ch := range Channels {
		v, ok := c.value(&reading, ch)
		if !ok {
			continue
		}
		severity := Normal
		if band, ok := Thresholds(ch); ok {
			severity = band.Classify(v)
		}
		prev, hasPrev := c.value(previous, ch)
		result[ch] = Classification{Severity: severity, Trend: trend(v, prev, hasPrev)}
	}
	return result
}

func (c *Classifier) value(r *Reading, ch Channel) (float64, bool) {
	v, ok := r.Value(ch)
	if ok || ch != BMI || !c.derivedBMI || r == nil || r.BMI != nil {
		return v, ok
	}
	return DeriveBMI(r.Height, r.Weight)
}

// DeriveBMI computes weight/height² in kg/m², rounded to one decimal place.
// Weight may be in kg or lb; height in cm, m or in. ok is false for missing,
// non-positive or non-finite inputs and for unknown units.
func DeriveBMI(height, weight *Measurement) (bmi float64, ok bool) {
	h, ok := finite(height)
	if !ok || h <= 0 {
		return 0, false
	}
	w, ok := finite(weight)
	if !ok || w <= 0 {
		return 0, false
	}
	meters, ok := heightToMeters(h, height.Unit)
	if !ok {
		return 0, false
	}
	kg, ok := weightToKilograms(w, weight.Unit)
	if !ok {
		return 0, false
	}

	m := decimal.NewFromFloat(meters)
	v, _ := decimal.NewFromFloat(kg).Div(m.Mul(m)).Round(1).Float64()
	return v, true
}

var (
	poundsToKg   = decimal.RequireFromString("0.45359237")
	inchesToM    = decimal.RequireFromString("0.0254")
	centimetersM = decimal.RequireFromString("0.01")

	fahrenheitOffset = decimal.NewFromInt(32)
)

func heightToMeters(v float64, unit string) (float64, bool) {
	d := decimal.NewFromFloat(v)
	switch strings.ToLower(unit) {
	case "cm":
		d = d.Mul(centimetersM)
	case "m":
	case "in", "[in_i]", "inch", "inches":
		d = d.Mul(inchesToM)
	default:
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func weightToKilograms(v float64, unit string) (float64, bool) {
	d := decimal.NewFromFloat(v)
	switch strings.ToLower(unit) {
	case "kg":
	case "lb", "lbs", "[lb_av]":
		d = d.Mul(poundsToKg)
	default:
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// toCelsius converts a Fahrenheit temperature; any other unit is taken as Celsius.
func toCelsius(v float64, unit string) float64 {
	if !isFinite(v) {
		return v
	}
	switch unit {
	case "F", "°F", "[degF]", "degF":
		c, _ := decimal.NewFromFloat(v).Sub(fahrenheitOffset).Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(9)).Float64()
		return c
	}
	return v
}
