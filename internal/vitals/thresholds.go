package vitals

import "math"

// Band holds the inclusive Normal and Caution bounds of a channel. Values
// outside the Caution bounds are Critical; an unbounded side is ±Inf.
type Band struct {
	NormalLow   float64
	NormalHigh  float64
	CautionLow  float64
	CautionHigh float64
}

// HasCritical reports whether any value can classify as Critical.
func (b Band) HasCritical() bool {
	return !math.IsInf(b.CautionLow, -1) || !math.IsInf(b.CautionHigh, 1)
}

// Classify returns the tier of v. Critical is checked first.
func (b Band) Classify(v float64) Severity {
	if v < b.CautionLow || v > b.CautionHigh {
		return Critical
	}
	if v < b.NormalLow || v > b.NormalHigh {
		return Caution
	}
	return Normal
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

var thresholds = map[Channel]Band{
	Temperature:      {NormalLow: 36.0, NormalHigh: 37.5, CautionLow: 35.0, CautionHigh: 38.0},
	BloodPressure:    {NormalLow: negInf, NormalHigh: 120, CautionLow: negInf, CautionHigh: 140},
	HeartRate:        {NormalLow: 70, NormalHigh: 90, CautionLow: 60, CautionHigh: 100},
	RespiratoryRate:  {NormalLow: 14, NormalHigh: 18, CautionLow: 12, CautionHigh: 20},
	OxygenSaturation: {NormalLow: 97, NormalHigh: posInf, CautionLow: 95, CautionHigh: posInf},
	BMI:              {NormalLow: 18.5, NormalHigh: 25.0, CautionLow: negInf, CautionHigh: posInf},
}

// Thresholds returns the band for ch. Height and weight have none.
func Thresholds(ch Channel) (Band, bool) {
	b, ok := thresholds[ch]
	return b, ok
}
