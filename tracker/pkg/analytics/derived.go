package analytics

import (
	"strings"

	"github.com/montanaflynn/stats"

	"vitalog/tracker/defs"
)

// Inverse of the standard eAG formula; a documented approximation, not a
// clinical substitute.
const (
	a1cOffset = 46.7
	a1cScale  = 28.7
)

const poundsToKilograms = 0.453592

// WeightKilograms converts a stored weight to kilograms based on its unit.
// Unrecognized units are assumed to already be kilograms.
func WeightKilograms(value float64, unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "lb", "lbs", "pound", "pounds":
		return value * poundsToKilograms
	default:
		return value
	}
}

// CelsiusValue converts a stored temperature to Celsius based on its unit.
func CelsiusValue(value float64, unit string) float64 {
	switch strings.TrimFunc(strings.ToLower(unit), func(r rune) bool {
		return r == ' ' || r == '°'
	}) {
	case "f", "fahrenheit":
		return (value - 32) * 5 / 9
	default:
		return value
	}
}

// BMIValue computes body mass index from a stored weight reading; a
// non-positive height falls back to DefaultHeightMeters.
func BMIValue(value float64, unit string, heightMeters float64) float64 {
	if heightMeters <= 0 {
		heightMeters = DefaultHeightMeters
	}
	return WeightKilograms(value, unit) / (heightMeters * heightMeters)
}

// EstimateHbA1c derives an estimated A1c percentage from the average of the
// given glucose readings (mg/dL). Returns false on an empty set.
func EstimateHbA1c(rs []defs.Reading) (float64, bool) {
	if len(rs) == 0 {
		return 0, false
	}
	values := make([]float64, len(rs))
	for i := range rs {
		values[i] = rs[i].Value
	}
	avg, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	return (avg + a1cOffset) / a1cScale, true
}

// EstimateBMI derives a BMI estimate from the average of the given weight
// readings, unit-aware per reading. Returns false on an empty set.
func EstimateBMI(rs []defs.Reading, heightMeters float64) (float64, bool) {
	if len(rs) == 0 {
		return 0, false
	}
	if heightMeters <= 0 {
		heightMeters = DefaultHeightMeters
	}
	kgs := make([]float64, len(rs))
	for i := range rs {
		kgs[i] = WeightKilograms(rs[i].Value, rs[i].Unit)
	}
	avg, err := stats.Mean(kgs)
	if err != nil {
		return 0, false
	}
	return avg / (heightMeters * heightMeters), true
}
