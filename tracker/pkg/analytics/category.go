package analytics

import (
	"strings"

	"vitalog/tracker/defs"
)

// DefaultHeightMeters is the assumed height for BMI when no profile height
// is configured. Known approximation carried over from the original system;
// override via the analytics config, not by editing call sites.
const DefaultHeightMeters = 1.70

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very-high"
)

var riskColors = map[RiskLevel]string{
	RiskLow:      "green",
	RiskModerate: "yellow",
	RiskHigh:     "orange",
	RiskVeryHigh: "red",
}

type Category struct {
	Label       string    `json:"label"`
	Range       string    `json:"range"`
	Color       string    `json:"color"`
	Risk        RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
}

func newCategory(label, valueRange, description string, risk RiskLevel) Category {
	return Category{
		Label:       label,
		Range:       valueRange,
		Color:       riskColors[risk],
		Risk:        risk,
		Description: description,
	}
}

// Uncategorized is the degraded result for readings the tables cannot place,
// e.g. blood pressure entries missing one of their components.
func Uncategorized() Category {
	return Category{
		Label:       "Uncategorized",
		Range:       "n/a",
		Color:       "gray",
		Risk:        RiskLow,
		Description: "Reading could not be placed in a clinical range.",
	}
}

type GlucoseContext string

const (
	ContextFasting  GlucoseContext = "fasting"
	ContextPostMeal GlucoseContext = "postprandial"
	ContextRandom   GlucoseContext = "random"
)

// Keyword table for glucose context inference. Matching is case-insensitive
// substring search over the reading's notes; earlier rows win.
var glucoseContextKeywords = []struct {
	Context  GlucoseContext
	Keywords []string
}{
	{ContextFasting, []string{"fasting", "morning", "before meal"}},
	{ContextPostMeal, []string{"after meal", "postprandial", "post meal"}},
}

func GlucoseContextOf(notes string) GlucoseContext {
	notes = strings.ToLower(notes)
	for _, row := range glucoseContextKeywords {
		for _, kw := range row.Keywords {
			if strings.Contains(notes, kw) {
				return row.Context
			}
		}
	}
	return ContextRandom
}

// ClassifyGlucose places a blood sugar value (mg/dL) in its clinical range,
// inferring the test context from the reading notes.
func ClassifyGlucose(value float64, notes string) Category {
	switch ctx := GlucoseContextOf(notes); ctx {
	case ContextFasting:
		switch {
		case value < 70:
			return newCategory("Hypoglycemia", "< 70 mg/dL", "Blood sugar below the safe floor.", RiskHigh)
		case value < 100:
			return newCategory("Normal (Fasting)", "70–99 mg/dL", "Fasting glucose in the normal range.", RiskLow)
		case value < 126:
			return newCategory("Prediabetes (Fasting)", "100–125 mg/dL", "Impaired fasting glucose.", RiskModerate)
		default:
			return newCategory("Diabetes (Fasting)", "≥ 126 mg/dL", "Fasting glucose in the diabetes range.", RiskHigh)
		}
	case ContextPostMeal:
		switch {
		case value < 70:
			return newCategory("Hypoglycemia", "< 70 mg/dL", "Blood sugar below the safe floor.", RiskHigh)
		case value < 140:
			return newCategory("Normal (Post-meal)", "70–139 mg/dL", "Post-meal glucose in the normal range.", RiskLow)
		case value < 200:
			return newCategory("Prediabetes (Post-meal)", "140–199 mg/dL", "Impaired glucose tolerance.", RiskModerate)
		default:
			return newCategory("Diabetes (Post-meal)", "≥ 200 mg/dL", "Post-meal glucose in the diabetes range.", RiskHigh)
		}
	default:
		switch {
		case value < 70:
			return newCategory("Hypoglycemia", "< 70 mg/dL", "Blood sugar below the safe floor.", RiskHigh)
		case value < 140:
			return newCategory("Normal", "70–139 mg/dL", "Glucose in the normal range.", RiskLow)
		case value < 200:
			return newCategory("Elevated Glucose", "140–199 mg/dL", "Glucose above the normal range.", RiskModerate)
		default:
			return newCategory("High Glucose", "≥ 200 mg/dL", "Glucose well above the normal range.", RiskHigh)
		}
	}
}

// ClassifyWeight buckets a weight reading by BMI. The value is converted to
// kilograms when the stored unit is pounds; heightMeters <= 0 falls back to
// DefaultHeightMeters.
func ClassifyWeight(value float64, unit string, heightMeters float64) Category {
	bmi := BMIValue(value, unit, heightMeters)
	switch {
	case bmi < 18.5:
		return newCategory("Underweight", "BMI < 18.5", "Body mass below the healthy range.", RiskModerate)
	case bmi < 25:
		return newCategory("Normal Weight", "BMI 18.5–24.9", "Body mass in the healthy range.", RiskLow)
	case bmi < 30:
		return newCategory("Overweight", "BMI 25–29.9", "Body mass above the healthy range.", RiskModerate)
	case bmi < 35:
		return newCategory("Obesity Class I", "BMI 30–34.9", "Class I obesity.", RiskHigh)
	case bmi < 40:
		return newCategory("Obesity Class II", "BMI 35–39.9", "Class II obesity.", RiskHigh)
	default:
		return newCategory("Obesity Class III", "BMI ≥ 40", "Class III obesity.", RiskVeryHigh)
	}
}

// ClassifyBloodPressure stages a reading from its systolic/diastolic pair.
// Missing either component degrades to Uncategorized.
func ClassifyBloodPressure(systolic, diastolic *float64) Category {
	if systolic == nil || diastolic == nil {
		return Uncategorized()
	}
	sys, dia := *systolic, *diastolic
	switch {
	case sys > 180 || dia > 120:
		return newCategory("Hypertensive Crisis", "> 180 / > 120 mmHg", "Seek medical attention immediately.", RiskVeryHigh)
	case sys >= 140 || dia >= 90:
		return newCategory("Hypertension Stage 2", "≥ 140 / ≥ 90 mmHg", "Stage 2 hypertension.", RiskHigh)
	case sys >= 130 || dia >= 80:
		return newCategory("Hypertension Stage 1", "130–139 / 80–89 mmHg", "Stage 1 hypertension.", RiskModerate)
	case sys >= 120:
		return newCategory("Elevated", "120–129 / < 80 mmHg", "Blood pressure above normal.", RiskModerate)
	default:
		return newCategory("Normal", "< 120 / < 80 mmHg", "Blood pressure in the normal range.", RiskLow)
	}
}

func ClassifyHeartRate(value float64) Category {
	switch {
	case value < 60:
		return newCategory("Bradycardia", "< 60 bpm", "Resting heart rate below the typical range.", RiskModerate)
	case value <= 100:
		return newCategory("Normal", "60–100 bpm", "Resting heart rate in the typical range.", RiskLow)
	default:
		return newCategory("Tachycardia", "> 100 bpm", "Resting heart rate above the typical range.", RiskModerate)
	}
}

// ClassifyTemperature buckets a body temperature, converting to Celsius when
// the stored unit is Fahrenheit.
func ClassifyTemperature(value float64, unit string) Category {
	c := CelsiusValue(value, unit)
	switch {
	case c < 35:
		return newCategory("Hypothermia", "< 35 °C", "Body temperature below the normal range.", RiskHigh)
	case c < 38:
		return newCategory("Normal", "35–37.9 °C", "Body temperature in the normal range.", RiskLow)
	case c < 40:
		return newCategory("Fever", "38–39.9 °C", "Elevated body temperature.", RiskModerate)
	default:
		return newCategory("High Fever", "≥ 40 °C", "Body temperature dangerously elevated.", RiskHigh)
	}
}

// ClassifyReading dispatches a reading to its metric-specific table.
func ClassifyReading(r defs.Reading, heightMeters float64) Category {
	switch r.Type {
	case defs.MetricBloodSugar:
		return ClassifyGlucose(r.Value, r.Notes)
	case defs.MetricWeight:
		return ClassifyWeight(r.Value, r.Unit, heightMeters)
	case defs.MetricBloodPressure:
		return ClassifyBloodPressure(r.Systolic, r.Diastolic)
	case defs.MetricHeartRate:
		return ClassifyHeartRate(r.Value)
	case defs.MetricTemperature:
		return ClassifyTemperature(r.Value, r.Unit)
	default:
		return Uncategorized()
	}
}
