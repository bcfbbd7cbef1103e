package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultTrendEpsilon is the slope magnitude below which a fit counts as
// stable rather than a trend.
const DefaultTrendEpsilon = 0.01

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type TrendStrength string

const (
	StrengthWeak     TrendStrength = "weak"
	StrengthModerate TrendStrength = "moderate"
	StrengthStrong   TrendStrength = "strong"
)

// Strength bands for the fitted change across the window, measured in series
// standard deviations.
const (
	strengthModerateRatio = 1.0
	strengthStrongRatio   = 2.0
)

type TrendResult struct {
	Slope      float64        `json:"slope"`
	Direction  TrendDirection `json:"direction"`
	Confidence float64        `json:"confidence"`
	Strength   TrendStrength  `json:"strength"`
}

func neutralTrend() TrendResult {
	return TrendResult{Direction: TrendStable, Strength: StrengthWeak}
}

// EstimateTrend fits an ordinary least-squares line of value against index
// 0..n-1. Confidence is the R² of the fit clamped to [0,1]. Fewer than two
// points yield the neutral stable result. A non-positive epsilon falls back
// to DefaultTrendEpsilon.
func EstimateTrend(values []float64, epsilon float64) TrendResult {
	if epsilon <= 0 {
		epsilon = DefaultTrendEpsilon
	}
	if len(values) < 2 {
		return neutralTrend()
	}

	series := make(stats.Series, len(values))
	for i, v := range values {
		series[i] = stats.Coordinate{X: float64(i), Y: v}
	}
	fitted, err := stats.LinearRegression(series)
	if err != nil {
		return neutralTrend()
	}

	n := float64(len(values))
	slope := (fitted[len(fitted)-1].Y - fitted[0].Y) / (n - 1)

	mean, _ := stats.Mean(values)
	var ssRes, ssTot float64
	for i, v := range values {
		ssRes += (v - fitted[i].Y) * (v - fitted[i].Y)
		ssTot += (v - mean) * (v - mean)
	}

	confidence := 0.0
	if ssTot > 0 {
		confidence = clamp01(1 - ssRes/ssTot)
	}

	direction := TrendStable
	switch {
	case slope > epsilon:
		direction = TrendIncreasing
	case slope < -epsilon:
		direction = TrendDecreasing
	}

	return TrendResult{
		Slope:      slope,
		Direction:  direction,
		Confidence: confidence,
		Strength:   strengthOf(slope, values),
	}
}

// strengthOf bands the magnitude of the fitted change across the window
// relative to the series deviation; monotonic in |slope| for a fixed series.
func strengthOf(slope float64, values []float64) TrendStrength {
	dev, err := stats.StandardDeviation(values)
	if err != nil || dev == 0 {
		return StrengthWeak
	}
	ratio := math.Abs(slope) * float64(len(values)-1) / dev
	switch {
	case ratio >= strengthStrongRatio:
		return StrengthStrong
	case ratio >= strengthModerateRatio:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
