package analytics

import (
	"math"

	"github.com/montanaflynn/stats"

	"vitalog/tracker/defs"
)

// DefaultAnomalySigma is the number of standard deviations a value must sit
// from its series baseline to be flagged.
const DefaultAnomalySigma = 2.0

type AnomalyFlag struct {
	IsAnomaly bool    `json:"is_anomaly"`
	Score     float64 `json:"score"`
}

// DetectAnomalies flags readings whose value deviates more than k standard
// deviations from the series mean. Each reading is additionally compared
// against the mean and deviation of the *other* values, so a single extreme
// point cannot inflate the deviation enough to mask itself. The result is
// keyed by reading id, never by position. All-identical series flag nothing.
// A non-positive k falls back to DefaultAnomalySigma.
func DetectAnomalies(rs []defs.Reading, k float64) map[int64]AnomalyFlag {
	if k <= 0 {
		k = DefaultAnomalySigma
	}

	flags := make(map[int64]AnomalyFlag)
	if len(rs) < 2 {
		return flags
	}

	values := make([]float64, len(rs))
	var sum, sumSq float64
	for i := range rs {
		v := SeriesValue(rs[i])
		values[i] = v
		sum += v
		sumSq += v * v
	}

	mean, _ := stats.Mean(values)
	dev, _ := stats.StandardDeviation(values)
	if dev == 0 {
		return flags
	}

	rest := float64(len(values) - 1)
	for i := range rs {
		v := values[i]
		score := math.Abs(v-mean) / dev

		restMean := (sum - v) / rest
		restVar := (sumSq-v*v)/rest - restMean*restMean
		if restVar > 0 {
			if s := math.Abs(v-restMean) / math.Sqrt(restVar); s > score {
				score = s
			}
		}

		flags[rs[i].ID] = AnomalyFlag{IsAnomaly: score > k, Score: score}
	}

	return flags
}
