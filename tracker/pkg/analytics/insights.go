package analytics

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"vitalog/tracker/defs"
)

type Summary struct {
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Deviation float64 `json:"deviation"`
}

type CategoryBucket struct {
	Category    string    `json:"category"`
	Range       string    `json:"range"`
	Color       string    `json:"color"`
	Count       int       `json:"count"`
	Share       float64   `json:"share"`
	Risk        RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
}

// Insights is the per-metric analytics snapshot served to presentation
// consumers. It is derived in full on every pass and never written back.
type Insights struct {
	Metric            defs.MetricType       `json:"metric_type"`
	HasData           bool                  `json:"has_data"`
	Summary           *Summary              `json:"summary,omitempty"`
	Trend             TrendResult           `json:"trend"`
	Anomalies         map[int64]AnomalyFlag `json:"anomalies"`
	TimeOfDayAverages map[TimeOfDay]float64 `json:"time_of_day_averages"`
	Buckets           []CategoryBucket      `json:"category_buckets"`
	HbA1c             *float64              `json:"estimated_hba1c,omitempty"`
	BMI               *float64              `json:"estimated_bmi,omitempty"`
}

// SeriesValue is the numeric value a reading contributes to windowed math.
// Blood pressure readings contribute their systolic component when present.
func SeriesValue(r defs.Reading) float64 {
	if r.Type == defs.MetricBloodPressure && r.Systolic != nil {
		return *r.Systolic
	}
	return r.Value
}

// Aggregator composes the analytics components over a snapshot of readings.
// All methods are pure; the same input yields the same snapshot.
type Aggregator struct {
	Location *time.Location
	Config   defs.AnalyticsConfig
}

// Insights filters the snapshot to one metric type and derives its analytics.
// An empty filtered set yields an explicit no-data snapshot rather than a
// partially populated one.
func (a Aggregator) Insights(rs []defs.Reading, metric defs.MetricType) Insights {
	filtered := make([]defs.Reading, 0, len(rs))
	for i := range rs {
		if rs[i].Type == metric {
			filtered = append(filtered, rs[i])
		}
	}

	ins := Insights{
		Metric:            metric,
		Trend:             neutralTrend(),
		Anomalies:         map[int64]AnomalyFlag{},
		TimeOfDayAverages: map[TimeOfDay]float64{},
		Buckets:           []CategoryBucket{},
	}
	if len(filtered) == 0 {
		return ins
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RecordedAt.Before(filtered[j].RecordedAt)
	})

	values := make([]float64, len(filtered))
	for i := range filtered {
		values[i] = SeriesValue(filtered[i])
	}

	avg, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	dev, _ := stats.StandardDeviation(values)

	ins.HasData = true
	ins.Summary = &Summary{
		Count:     len(filtered),
		Average:   avg,
		Min:       min,
		Max:       max,
		Deviation: dev,
	}
	ins.Trend = EstimateTrend(values, a.Config.TrendEpsilon)
	ins.Anomalies = DetectAnomalies(filtered, a.Config.AnomalySigma)
	ins.TimeOfDayAverages = a.timeOfDayAverages(filtered)
	ins.Buckets = a.categoryBuckets(filtered)

	switch metric {
	case defs.MetricBloodSugar:
		if v, ok := EstimateHbA1c(filtered); ok {
			ins.HbA1c = &v
		}
	case defs.MetricWeight:
		if v, ok := EstimateBMI(filtered, a.Config.HeightMeters); ok {
			ins.BMI = &v
		}
	}

	return ins
}

// timeOfDayAverages maps each time-of-day bucket with data to its average
// value; empty buckets are omitted.
func (a Aggregator) timeOfDayAverages(rs []defs.Reading) map[TimeOfDay]float64 {
	averages := make(map[TimeOfDay]float64)
	for _, bucket := range []TimeOfDay{Morning, Afternoon, Evening} {
		subset := FilterByTimeOfDay(rs, bucket, a.Location)
		if len(subset) == 0 {
			continue
		}
		values := make([]float64, len(subset))
		for i := range subset {
			values[i] = SeriesValue(subset[i])
		}
		avg, err := stats.Mean(values)
		if err != nil {
			continue
		}
		averages[bucket] = avg
	}
	return averages
}

// categoryBuckets groups readings by category label in first-appearance
// order, counting occurrences and each bucket's share of the total.
func (a Aggregator) categoryBuckets(rs []defs.Reading) []CategoryBucket {
	buckets := make([]CategoryBucket, 0)
	index := make(map[string]int)

	for i := range rs {
		cat := ClassifyReading(rs[i], a.Config.HeightMeters)
		at, ok := index[cat.Label]
		if !ok {
			at = len(buckets)
			index[cat.Label] = at
			buckets = append(buckets, CategoryBucket{
				Category:    cat.Label,
				Range:       cat.Range,
				Color:       cat.Color,
				Risk:        cat.Risk,
				Description: cat.Description,
			})
		}
		buckets[at].Count++
	}

	total := float64(len(rs))
	for i := range buckets {
		buckets[i].Share = float64(buckets[i].Count) / total
	}
	return buckets
}
