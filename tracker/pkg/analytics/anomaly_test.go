package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"vitalog/tracker/defs"
)

type AnomalyTestSuite struct {
	suite.Suite
}

func TestAnomalyTestSuite(t *testing.T) {
	suite.Run(t, new(AnomalyTestSuite))
}

func (suite *AnomalyTestSuite) TestSingleOutlier() {
	rs := glucoseSeries(100, 102, 98, 101, 400)
	flags := DetectAnomalies(rs, 0)

	assert.Len(suite.T(), flags, 5, "every reading should carry a flag")
	assert.True(suite.T(), flags[5].IsAnomaly, "the outlier should be flagged")
	for _, id := range []int64{1, 2, 3, 4} {
		assert.False(suite.T(), flags[id].IsAnomaly, "reading %d should not be flagged", id)
	}
	assert.Greater(suite.T(), flags[5].Score, flags[1].Score)
}

func (suite *AnomalyTestSuite) TestKeyedByID() {
	rs := glucoseSeries(100, 102, 98, 101, 400)
	for i := range rs {
		rs[i].ID += 1000
	}
	flags := DetectAnomalies(rs, 0)

	assert.True(suite.T(), flags[1005].IsAnomaly)
	assert.NotContains(suite.T(), flags, int64(5))
}

func (suite *AnomalyTestSuite) TestIdenticalValues() {
	flags := DetectAnomalies(glucoseSeries(100, 100, 100, 100), 0)
	assert.Empty(suite.T(), flags, "zero deviation should flag nothing")
}

func (suite *AnomalyTestSuite) TestTooFewReadings() {
	assert.Empty(suite.T(), DetectAnomalies(nil, 0))
	assert.Empty(suite.T(), DetectAnomalies(glucoseSeries(120), 0))
}

func (suite *AnomalyTestSuite) TestSigmaOverride() {
	rs := glucoseSeries(10, 10, 10, 20)

	strict := DetectAnomalies(rs, 0)
	assert.False(suite.T(), strict[4].IsAnomaly, "within two deviations of the baseline")

	loose := DetectAnomalies(rs, 1.5)
	assert.True(suite.T(), loose[4].IsAnomaly)
	assert.False(suite.T(), loose[1].IsAnomaly)
}

func (suite *AnomalyTestSuite) TestBloodPressureUsesSystolic() {
	sys := []float64{118, 120, 122, 119, 240}
	rs := make([]defs.Reading, len(sys))
	for i := range sys {
		dia := 80.0
		rs[i] = defs.Reading{
			ID:         int64(i + 1),
			Type:       defs.MetricBloodPressure,
			Systolic:   &sys[i],
			Diastolic:  &dia,
			RecordedAt: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		}
	}

	flags := DetectAnomalies(rs, 0)
	assert.True(suite.T(), flags[5].IsAnomaly)
	assert.False(suite.T(), flags[2].IsAnomaly)
}

func glucoseSeries(values ...float64) []defs.Reading {
	start := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	rs := make([]defs.Reading, 0, len(values))
	for i, v := range values {
		rs = append(rs, defs.Reading{
			ID:         int64(i + 1),
			Type:       defs.MetricBloodSugar,
			Value:      v,
			Unit:       "mg/dL",
			RecordedAt: start.Add(time.Duration(i) * time.Hour),
		})
	}
	return rs
}
