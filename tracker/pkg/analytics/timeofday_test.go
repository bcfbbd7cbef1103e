package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"vitalog/tracker/defs"
)

type TimeOfDayTestSuite struct {
	suite.Suite
}

func TestTimeOfDayTestSuite(t *testing.T) {
	suite.Run(t, new(TimeOfDayTestSuite))
}

func (suite *TimeOfDayTestSuite) TestClassifyTime() {
	cases := []struct {
		hour, min int
		expected  TimeOfDay
	}{
		{8, 30, Morning},
		{14, 0, Afternoon},
		{23, 0, Evening},
		{2, 0, Evening},
		{5, 0, Morning},
		{11, 59, Morning},
		{12, 0, Afternoon},
		{16, 59, Afternoon},
		{17, 0, Evening},
		{4, 59, Evening},
	}

	for _, c := range cases {
		t := time.Date(2024, time.March, 1, c.hour, c.min, 0, 0, time.UTC)
		assert.Equal(suite.T(), c.expected, ClassifyTime(t, nil), "bucket should match for %02d:%02d", c.hour, c.min)
	}
}

func (suite *TimeOfDayTestSuite) TestClassifyInLocation() {
	// 14:00 UTC is 09:00 in UTC-5.
	t := time.Date(2024, time.March, 1, 14, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC-5", -5*60*60)

	assert.Equal(suite.T(), Afternoon, ClassifyTime(t, nil))
	assert.Equal(suite.T(), Morning, ClassifyTime(t, loc))
}

func (suite *TimeOfDayTestSuite) TestClassifyTimePoint() {
	r := defs.Reading{
		Type:       defs.MetricHeartRate,
		RecordedAt: time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC),
	}
	assert.Equal(suite.T(), Morning, Classify(&r, nil))
}

func (suite *TimeOfDayTestSuite) TestFilterByTimeOfDay() {
	rs := []defs.Reading{
		readingAtHour(1, 6),
		readingAtHour(2, 13),
		readingAtHour(3, 22),
		readingAtHour(4, 7),
	}

	morning := FilterByTimeOfDay(rs, Morning, nil)
	if assert.Len(suite.T(), morning, 2) {
		assert.Equal(suite.T(), int64(1), morning[0].ID, "relative order should be preserved")
		assert.Equal(suite.T(), int64(4), morning[1].ID, "relative order should be preserved")
	}

	assert.Len(suite.T(), FilterByTimeOfDay(rs, Afternoon, nil), 1)
	assert.Len(suite.T(), FilterByTimeOfDay(rs, Evening, nil), 1)
	assert.Empty(suite.T(), FilterByTimeOfDay(nil, Morning, nil))
}

func readingAtHour(id int64, hour int) defs.Reading {
	return defs.Reading{
		ID:         id,
		Type:       defs.MetricHeartRate,
		Value:      70,
		RecordedAt: time.Date(2024, time.March, 1, hour, 0, 0, 0, time.UTC),
	}
}
