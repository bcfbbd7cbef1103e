package rcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/analytics"
)

const redisAddr = "localhost:6379"

type CacheTestSuite struct {
	suite.Suite
	rc *RedisCache
}

func TestCacheTestSuiteIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.Run(t, new(CacheTestSuite))
}

func (suite *CacheTestSuite) SetupSuite() {
	rc, err := New(context.Background(), defs.RedisConfig{Addr: redisAddr, DB: 1}, zap.NewExample())
	if err != nil {
		panic(err)
	}
	suite.rc = rc
}

func (suite *CacheTestSuite) AfterTest(_, _ string) {
	suite.T().Log("flushing test db")
	assert.NoError(suite.T(), suite.rc.Client.FlushDB(context.Background()).Err(), "unable to flush test db")
}

func (suite *CacheTestSuite) TestPutGetInsightsIntegration() {
	ctx := context.Background()
	agg := analytics.Aggregator{Location: time.UTC}
	ins := agg.Insights([]defs.Reading{
		{ID: 1, Type: defs.MetricBloodSugar, Value: 100, Unit: "mg/dL", Notes: "fasting", RecordedAt: time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC)},
		{ID: 2, Type: defs.MetricBloodSugar, Value: 140, Unit: "mg/dL", RecordedAt: time.Date(2024, time.March, 1, 13, 0, 0, 0, time.UTC)},
	}, defs.MetricBloodSugar)

	assert.NoError(suite.T(), suite.rc.PutInsights(ctx, 1, ins), "unable to cache insights")

	cached, err := suite.rc.GetInsights(ctx, 1, defs.MetricBloodSugar)
	assert.NoError(suite.T(), err, "unable to fetch cached insights")
	if assert.NotNil(suite.T(), cached) {
		assert.Equal(suite.T(), ins, cached.Insights, "snapshot should survive the round trip")
		assert.False(suite.T(), cached.CachedAt.IsZero())
	}
}

func (suite *CacheTestSuite) TestGetInsightsMissIntegration() {
	cached, err := suite.rc.GetInsights(context.Background(), 42, defs.MetricWeight)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), cached, "a miss should not be an error")
}

func (suite *CacheTestSuite) TestInvalidateIntegration() {
	ctx := context.Background()
	agg := analytics.Aggregator{Location: time.UTC}

	for _, mt := range []defs.MetricType{defs.MetricBloodSugar, defs.MetricHeartRate} {
		ins := agg.Insights([]defs.Reading{
			{ID: 1, Type: mt, Value: 90, RecordedAt: time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC)},
		}, mt)
		assert.NoError(suite.T(), suite.rc.PutInsights(ctx, 1, ins))
	}

	assert.NoError(suite.T(), suite.rc.Invalidate(ctx, 1))

	for _, mt := range []defs.MetricType{defs.MetricBloodSugar, defs.MetricHeartRate} {
		cached, err := suite.rc.GetInsights(ctx, 1, mt)
		assert.NoError(suite.T(), err)
		assert.Nil(suite.T(), cached, "invalidate should drop every metric type")
	}
}
