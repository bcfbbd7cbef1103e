package mg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"vitalog/tracker/defs"
)

const (
	mongoURI = "mongodb://localhost:27017"
	testDB   = "test"
)

type MongoTestSuite struct {
	suite.Suite
	ms *MongoStore
}

func TestMongoTestSuiteIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.Run(t, new(MongoTestSuite))
}

func (suite *MongoTestSuite) SetupSuite() {
	ms, err := New(context.Background(), defs.MongoConfig{URI: mongoURI}, testDB, zap.NewExample())
	if err != nil {
		panic(err)
	}
	suite.ms = ms
}

func (suite *MongoTestSuite) AfterTest(_, _ string) {
	suite.T().Log("teardown test db")
	assert.NoError(suite.T(), suite.ms.Client.Database(testDB).Drop(context.Background()), "unable to drop test db")
}

func (suite *MongoTestSuite) TestDocByIDIntegration() {
	ctx := context.Background()
	id := primitive.NewObjectID()
	doc := defs.Alert{ID: &id, UserID: 1, Label: "test"}

	var fetchedDoc defs.Alert
	_, err := suite.ms.Upsert(ctx, "test", bson.M{"_id": id}, &doc)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.ms.DocByID(ctx, "test", &id, &fetchedDoc), "unable to fetch document by id")
	assert.EqualValues(suite.T(), doc, fetchedDoc, "not same document")
}

func (suite *MongoTestSuite) TestDeleteByIDIntegration() {
	ctx := context.Background()
	id := primitive.NewObjectID()
	doc := defs.Alert{ID: &id, UserID: 1, Label: "test"}

	var fetchedDoc defs.Alert
	_, err := suite.ms.Upsert(ctx, "test", bson.M{"_id": id}, &doc)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.ms.DeleteByID(ctx, "test", &id))
	assert.Error(suite.T(),
		suite.ms.DocByID(ctx, "test", &id, &fetchedDoc),
		"found document by id, delete not successful",
	)
}

func (suite *MongoTestSuite) TestWriteReadingIntegration() {
	ctx := context.Background()
	times := []time.Time{
		time.Date(2024, time.March, 12, 8, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 13, 8, 30, 0, 0, time.UTC),
	}

	first := defs.Reading{UserID: 1, Type: defs.MetricBloodSugar, Value: 100, Unit: "mg/dL", RecordedAt: times[0]}
	res, err := suite.ms.WriteReading(ctx, &first)
	assert.NoError(suite.T(), err, "unable to write reading to test db")
	assert.EqualValues(suite.T(), 0, res.MatchedCount, "not unique entry")
	assert.EqualValues(suite.T(), 1, first.ID, "ids should start at one")
	assert.False(suite.T(), first.CreatedAt.IsZero())

	second := defs.Reading{UserID: 1, Type: defs.MetricBloodSugar, Value: 104, Unit: "mg/dL", RecordedAt: times[1]}
	_, err = suite.ms.WriteReading(ctx, &second)
	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, second.ID, "ids should be monotonic")

	// Same user, type and recorded time is a duplicate.
	dup := defs.Reading{UserID: 1, Type: defs.MetricBloodSugar, Value: 100, Unit: "mg/dL", RecordedAt: times[0]}
	res, err = suite.ms.WriteReading(ctx, &dup)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), res.MatchedCount > 0, "duplicate should match the stored entry")
	assert.EqualValues(suite.T(), first.ID, dup.ID, "duplicate should reload the stored reading")

	rs, err := suite.ms.ReadReadings(ctx, 1, defs.MetricBloodSugar, times[0], times[1])
	assert.NoError(suite.T(), err, "unable to read readings from test db")
	assert.Len(suite.T(), rs, 2)
	assert.True(suite.T(), rs[0].RecordedAt.Before(rs[1].RecordedAt), "readings should be in recorded order")
}

func (suite *MongoTestSuite) TestReadReadingsFilterIntegration() {
	ctx := context.Background()
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	rs := []defs.Reading{
		{UserID: 1, Type: defs.MetricBloodSugar, Value: 100, RecordedAt: start.Add(24 * time.Hour)},
		{UserID: 1, Type: defs.MetricWeight, Value: 154, Unit: "lbs", RecordedAt: start.Add(36 * time.Hour)},
		{UserID: 2, Type: defs.MetricBloodSugar, Value: 120, RecordedAt: start.Add(48 * time.Hour)},
	}
	for i := range rs {
		_, err := suite.ms.WriteReading(ctx, &rs[i])
		assert.NoError(suite.T(), err)
	}

	sugars, err := suite.ms.ReadReadings(ctx, 1, defs.MetricBloodSugar, start, end)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), sugars, 1, "should only see the user's sugar readings")

	all, err := suite.ms.ReadReadings(ctx, 1, "", start, end)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 2, "empty metric type should match all types")

	none, err := suite.ms.ReadReadings(ctx, 1, defs.MetricBloodSugar, end, end.Add(time.Hour))
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), none, "window outside the data should be empty")
}

func (suite *MongoTestSuite) TestDeleteReadingIntegration() {
	ctx := context.Background()
	r := defs.Reading{
		UserID:     1,
		Type:       defs.MetricHeartRate,
		Value:      72,
		Unit:       "bpm",
		RecordedAt: time.Date(2024, time.March, 12, 8, 30, 0, 0, time.UTC),
	}
	_, err := suite.ms.WriteReading(ctx, &r)
	assert.NoError(suite.T(), err)

	deleted, err := suite.ms.DeleteReading(ctx, 1, r.ID)
	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, deleted)

	deleted, err = suite.ms.DeleteReading(ctx, 1, r.ID)
	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 0, deleted, "second delete should find nothing")
}

func (suite *MongoTestSuite) TestDistinctUsersIntegration() {
	ctx := context.Background()
	base := time.Date(2024, time.March, 12, 8, 30, 0, 0, time.UTC)

	for i, userID := range []int64{1, 2, 2} {
		r := defs.Reading{UserID: userID, Type: defs.MetricBloodSugar, Value: 100, RecordedAt: base.Add(time.Duration(i) * time.Hour)}
		_, err := suite.ms.WriteReading(ctx, &r)
		assert.NoError(suite.T(), err)
	}

	users, err := suite.ms.DistinctUsers(ctx)
	assert.NoError(suite.T(), err)
	assert.ElementsMatch(suite.T(), []int64{1, 2}, users)
}

func (suite *MongoTestSuite) TestReadWriteAlertsIntegration() {
	ctx := context.Background()
	times := []time.Time{
		time.Date(2024, time.March, 12, 1, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 15, 1, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), // Start.
		time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), // End.
	}
	alertsInsert := []defs.Alert{
		{UserID: 1, Time: times[0], Metric: defs.MetricBloodSugar, Label: "low glucose", Reason: "glucose at 55 mg/dL"},
		{UserID: 1, Time: times[1], Metric: defs.MetricBloodPressure, Label: "hypertensive crisis", Reason: "pressure at 190/125 mmHg"},
	}

	for i := range alertsInsert {
		_, err := suite.ms.WriteAlert(ctx, &alertsInsert[i])
		assert.NoError(suite.T(), err, "unable to write alert to test db")
	}

	alerts, err := suite.ms.ReadAlerts(ctx, 1, times[2], times[3])
	assert.NoError(suite.T(), err, "unable to read alerts from test db")
	assert.Len(suite.T(), alerts, len(alertsInsert), "did not find all entries")
	for i := range alerts {
		assert.EqualValues(suite.T(), alertsInsert[i].Label, alerts[i].Label)
		assert.EqualValues(suite.T(), alertsInsert[i].Time, alerts[i].Time)
	}

	other, err := suite.ms.ReadAlerts(ctx, 2, times[2], times[3])
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), other, "alerts should be scoped to the user")
}
