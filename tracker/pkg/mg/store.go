package mg

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"vitalog/tracker/defs"
)

const (
	ReadingsCollection = "readings"
	AlertsCollection   = "alerts"
	CountersCollection = "counters"
)

type DocumentStore interface {
	DocByID(ctx context.Context, collection string, id *primitive.ObjectID, doc interface{}) error
	DeleteByID(ctx context.Context, collection string, id *primitive.ObjectID) error
	InsertIfNew(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
	Upsert(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
}

type ReadingStore interface {
	WriteReading(ctx context.Context, r *defs.Reading) (*mongo.UpdateResult, error)
	ReadReadings(ctx context.Context, userID int64, mt defs.MetricType, start, end time.Time) ([]defs.Reading, error)
	DeleteReading(ctx context.Context, userID, id int64) (int64, error)
	DistinctUsers(ctx context.Context) ([]int64, error)
}

type AlertStore interface {
	WriteAlert(ctx context.Context, al *defs.Alert) (*mongo.UpdateResult, error)
	ReadAlerts(ctx context.Context, userID int64, start, end time.Time) ([]defs.Alert, error)
}

type MongoStore struct {
	Client *mongo.Client
	Logger *zap.Logger

	DBName string
}

func New(ctx context.Context, cfg defs.MongoConfig, dbName string, logger *zap.Logger) (*MongoStore, error) {
	opts := []*options.ClientOptions{options.Client().ApplyURI(cfg.URI)}
	if cfg.Username != "" {
		opts = append(opts, options.Client().SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		}))
	}

	mongoClient, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	return &MongoStore{
		Client: mongoClient,
		Logger: logger,
		DBName: dbName,
	}, nil
}

func (ms *MongoStore) DocByID(ctx context.Context, collection string, id *primitive.ObjectID, doc interface{}) error {
	sr := ms.Client.Database(ms.DBName).Collection(collection).FindOne(ctx, bson.M{"_id": id})
	return sr.Decode(doc)
}

func (ms *MongoStore) InsertIfNew(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"inserting document",
		zap.String("collection", collection),
		zap.Any("filter", filter),
		zap.Any("document", doc),
	)

	res, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		UpdateOne(ctx, filter,
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
	if err != nil {
		return nil, fmt.Errorf("unable to insert if new: %w", err)
	}

	return res, err
}

func (ms *MongoStore) Upsert(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"upserting document",
		zap.String("collection", collection),
		zap.Any("document", doc),
	)

	res, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		UpdateOne(ctx, filter,
			bson.M{"$set": doc},
			options.Update().SetUpsert(true),
		)
	if err != nil {
		ms.Logger.Debug(
			"unable to upsert document",
			zap.String("collection", collection),
			zap.Any("document", doc),
			zap.Error(err),
		)
		return nil, fmt.Errorf("unable to upsert document: %w", err)
	}

	return res, err
}

func (ms *MongoStore) DeleteByID(ctx context.Context, collection string, id *primitive.ObjectID) error {
	ms.Logger.Debug(
		"deleting document by id",
		zap.String("collection", collection),
		zap.String("id", id.Hex()),
	)
	_, err := ms.Client.Database(ms.DBName).Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// nextID increments and returns the per-collection sequence counter.
func (ms *MongoStore) nextID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := ms.Client.
		Database(ms.DBName).
		Collection(CountersCollection).
		FindOneAndUpdate(ctx,
			bson.M{"_id": collection},
			bson.M{"$inc": bson.M{"seq": int64(1)}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("unable to advance id counter: %w", err)
	}

	return counter.Seq, nil
}

func (ms *MongoStore) getEventsBetween(ctx context.Context, collection string, filter bson.M, timeField string, start, end time.Time, slicePtr interface{}) error {
	ms.Logger.Debug(
		"reading events",
		zap.String("collection", collection),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	query := bson.M{
		timeField: bson.M{
			"$gte": primitive.NewDateTimeFromTime(start),
			"$lte": primitive.NewDateTimeFromTime(end),
		},
	}
	for k, v := range filter {
		query[k] = v
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{primitive.E{Key: timeField, Value: 1}})

	cur, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		Find(ctx, query, findOptions)
	if err != nil {
		ms.Logger.Debug(
			"unable to read events",
			zap.String("collection", collection),
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Error(err),
		)
		return fmt.Errorf("unable to read events: %w", err)
	}

	return cur.All(ctx, slicePtr)
}

// WriteReading persists a reading, deduplicating on the user, metric type and
// recorded time. A duplicate write is a no-op; the reading is reloaded from
// the store so the caller sees the stored id and timestamps either way.
func (ms *MongoStore) WriteReading(ctx context.Context, r *defs.Reading) (*mongo.UpdateResult, error) {
	id, err := ms.nextID(ctx, ReadingsCollection)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now

	filter := bson.M{
		"user_id":     r.UserID,
		"metric_type": r.Type,
		"recorded_at": r.RecordedAt,
	}
	res, err := ms.InsertIfNew(ctx, ReadingsCollection, filter, r)
	if err != nil {
		return nil, fmt.Errorf("unable to write reading: %w", err)
	}

	if res.MatchedCount > 0 {
		sr := ms.Client.Database(ms.DBName).Collection(ReadingsCollection).FindOne(ctx, filter)
		if err := sr.Decode(r); err != nil {
			return nil, fmt.Errorf("unable to load existing reading: %w", err)
		}
	}

	return res, nil
}

// ReadReadings returns a user's readings recorded in [start, end] in ascending
// recorded order. An empty metric type matches all types.
func (ms *MongoStore) ReadReadings(ctx context.Context, userID int64, mt defs.MetricType, start, end time.Time) ([]defs.Reading, error) {
	filter := bson.M{"user_id": userID}
	if mt != "" {
		filter["metric_type"] = mt
	}

	var rs []defs.Reading
	if err := ms.getEventsBetween(ctx, ReadingsCollection, filter, "recorded_at", start, end, &rs); err != nil {
		return nil, fmt.Errorf("unable to read readings: %w", err)
	}
	return rs, nil
}

func (ms *MongoStore) DeleteReading(ctx context.Context, userID, id int64) (int64, error) {
	ms.Logger.Debug(
		"deleting reading",
		zap.Int64("userID", userID),
		zap.Int64("id", id),
	)

	res, err := ms.Client.
		Database(ms.DBName).
		Collection(ReadingsCollection).
		DeleteOne(ctx, bson.M{"user_id": userID, "id": id})
	if err != nil {
		return 0, fmt.Errorf("unable to delete reading: %w", err)
	}
	return res.DeletedCount, nil
}

func (ms *MongoStore) DistinctUsers(ctx context.Context) ([]int64, error) {
	raw, err := ms.Client.
		Database(ms.DBName).
		Collection(ReadingsCollection).
		Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("unable to list users: %w", err)
	}

	users := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case int32:
			users = append(users, int64(id))
		case int64:
			users = append(users, id)
		}
	}
	return users, nil
}

func (ms *MongoStore) WriteAlert(ctx context.Context, al *defs.Alert) (*mongo.UpdateResult, error) {
	filter := bson.M{}
	if al.ID != nil {
		filter["_id"] = al.ID
	} else {
		filter["user_id"] = al.UserID
		filter["time"] = al.Time
	}
	return ms.Upsert(ctx, AlertsCollection, filter, al)
}

func (ms *MongoStore) ReadAlerts(ctx context.Context, userID int64, start, end time.Time) ([]defs.Alert, error) {
	var alerts []defs.Alert
	filter := bson.M{"user_id": userID}
	if err := ms.getEventsBetween(ctx, AlertsCollection, filter, "time", start, end, &alerts); err != nil {
		return nil, fmt.Errorf("unable to read alerts: %w", err)
	}
	return alerts, nil
}
