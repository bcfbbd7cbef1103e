package rcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/analytics"
)

// DefaultTTL bounds how stale a served snapshot can get; the refresher
// normally rewrites entries well before expiry.
const DefaultTTL = 5 * time.Minute

type InsightsCache interface {
	PutInsights(ctx context.Context, userID int64, ins analytics.Insights) error
	GetInsights(ctx context.Context, userID int64, mt defs.MetricType) (*CachedInsights, error)
	Invalidate(ctx context.Context, userID int64) error
}

// CachedInsights wraps a snapshot with the time it was computed so consumers
// can surface staleness.
type CachedInsights struct {
	CachedAt time.Time          `json:"cached_at"`
	Insights analytics.Insights `json:"insights"`
}

type RedisCache struct {
	Client *redis.Client
	Logger *zap.Logger

	TTL time.Duration
}

func New(ctx context.Context, cfg defs.RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &RedisCache{
		Client: client,
		Logger: logger,
		TTL:    DefaultTTL,
	}, nil
}

func (rc *RedisCache) Close() error {
	return rc.Client.Close()
}

func insightsKey(userID int64, mt defs.MetricType) string {
	return fmt.Sprintf("insights:%d:%s", userID, mt)
}

func (rc *RedisCache) ttl() time.Duration {
	if rc.TTL <= 0 {
		return DefaultTTL
	}
	return rc.TTL
}

func (rc *RedisCache) PutInsights(ctx context.Context, userID int64, ins analytics.Insights) error {
	key := insightsKey(userID, ins.Metric)
	rc.Logger.Debug("caching insights", zap.String("key", key))

	data, err := json.Marshal(CachedInsights{
		CachedAt: time.Now().UTC(),
		Insights: ins,
	})
	if err != nil {
		return fmt.Errorf("unable to marshal insights: %w", err)
	}

	if err := rc.Client.Set(ctx, key, data, rc.ttl()).Err(); err != nil {
		return fmt.Errorf("unable to cache insights: %w", err)
	}
	return nil
}

// GetInsights returns the cached snapshot, or nil on a miss.
func (rc *RedisCache) GetInsights(ctx context.Context, userID int64, mt defs.MetricType) (*CachedInsights, error) {
	val, err := rc.Client.Get(ctx, insightsKey(userID, mt)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to fetch cached insights: %w", err)
	}

	var cached CachedInsights
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("unable to unmarshal insights: %w", err)
	}
	return &cached, nil
}

// Invalidate drops every cached snapshot for the user, across metric types.
func (rc *RedisCache) Invalidate(ctx context.Context, userID int64) error {
	keys := make([]string, 0)
	for _, mt := range defs.AllMetricTypes() {
		keys = append(keys, insightsKey(userID, mt))
	}

	rc.Logger.Debug("invalidating cached insights", zap.Int64("userID", userID))
	if err := rc.Client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("unable to invalidate insights: %w", err)
	}
	return nil
}
