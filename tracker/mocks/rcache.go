package mocks

import (
	"context"
	"fmt"
	"time"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/analytics"
	"vitalog/tracker/pkg/rcache"
)

type Cache struct {
	Snapshots map[string]rcache.CachedInsights
	Puts      int
}

func cacheKey(userID int64, mt defs.MetricType) string {
	return fmt.Sprintf("insights:%d:%s", userID, mt)
}

func (c *Cache) PutInsights(_ context.Context, userID int64, ins analytics.Insights) error {
	if c.Snapshots == nil {
		c.Snapshots = make(map[string]rcache.CachedInsights)
	}
	c.Puts++
	c.Snapshots[cacheKey(userID, ins.Metric)] = rcache.CachedInsights{
		CachedAt: time.Now().UTC(),
		Insights: ins,
	}
	return nil
}

func (c *Cache) GetInsights(_ context.Context, userID int64, mt defs.MetricType) (*rcache.CachedInsights, error) {
	cached, ok := c.Snapshots[cacheKey(userID, mt)]
	if !ok {
		return nil, nil
	}
	return &cached, nil
}

func (c *Cache) Invalidate(_ context.Context, userID int64) error {
	for _, mt := range defs.AllMetricTypes() {
		delete(c.Snapshots, cacheKey(userID, mt))
	}
	return nil
}
