package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/analytics"
	"vitalog/tracker/pkg/mg"
	"vitalog/tracker/pkg/rcache"
)

type RefresherStore interface {
	mg.ReadingStore
}

// Refresher recomputes insights for every known user and warms the cache, so
// most reads never touch the store.
type Refresher struct {
	Store RefresherStore
	Cache rcache.InsightsCache
	Agg   analytics.Aggregator

	Logger *zap.Logger
}

func (rf *Refresher) RefreshInsights() error {
	ctx := context.Background()
	now := time.Now()

	users, err := rf.Store.DistinctUsers(ctx)
	if err != nil {
		return fmt.Errorf("unable to list users: %w", err)
	}

	for _, userID := range users {
		rs, err := rf.Store.ReadReadings(ctx, userID, "", now.Add(defs.LookbackInterval), now)
		if err != nil {
			rf.Logger.Debug("unable to read readings",
				zap.Int64("userID", userID),
				zap.Error(err),
			)
			continue
		}

		// Readings come back in ascending recorded order, so the last seen
		// per type is the newest.
		latest := make(map[defs.MetricType]time.Time)
		for i := range rs {
			latest[rs[i].Type] = rs[i].RecordedAt
		}

		for _, mt := range defs.AllMetricTypes() {
			latestAt, ok := latest[mt]
			if !ok {
				continue
			}

			cached, err := rf.Cache.GetInsights(ctx, userID, mt)
			if err == nil && cached != nil && !latestAt.After(cached.CachedAt) {
				continue
			}

			ins := rf.Agg.Insights(rs, mt)
			if err := rf.Cache.PutInsights(ctx, userID, ins); err != nil {
				rf.Logger.Debug("unable to cache insights",
					zap.Int64("userID", userID),
					zap.String("metric", string(mt)),
					zap.Error(err),
				)
			}
		}
	}

	return nil
}
