package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/analytics"
	"vitalog/tracker/pkg/mg"
	"vitalog/tracker/pkg/rcache"
)

type httpStore interface {
	mg.ReadingStore
}

type HttpServer struct {
	Store  httpStore
	Cache  rcache.InsightsCache
	Agg    analytics.Aggregator
	Logger *zap.Logger

	engine *gin.Engine
}

func New(s httpStore, cache rcache.InsightsCache, agg analytics.Aggregator, logger *zap.Logger) *HttpServer {
	hs := &HttpServer{
		Store:  s,
		Cache:  cache,
		Agg:    agg,
		Logger: logger,
	}
	hs.setupRoutes()
	return hs
}

// Run serves the API until the listener fails.
func (s *HttpServer) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *HttpServer) setupRoutes() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(s.logRequests())
	r.Use(measure())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health-data", s.listReadings)
	r.POST("/health-data", s.createReading)
	r.DELETE("/health-data/:id", s.deleteReading)
	r.GET("/health-data/insights", s.getInsights)

	s.engine = r
}

func (s *HttpServer) listReadings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "expected numeric user_id")
		return
	}

	mt := defs.MetricType(c.Query("metric_type"))
	if mt != "" && !mt.Valid() {
		c.String(http.StatusBadRequest, "unknown metric_type %s", mt)
		return
	}

	end := time.Now()
	start := end.Add(defs.LookbackInterval)
	if v := c.Query("end"); v != "" {
		endUnix, err := strconv.Atoi(v)
		if err != nil {
			c.String(http.StatusBadRequest, "expected unix timestamp for end")
			return
		}
		end = time.Unix(int64(endUnix), 0)
	}
	if v := c.Query("start"); v != "" {
		startUnix, err := strconv.Atoi(v)
		if err != nil {
			c.String(http.StatusBadRequest, "expected unix timestamp for start")
			return
		}
		start = time.Unix(int64(startUnix), 0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
	defer cancel()

	rs, err := s.Store.ReadReadings(ctx, userID, mt, start, end)
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong reading health data: %v", err)
		return
	}
	if rs == nil {
		rs = make([]defs.Reading, 0)
	}

	c.JSON(http.StatusOK, rs)
}

func (s *HttpServer) createReading(c *gin.Context) {
	var r defs.Reading
	if err := c.ShouldBindJSON(&r); err != nil {
		c.String(http.StatusBadRequest, "invalid reading payload: %v", err)
		return
	}

	switch {
	case r.UserID <= 0:
		c.String(http.StatusBadRequest, "expected positive user_id")
		return
	case !r.Type.Valid():
		c.String(http.StatusBadRequest, "unknown metric_type %s", r.Type)
		return
	case r.RecordedAt.IsZero():
		c.String(http.StatusBadRequest, "expected recorded_at")
		return
	case r.Type == defs.MetricBloodPressure && (r.Systolic == nil || r.Diastolic == nil):
		c.String(http.StatusBadRequest, "expected systolic and diastolic for blood pressure")
		return
	}
	if r.Unit == "" {
		r.Unit = defs.MetricUnits[r.Type]
	}

	ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
	defer cancel()

	res, err := s.Store.WriteReading(ctx, &r)
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong writing health data: %v", err)
		return
	}

	s.invalidate(ctx, r.UserID)

	status := http.StatusCreated
	if res.MatchedCount > 0 {
		status = http.StatusOK
	}
	c.JSON(status, r)
}

func (s *HttpServer) deleteReading(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "expected numeric user_id")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "expected numeric reading id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
	defer cancel()

	deleted, err := s.Store.DeleteReading(ctx, userID, id)
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong deleting health data: %v", err)
		return
	}
	if deleted == 0 {
		c.String(http.StatusNotFound, "no reading %d for user %d", id, userID)
		return
	}

	s.invalidate(ctx, userID)

	c.Status(http.StatusNoContent)
}

// getInsights serves the cached snapshot when one exists and derives a fresh
// one otherwise, caching the result on the way out. An explicit start/end
// window bypasses the cache entirely; snapshots are keyed per user and
// metric over the service lookback.
func (s *HttpServer) getInsights(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "expected numeric user_id")
		return
	}

	mt := defs.MetricType(c.Query("metric_type"))
	if !mt.Valid() {
		c.String(http.StatusBadRequest, "unknown metric_type %s", mt)
		return
	}

	now := time.Now()
	start, end := now.Add(defs.LookbackInterval), now
	windowed := false
	if v := c.Query("end"); v != "" {
		endUnix, err := strconv.Atoi(v)
		if err != nil {
			c.String(http.StatusBadRequest, "expected unix timestamp for end")
			return
		}
		end = time.Unix(int64(endUnix), 0)
		windowed = true
	}
	if v := c.Query("start"); v != "" {
		startUnix, err := strconv.Atoi(v)
		if err != nil {
			c.String(http.StatusBadRequest, "expected unix timestamp for start")
			return
		}
		start = time.Unix(int64(startUnix), 0)
		windowed = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
	defer cancel()

	if s.Cache != nil && !windowed {
		cached, err := s.Cache.GetInsights(ctx, userID, mt)
		if err != nil {
			s.Logger.Debug("unable to check insights cache", zap.Error(err))
		}
		if cached != nil {
			observeCacheLookup(true)
			c.JSON(http.StatusOK, cached)
			return
		}
		observeCacheLookup(false)
	}

	rs, err := s.Store.ReadReadings(ctx, userID, mt, start, end)
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong reading health data: %v", err)
		return
	}

	ins := s.Agg.Insights(rs, mt)
	snapshot := rcache.CachedInsights{CachedAt: now.UTC(), Insights: ins}

	if s.Cache != nil && !windowed {
		if err := s.Cache.PutInsights(ctx, userID, ins); err != nil {
			s.Logger.Debug("unable to cache insights", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, snapshot)
}

func (s *HttpServer) invalidate(ctx context.Context, userID int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		s.Logger.Debug("unable to invalidate insights cache", zap.Error(err))
	}
}
