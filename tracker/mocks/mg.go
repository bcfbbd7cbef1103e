package mocks

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"vitalog/tracker/defs"
)

// Store keeps readings and alerts in memory with the same dedup and ordering
// behaviour as the mongo store.
type Store struct {
	Readings []defs.Reading
	Alerts   []defs.Alert

	nextID int64
}

func (s *Store) WriteReading(_ context.Context, r *defs.Reading) (*mongo.UpdateResult, error) {
	for i := range s.Readings {
		existing := &s.Readings[i]
		if existing.UserID == r.UserID && existing.Type == r.Type && existing.RecordedAt.Equal(r.RecordedAt) {
			*r = *existing
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		}
	}

	s.nextID++
	now := time.Now().UTC()
	r.ID = s.nextID
	r.CreatedAt = now
	r.UpdatedAt = now
	s.Readings = append(s.Readings, *r)

	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (s *Store) ReadReadings(_ context.Context, userID int64, mt defs.MetricType, start, end time.Time) ([]defs.Reading, error) {
	rs := make([]defs.Reading, 0)
	for _, r := range s.Readings {
		if r.UserID != userID {
			continue
		}
		if mt != "" && r.Type != mt {
			continue
		}
		if r.RecordedAt.Before(start) || r.RecordedAt.After(end) {
			continue
		}
		rs = append(rs, r)
	}

	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].RecordedAt.Before(rs[j].RecordedAt)
	})
	return rs, nil
}

func (s *Store) DeleteReading(_ context.Context, userID, id int64) (int64, error) {
	for i := range s.Readings {
		if s.Readings[i].UserID == userID && s.Readings[i].ID == id {
			s.Readings = append(s.Readings[:i], s.Readings[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) DistinctUsers(_ context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	users := make([]int64, 0)
	for _, r := range s.Readings {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			users = append(users, r.UserID)
		}
	}
	return users, nil
}

func (s *Store) WriteAlert(_ context.Context, al *defs.Alert) (*mongo.UpdateResult, error) {
	s.Alerts = append(s.Alerts, *al)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (s *Store) ReadAlerts(_ context.Context, userID int64, start, end time.Time) ([]defs.Alert, error) {
	alerts := make([]defs.Alert, 0)
	for _, al := range s.Alerts {
		if al.UserID != userID {
			continue
		}
		if al.Time.Before(start) || al.Time.After(end) {
			continue
		}
		alerts = append(alerts, al)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Time.Before(alerts[j].Time)
	})
	return alerts, nil
}
