package analytics

import (
	"time"

	"vitalog/tracker/defs"
)

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// Bucket boundaries, local hour. Evening wraps across midnight.
const (
	morningStartHour   = 5
	afternoonStartHour = 12
	eveningStartHour   = 17
)

// Classify buckets a point's timestamp into morning/afternoon/evening by its
// hour in loc. A nil loc keeps the timestamp's own location.
func Classify(tp defs.TimePoint, loc *time.Location) TimeOfDay {
	return ClassifyTime(tp.GetTime(), loc)
}

func ClassifyTime(t time.Time, loc *time.Location) TimeOfDay {
	if loc != nil {
		t = t.In(loc)
	}
	switch h := t.Hour(); {
	case h >= morningStartHour && h < afternoonStartHour:
		return Morning
	case h >= afternoonStartHour && h < eveningStartHour:
		return Afternoon
	default:
		return Evening
	}
}

// FilterByTimeOfDay returns the readings classified into bucket, preserving
// their relative order.
func FilterByTimeOfDay(rs []defs.Reading, bucket TimeOfDay, loc *time.Location) []defs.Reading {
	filtered := make([]defs.Reading, 0)
	for i := range rs {
		if Classify(&rs[i], loc) == bucket {
			filtered = append(filtered, rs[i])
		}
	}
	return filtered
}
