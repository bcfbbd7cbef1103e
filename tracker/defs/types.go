package defs

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimePoint interface {
	GetTime() time.Time
}

type MetricType string

const (
	MetricBloodPressure MetricType = "blood_pressure"
	MetricBloodSugar    MetricType = "blood_sugar"
	MetricWeight        MetricType = "weight"
	MetricHeartRate     MetricType = "heart_rate"
	MetricTemperature   MetricType = "temperature"
)

// MetricUnits holds the canonical display unit per metric type.
var MetricUnits = map[MetricType]string{
	MetricBloodPressure: "mmHg",
	MetricBloodSugar:    "mg/dL",
	MetricWeight:        "lbs",
	MetricHeartRate:     "bpm",
	MetricTemperature:   "°F",
}

func AllMetricTypes() []MetricType {
	return []MetricType{
		MetricBloodPressure,
		MetricBloodSugar,
		MetricWeight,
		MetricHeartRate,
		MetricTemperature,
	}
}

func (mt MetricType) Valid() bool {
	_, ok := MetricUnits[mt]
	return ok
}

// Reading is one health observation. RecordedAt is the clinically relevant
// time, distinct from CreatedAt/UpdatedAt which the store stamps on write.
// Systolic and Diastolic are only set for blood pressure readings.
type Reading struct {
	OID        *primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID         int64               `bson:"id" json:"id"`
	UserID     int64               `bson:"user_id" json:"user_id"`
	Type       MetricType          `bson:"metric_type" json:"metric_type"`
	Value      float64             `bson:"value" json:"value"`
	Unit       string              `bson:"unit" json:"unit"`
	Systolic   *float64            `bson:"systolic,omitempty" json:"systolic,omitempty"`
	Diastolic  *float64            `bson:"diastolic,omitempty" json:"diastolic,omitempty"`
	Notes      string              `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedAt time.Time           `bson:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

func (r *Reading) GetTime() time.Time {
	return r.RecordedAt
}

type Alert struct {
	ID     *primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID int64               `bson:"user_id" json:"user_id"`
	Time   time.Time           `bson:"time" json:"time"`
	Metric MetricType          `bson:"metric_type" json:"metric_type"`
	Label  string              `bson:"label" json:"label"`
	Reason string              `bson:"reason" json:"reason"`
}

func (al *Alert) GetTime() time.Time {
	return al.Time
}

type MessageData struct {
	Content         string
	Embeds          []EmbedData
	Files           []FileData
	MentionEveryone bool
}

type EmbedData struct {
	Title       string
	Description string
	Fields      []EmbedField
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type FileData struct {
	Name   string
	Reader io.Reader
}
