package defs

import (
	"time"

	"go.uber.org/zap"
)

const DefaultDB = "vitalog"

// Intervals.
const (
	LookbackInterval = -30 * 24 * time.Hour
	AlertInterval    = 1 * time.Minute
	RefreshInterval  = 5 * time.Minute
	AlertCooldown    = 1 * time.Hour
	TimeoutInterval  = 2 * time.Second
)

// Channels.
const (
	AlertsChannel = "alerts"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	Discord   DiscordConfig   `yaml:"discord"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Alerts    AlertConfig     `yaml:"alerts"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Timezone  string          `yaml:"timezone"`
	Logger    *zap.Logger     `yaml:"_,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DiscordConfig struct {
	Token string `yaml:"token"`
	Guild string `yaml:"guild"`
}

type WebhookConfig struct {
	URL string `yaml:"url"`
}

// AlertConfig holds the thresholds the alerter compares the latest readings
// against. Glucose values are mg/dL, pressure values mmHg.
type AlertConfig struct {
	GlucoseLow    float64 `yaml:"glucoseLow"`
	GlucoseHigh   float64 `yaml:"glucoseHigh"`
	SystolicHigh  float64 `yaml:"systolicHigh"`
	DiastolicHigh float64 `yaml:"diastolicHigh"`
}

// AnalyticsConfig overrides the analytics package defaults. Zero values fall
// back to the named defaults exposed there.
type AnalyticsConfig struct {
	AnomalySigma float64 `yaml:"anomalySigma"`
	TrendEpsilon float64 `yaml:"trendEpsilon"`
	HeightMeters float64 `yaml:"heightMeters"`
}
