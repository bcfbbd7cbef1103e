package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/discgo"
	"vitalog/tracker/pkg/mg"
	"vitalog/tracker/pkg/webhook"
)

const (
	HighGlucoseLabel = "High Glucose"
	LowGlucoseLabel  = "Low Glucose"
	BPCrisisLabel    = "Hypertensive Crisis"
)

// Only readings this recent can trip an alert.
const alertLookback = -12 * time.Hour

const (
	defaultGlucoseLow    = 70
	defaultGlucoseHigh   = 180
	defaultSystolicHigh  = 180
	defaultDiastolicHigh = 120
)

func withAlertDefaults(cfg defs.AlertConfig) defs.AlertConfig {
	if cfg.GlucoseLow == 0 {
		cfg.GlucoseLow = defaultGlucoseLow
	}
	if cfg.GlucoseHigh == 0 {
		cfg.GlucoseHigh = defaultGlucoseHigh
	}
	if cfg.SystolicHigh == 0 {
		cfg.SystolicHigh = defaultSystolicHigh
	}
	if cfg.DiastolicHigh == 0 {
		cfg.DiastolicHigh = defaultDiastolicHigh
	}
	return cfg
}

type AlerterStore interface {
	mg.ReadingStore
	mg.AlertStore
}

// Alerter checks each user's latest readings against the configured
// thresholds and fans out alerts. A label that alerted within the cooldown
// stays quiet.
type Alerter struct {
	Messager discgo.Messager
	Notifier webhook.Notifier
	Store    AlerterStore

	Logger      *zap.Logger
	Location    *time.Location
	AlertConfig defs.AlertConfig
}

func (an *Alerter) AnalyzeReadings() error {
	ctx := context.Background()

	users, err := an.Store.DistinctUsers(ctx)
	if err != nil {
		return fmt.Errorf("unable to list users: %w", err)
	}

	for _, userID := range users {
		if err := an.analyzeUser(ctx, userID); err != nil {
			an.Logger.Debug("unable to analyze readings",
				zap.Int64("userID", userID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (an *Alerter) analyzeUser(ctx context.Context, userID int64) error {
	now := time.Now()
	start := now.Add(alertLookback)

	inhibited := make(map[string]bool)
	alerts, _ := an.Store.ReadAlerts(ctx, userID, now.Add(-defs.AlertCooldown), now)
	for _, alert := range alerts {
		inhibited[alert.Label] = true
	}

	sugars, err := an.Store.ReadReadings(ctx, userID, defs.MetricBloodSugar, start, now)
	if err != nil {
		return err
	}
	if len(sugars) > 0 {
		recentVal := sugars[len(sugars)-1].Value

		if recentVal >= an.AlertConfig.GlucoseHigh && !inhibited[HighGlucoseLabel] {
			if err := an.genAndSendAlert(ctx, userID, defs.MetricBloodSugar, HighGlucoseLabel,
				fmt.Sprintf("current value: %.0f ≥ %.0f mg/dL", recentVal, an.AlertConfig.GlucoseHigh),
			); err != nil {
				return err
			}
		} else if recentVal <= an.AlertConfig.GlucoseLow && !inhibited[LowGlucoseLabel] {
			if err := an.genAndSendAlert(ctx, userID, defs.MetricBloodSugar, LowGlucoseLabel,
				fmt.Sprintf("current value: %.0f ≤ %.0f mg/dL", recentVal, an.AlertConfig.GlucoseLow),
			); err != nil {
				return err
			}
		}
	}

	pressures, err := an.Store.ReadReadings(ctx, userID, defs.MetricBloodPressure, start, now)
	if err != nil {
		return err
	}
	for i := len(pressures) - 1; i >= 0; i-- {
		r := pressures[i]
		if r.Systolic == nil || r.Diastolic == nil {
			continue
		}
		if (*r.Systolic >= an.AlertConfig.SystolicHigh || *r.Diastolic >= an.AlertConfig.DiastolicHigh) &&
			!inhibited[BPCrisisLabel] {
			return an.genAndSendAlert(ctx, userID, defs.MetricBloodPressure, BPCrisisLabel,
				fmt.Sprintf("current value: %.0f/%.0f mmHg", *r.Systolic, *r.Diastolic),
			)
		}
		break
	}

	return nil
}

func (an *Alerter) genAndSendAlert(ctx context.Context, userID int64, metric defs.MetricType, label, reason string) error {
	alert := defs.Alert{
		UserID: userID,
		Time:   time.Now(),
		Metric: metric,
		Label:  label,
		Reason: reason,
	}
	if _, err := an.Store.WriteAlert(ctx, &alert); err != nil {
		return err
	}

	if an.Messager != nil {
		embed := defs.EmbedData{
			Fields: []defs.EmbedField{
				{
					Name:  "⚠️ " + label,
					Value: reason,
				},
			},
		}

		_, err := an.Messager.SendMessage(defs.MessageData{
			Content:         "@everyone",
			Embeds:          []defs.EmbedData{embed},
			MentionEveryone: true,
		}, defs.AlertsChannel)
		if err != nil {
			return err
		}
	}

	if an.Notifier != nil {
		if err := an.Notifier.Notify(ctx, alert); err != nil {
			return err
		}
	}

	return nil
}
