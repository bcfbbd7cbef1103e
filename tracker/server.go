package tracker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vitalog/tracker/defs"
	"vitalog/tracker/pkg/analytics"
	"vitalog/tracker/pkg/discgo"
	"vitalog/tracker/pkg/http"
	"vitalog/tracker/pkg/mg"
	"vitalog/tracker/pkg/rcache"
	"vitalog/tracker/pkg/webhook"
)

const defaultAddr = ":4242"

type Server struct {
	Discord  *discgo.Discord
	Webhook  *webhook.Client
	Store    *mg.MongoStore
	Cache    *rcache.RedisCache
	HTTP     *http.HttpServer
	Logger   *zap.Logger
	Location *time.Location

	Aggregator analytics.Aggregator
	Alerts     defs.AlertConfig
}

func New(config defs.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
	defer cancel()

	var err error

	loc := time.Local
	if config.Timezone != "" {
		loc, err = time.LoadLocation(config.Timezone)
		if err != nil {
			return nil, err
		}
	}

	ms, err := mg.New(ctx, config.Mongo, defs.DefaultDB, config.Logger)
	if err != nil {
		return nil, err
	}

	rc, err := rcache.New(ctx, config.Redis, config.Logger)
	if err != nil {
		return nil, err
	}

	var dg *discgo.Discord
	if config.Discord.Token != "" {
		dg, err = discgo.New(config.Discord.Token, config.Discord.Guild, config.Logger, loc)
		if err != nil {
			return nil, err
		}
		if err := dg.Setup([]string{defs.AlertsChannel}); err != nil {
			return nil, err
		}
	}

	var wh *webhook.Client
	if config.Webhook.URL != "" {
		wh = webhook.New(config.Webhook.URL, config.Logger)
	}

	agg := analytics.Aggregator{Location: loc, Config: config.Analytics}
	hs := http.New(ms, rc, agg, config.Logger)

	config.Logger.Debug("finished server setup")

	return &Server{
		Discord:    dg,
		Webhook:    wh,
		Store:      ms,
		Cache:      rc,
		HTTP:       hs,
		Logger:     config.Logger,
		Location:   loc,
		Aggregator: agg,
		Alerts:     withAlertDefaults(config.Alerts),
	}, nil
}

// Run wires the server together and serves until the API listener fails.
// Background tasks run on their own tickers.
func Run(config defs.Config) {
	srv, err := New(config)
	if err != nil {
		panic(err)
	}

	go srv.ExecuteTask(defs.AlertInterval, srv.CheckAlerts)
	go srv.ExecuteTask(defs.RefreshInterval, srv.RefreshInsights)

	addr := config.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}
	if err := srv.HTTP.Run(addr); err != nil {
		panic(err)
	}
}

func (s *Server) ExecuteTask(interval time.Duration, task func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		task()
	}
}

func (s *Server) CheckAlerts() {
	al := Alerter{
		Store:       s.Store,
		Logger:      s.Logger,
		Location:    s.Location,
		AlertConfig: s.Alerts,
	}
	if s.Discord != nil {
		al.Messager = s.Discord
	}
	if s.Webhook != nil {
		al.Notifier = s.Webhook
	}

	if err := al.AnalyzeReadings(); err != nil {
		s.Logger.Debug("unable to analyze readings", zap.Error(err))
	}
}

func (s *Server) RefreshInsights() {
	rf := Refresher{
		Store:  s.Store,
		Cache:  s.Cache,
		Agg:    s.Aggregator,
		Logger: s.Logger,
	}
	if err := rf.RefreshInsights(); err != nil {
		s.Logger.Debug("unable to refresh insights", zap.Error(err))
	}
}
