package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwangi254/geoclock/internal/config"
	"github.com/mwangi254/geoclock/internal/ingestion"
	"github.com/mwangi254/geoclock/internal/liveregistry"
	"github.com/mwangi254/geoclock/internal/metrics"
	"github.com/mwangi254/geoclock/internal/monitor"
	"github.com/mwangi254/geoclock/internal/notifier"
	"github.com/mwangi254/geoclock/internal/scanner"
	"github.com/mwangi254/geoclock/internal/store"
	"github.com/mwangi254/geoclock/internal/store/postgres"
	"github.com/mwangi254/geoclock/internal/telegram"
	"github.com/mwangi254/geoclock/internal/telegram/handlers"
	"github.com/mwangi254/geoclock/pkg/logger"
)

const (
	notifyRatePerSecond = 10
	notifyBurst         = 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("starting geoclock...")

	dbs, err := config.OpenAll(cfg.Databases, "migrations", l)
	if err != nil {
		l.Fatalf("failed to open databases: %v", err)
	}
	defer func() {
		for _, db := range dbs {
			db.Close()
		}
	}()

	stores := make([]store.Store, 0, len(dbs))
	for _, db := range dbs {
		stores = append(stores, postgres.New(db.ProjectName, db.DB))
	}
	storeRegistry := store.NewRegistry(stores...)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	liveReg := liveregistry.New()
	sweeper := liveregistry.NewSweeper(liveReg, storeRegistry, l)
	sweeper.SetMetrics(m)

	ingestor := ingestion.New(liveReg, storeRegistry, ingestion.NewChatSessionMap(), l)
	ingestor.SetMetrics(m)

	bot, err := telegram.NewBot(cfg.TelegramToken, ingestor, l)
	if err != nil {
		l.Fatalf("failed to create telegram bot: %v", err)
	}

	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("test", handlers.NewTestHandler(l))
	bot.RegisterCommand("app", handlers.NewAppHandler(cfg.WebAppURL, l))
	bot.RegisterCommand("location", handlers.NewLocationHandler(l))
	bot.RegisterCommand("live", handlers.NewLiveHandler(l))

	sc := scanner.New(storeRegistry, l)
	n := notifier.New(bot, l, notifyRatePerSecond, notifyBurst, cfg.NotificationsEnabled)

	loop := monitor.New(monitor.Config{
		CheckInterval:   cfg.CheckInterval,
		MaxLocationAge:  cfg.MaxLocationAge,
		DefaultTimezone: cfg.DefaultTZ,
	}, storeRegistry, sc, n, m, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("received shutdown signal...")
		if cfg.MonitoringEnabled {
			loop.Stop()
		}
		cancelSweep()
		cancel()
	}()

	go sweeper.Run(sweepCtx)

	if cfg.MonitoringEnabled {
		loop.Start(context.Background())
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:    ":" + cfg.PrometheusPort,
		Handler: metricsMux,
	}

	go func() {
		l.Infof("metrics server listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("metrics server error: %v", err)
		}
	}()

	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("bot error: %v", err)
		}
	}()

	l.Info("geoclock started successfully")

	<-ctx.Done()

	l.Info("shutting down metrics server...")
	metricsServer.Close()

	l.Info("geoclock stopped")
}
