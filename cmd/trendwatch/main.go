package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dexpulse/trendwatch/internal/alerts"
	"github.com/dexpulse/trendwatch/internal/config"
	"github.com/dexpulse/trendwatch/internal/gecko"
	"github.com/dexpulse/trendwatch/internal/metrics"
	"github.com/dexpulse/trendwatch/internal/processor"
	"github.com/dexpulse/trendwatch/internal/scheduler"
	"github.com/dexpulse/trendwatch/internal/snapshot"
	"github.com/dexpulse/trendwatch/internal/state"
	"github.com/dexpulse/trendwatch/internal/storage"
	"github.com/dexpulse/trendwatch/internal/telegram"
	"github.com/dexpulse/trendwatch/internal/trend"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	log.Info("Starting trendwatch service...")

	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"environment":    cfg.Environment,
		"networks":       cfg.Networks,
		"trending_size":  cfg.TopN,
		"windows_mins":   cfg.WindowsMins,
		"poll_interval":  cfg.PollInterval.String(),
		"alerts_enabled": cfg.AlertsEnabled,
		"alert_mode":     cfg.AlertMode,
	}).Info("Configuration loaded")

	// Initialize state database
	db, err := storage.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open state database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("Failed to run database migrations")
	}

	log.Info("Database ready")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the checkpoint
	botState, err := state.Load(ctx, db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load persisted state")
	}

	// Initialize clients
	geckoClient := gecko.NewClient(cfg, log)
	tgClient := telegram.New(cfg, log)

	log.Info("API clients initialized")

	// Ranking pipeline
	weights := trend.Weights{
		ShortVolume:  cfg.WeightVolume,
		PriceChange:  cfg.WeightPrice,
		TradeCount:   cfg.WeightTrades,
		SpikeRatio:   cfg.WeightSpike,
		Liquidity:    cfg.WeightLiq,
		NetBuyVolume: cfg.WeightNetBuy,
	}
	scorer := trend.NewScorer(geckoClient, weights, log)
	ranker := trend.NewFallback(scorer, cfg.WindowsMins, cfg.TopN, log)

	// Snapshot lifecycle and alert pipeline
	publisher := snapshot.NewManager(tgClient, botState, log)

	var scanner processor.AlertScanner
	if cfg.AlertsEnabled {
		sender := createAlertSender(cfg, tgClient, log)
		scanner = alerts.NewNotifier(cfg.AlertPriceChangePct, cfg.AlertCooldown, sender, botState, log)
		log.WithField("alert_mode", cfg.AlertMode).Info("Alert sender initialized")
	}

	proc := processor.New(geckoClient, ranker, publisher, scanner, cfg.Networks, cfg.PoolPageSize, log)

	// Start HTTP server (health + metrics)
	go startHTTPServer(cfg.HealthPort, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	// Ticks align to wall-clock boundaries; the first run waits for the
	// upcoming boundary rather than firing at startup.
	jobs := []*scheduler.Job{
		{Name: "trending", Interval: cfg.PollInterval, Run: proc.PublishSnapshots},
	}
	if cfg.AlertsEnabled {
		jobs = append(jobs, &scheduler.Job{
			Name:     "alerts",
			Interval: cfg.PollInterval,
			Offset:   cfg.AlertOffset,
			Run:      proc.ScanAlerts,
		})
	}

	log.Info("Starting polling loop")
	scheduler.New(log, jobs...).Run(ctx)

	log.Info("Graceful shutdown complete")
}

func createAlertSender(cfg *config.Config, tgClient *telegram.Client, log *logrus.Logger) alerts.Sender {
	modes := strings.Split(cfg.AlertMode, ",")
	for i, mode := range modes {
		modes[i] = strings.TrimSpace(mode)
	}

	senders := []alerts.Sender{}
	for _, mode := range modes {
		switch mode {
		case "log":
			senders = append(senders, alerts.NewLogSender(log))
		case "telegram":
			senders = append(senders, alerts.NewTelegramSender(tgClient, log))
		default:
			log.WithField("mode", mode).Warn("Unknown alert mode, skipping")
		}
	}

	if len(senders) == 0 {
		log.Warn("No valid alert senders configured, using log")
		return alerts.NewLogSender(log)
	}
	if len(senders) == 1 {
		return senders[0]
	}
	return alerts.NewMultiSender(senders...)
}

func startHTTPServer(port int, log *logrus.Logger) {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy"}`)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ready"}`)
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.WithField("port", port).Info("Starting HTTP server (health + metrics)")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("HTTP server failed")
	}
}
