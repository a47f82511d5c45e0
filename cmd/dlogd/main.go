// Package main runs the dlog node: the Ω ledger, its HTTP API, the block
// ticker and the sky scheduler, behind CORS, rate limiting and metrics.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	app "github.com/dlog-universe/dlogd/internal/app"
	"github.com/dlog-universe/dlogd/internal/app/httpapi"
	"github.com/dlog-universe/dlogd/internal/app/metrics"
	"github.com/dlog-universe/dlogd/internal/config"
	"github.com/dlog-universe/dlogd/internal/middleware"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

func main() {
	configPath := flag.String("config", "dlog.yaml", "Path to node config file")
	bindAddr := flag.String("bind", "", "Listen address override")
	journalPath := flag.String("journal", "", "JSONL journal path override")
	flag.Parse()

	// Environment variable overrides
	if v := os.Getenv("DLOG_CONFIG"); v != "" {
		*configPath = v
	}
	if v := os.Getenv("DLOG_BIND_ADDR"); v != "" {
		*bindAddr = v
	}
	if v := os.Getenv("DLOG_JOURNAL_PATH"); v != "" {
		*journalPath = v
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault("dlogd").Fatalf("load config: %v", err)
	}
	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}
	if *journalPath != "" {
		cfg.JournalPath = *journalPath
	}
	if v := os.Getenv("DLOG_BLOCK_TIME_SECONDS"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			cfg.Monetary.TargetBlockTimeSeconds = secs
		}
	}

	log := logger.New(cfg.Logging).WithField("component", "dlogd")
	log.WithField("node", cfg.NodeName).
		WithField("bind_addr", cfg.BindAddr).
		Info("starting dlog node")

	application, err := app.New(*cfg, app.Stores{}, log)
	if err != nil {
		log.Fatalf("build application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("start application: %v", err)
	}
	log.Info("services started")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", httpapi.NewHandler(application))

	cors := middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	limiter.StartCleanup(time.Minute)

	handler := cors.Handler(limiter.Handler(metrics.InstrumentHandler(mux)))

	server := &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.BindAddr).Info("api listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("application stop")
	}

	log.Info("dlog node stopped")
}
