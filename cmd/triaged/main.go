// cmd/triaged/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sshreyx1/hot-triage/internal/api"
	"github.com/sshreyx1/hot-triage/internal/common/cache"
	"github.com/sshreyx1/hot-triage/internal/common/config"
	"github.com/sshreyx1/hot-triage/internal/common/logger"
	"github.com/sshreyx1/hot-triage/internal/common/observability"
	"github.com/sshreyx1/hot-triage/internal/diagnosis"
	"github.com/sshreyx1/hot-triage/internal/infermedica"
	"github.com/sshreyx1/hot-triage/internal/symptoms"
	"github.com/sshreyx1/hot-triage/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zapLog := logger.New("info", "console")
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting diagnosis proxy",
		zap.String("service", cfg.App.Name),
		zap.Int("port", cfg.Server.Port),
		zap.Float64("highThreshold", cfg.Triage.HighProbability),
		zap.Float64("significantThreshold", cfg.Triage.SignificantProbability),
		zap.Int("minEvidence", cfg.Triage.MinEvidence),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cacheClient *cache.Client
	if cfg.Cache.Enabled {
		cacheClient = cache.New(cfg.Cache)
		if err := cacheClient.Ping(ctx); err != nil {
			// The cache is an optimization; the proxy runs without it.
			zapLog.Warn("parse cache unavailable, continuing without it", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	engineClient := infermedica.NewClient(cfg.Engine, log, obs)
	parseSvc := symptoms.NewService(engineClient, cacheClient, config.GetDuration(cfg.Cache.TTL), log)
	diagSvc := diagnosis.NewService(engineClient, triage.FromConfig(cfg.Triage), log)

	server := api.NewServer(cfg, parseSvc, diagSvc, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Handler(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown failed", zap.Error(err))
	}
}
