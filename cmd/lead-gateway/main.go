// cmd/lead-gateway/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lead-capture-workers/internal/capture"
	"lead-capture-workers/internal/common/config"
	"lead-capture-workers/internal/common/database"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/common/metrics"
	"lead-capture-workers/internal/gateway"
	"lead-capture-workers/internal/leadstore"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead gateway...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateCapture(cfg); err != nil {
		zapLog.Fatal("capture config invalid", zap.Error(err))
	}

	ctx := context.Background()

	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis init failed", zap.Error(err))
	}
	if err := redis.Ping(ctx); err != nil {
		zapLog.Fatal("redis unreachable", zap.Error(err))
	}
	defer redis.Close()

	payloadTTL := time.Duration(cfg.Gateway.PayloadTTL) * time.Second
	store := leadstore.NewRedisStore(redis, payloadTTL)

	engine, err := capture.Init(cfg.Capture, log, func(correlationID string, err error) {
		if err != nil {
			metrics.TransmissionsTotal.WithLabelValues("failure").Inc()
			log.Warn("payload transmission failed", map[string]interface{}{
				"correlation_id": correlationID,
				"error":          err.Error(),
			})
			return
		}
		metrics.TransmissionsTotal.WithLabelValues("success").Inc()
	})
	if err != nil {
		zapLog.Fatal("capture engine init failed", zap.Error(err))
	}

	server, err := gateway.NewServer(engine, store, log)
	if err != nil {
		zapLog.Fatal("gateway server init failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:    cfg.Gateway.ListenAddr,
		Handler: server.Handler(),
	}

	go func() {
		zapLog.Info("gateway listening", zap.String("addr", cfg.Gateway.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("gateway server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutting down lead gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	// Drain in-flight payload transmissions before the process exits.
	engine.Flush()
}
