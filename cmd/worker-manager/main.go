// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lead-capture-workers/internal/common/camunda"
	"lead-capture-workers/internal/common/config"
	"lead-capture-workers/internal/common/database"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/common/observability"
	"lead-capture-workers/internal/leadstore"
	"lead-capture-workers/internal/notify"
	"lead-capture-workers/internal/records"
	"lead-capture-workers/internal/sinks/search"
	"lead-capture-workers/internal/sinks/zoho"
	"lead-capture-workers/pkg/registry"

	dr "lead-capture-workers/internal/workers/leadpipeline/deliver-record"
	ear "lead-capture-workers/internal/workers/leadpipeline/extract-ai-response"
	nl "lead-capture-workers/internal/workers/leadpipeline/normalize-lead"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Task registry (informational; logs what this deployment claims) ---
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("task registry not loaded", zap.Error(err), zap.String("path", cfg.Registry.Path))
	} else {
		zapLog.Info("task registry loaded",
			zap.String("version", reg.Version),
			zap.Int("tasks", len(reg.Tasks)),
		)
	}

	// --- Shared pipeline services ---
	payloadTTL := time.Duration(cfg.Gateway.PayloadTTL) * time.Second
	store := leadstore.NewRedisStore(redis, payloadTTL)
	repo := records.NewPostgresRepository(pg)
	crmClient := zoho.NewCRMClient(cfg.Integrations.Zoho.APIKey, cfg.Integrations.Zoho.AuthToken)
	indexer := search.NewIndexer(esClient, cfg.Database.Elasticsearch.LeadIndex)

	notifier, err := notify.NewNotifier(ctx, cfg.Notifications, cfg.Integrations.AWS.Region, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- Register pipeline workers ---
	var workers []*camunda.CamundaWorker

	earWcfg := config.GetWorkerConfig(cfg, ear.TaskType)
	earCfg := ear.LoadConfig()
	earCfg.Timeout = jobTimeout(earWcfg, earCfg.Timeout)
	workers = appendWorker(workers, zeebeClient, ear.TaskType, earWcfg,
		ear.NewHandler(earCfg, log), log, zapLog)

	nlWcfg := config.GetWorkerConfig(cfg, nl.TaskType)
	nlCfg := nl.LoadConfig()
	nlCfg.Timeout = jobTimeout(nlWcfg, nlCfg.Timeout)
	workers = appendWorker(workers, zeebeClient, nl.TaskType, nlWcfg,
		nl.NewHandler(nlCfg, store, log), log, zapLog)

	drWcfg := config.GetWorkerConfig(cfg, dr.TaskType)
	drCfg := dr.LoadConfig()
	drCfg.Timeout = jobTimeout(drWcfg, drCfg.Timeout)
	workers = appendWorker(workers, zeebeClient, dr.TaskType, drWcfg,
		dr.NewHandler(drCfg, repo, crmClient, indexer, notifier, log), log, zapLog)

	// --- Metrics and pprof endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("metrics endpoint listening", zap.String("addr", ":8080"))
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Wait for shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutting down worker manager...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, w := range workers {
		w.Stop(stopCtx)
	}
	camundaClient.Close()
}

func jobTimeout(wcfg config.WorkerConfig, fallback time.Duration) time.Duration {
	if wcfg.Timeout > 0 {
		return time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return fallback
}

func appendWorker(
	workers []*camunda.CamundaWorker,
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler camunda.JobHandler,
	log logger.Logger,
	zapLog *zap.Logger,
) []*camunda.CamundaWorker {
	if !wcfg.Enabled {
		zapLog.Info("worker disabled", zap.String("taskType", taskType))
		return workers
	}

	w := camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, jobTimeout(wcfg, 30*time.Second), handler, log)
	w.Start()
	return append(workers, w)
}
