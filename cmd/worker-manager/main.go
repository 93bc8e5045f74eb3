// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"volunteer-match-workers/internal/common/camunda"
	"volunteer-match-workers/internal/common/config"
	"volunteer-match-workers/internal/common/database"
	"volunteer-match-workers/internal/common/logger"
	"volunteer-match-workers/internal/common/metrics"
	"volunteer-match-workers/internal/common/observability"

	// Matching Workers (4)
	cms "volunteer-match-workers/internal/workers/matching/compute-match-score"
	it "volunteer-match-workers/internal/workers/matching/improvement-tip"
	rmb "volunteer-match-workers/internal/workers/matching/rank-members"
	rms "volunteer-match-workers/internal/workers/matching/rank-missions"

	// Mission Discovery Workers (1)
	sm "volunteer-match-workers/internal/workers/missions/search-missions"

	// Engagement Workers (1)
	rp "volunteer-match-workers/internal/workers/engagement/record-participation"

	// Communication Workers (1)
	mn "volunteer-match-workers/internal/workers/communication/match-notify"
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

	// Wrap zap logger with our logger interface
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
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
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
		// Test the connection with context
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
		// Test the connection
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
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	profileCacheTTL := time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second

	// --- START: Register ALL 7 Workers ---

	// --- 1. Matching Workers (4) ---
	if config.IsWorkerEnabled(cfg, cms.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, cms.TaskType)
		handler := cms.NewHandler(
			&cms.Config{
				CacheTTL: profileCacheTTL,
				Timeout:  config.GetDuration(wcfg.Timeout),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, cms.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, rms.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rms.TaskType)
		handler := rms.NewHandler(
			&rms.Config{
				MaxItems: cfg.Matching.MaxRankedItems,
				CacheTTL: profileCacheTTL,
				Timeout:  config.GetDuration(wcfg.Timeout),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, rms.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, rmb.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rmb.TaskType)
		handler := rmb.NewHandler(
			&rmb.Config{
				MaxItems: cfg.Matching.MaxRankedItems,
				Timeout:  config.GetDuration(wcfg.Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, rmb.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if config.IsWorkerEnabled(cfg, it.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, it.TaskType)
		handler := it.NewHandler(
			&it.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			log,
		)
		startWorker(zeebeClient, it.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 2. Mission Discovery Workers (1) ---
	if config.IsWorkerEnabled(cfg, sm.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, sm.TaskType)
		handler := sm.NewHandler(
			&sm.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, sm.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 3. Engagement Workers (1) ---
	if config.IsWorkerEnabled(cfg, rp.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rp.TaskType)
		rpCfg := rp.LoadConfig()
		rpCfg.Timeout = config.GetDuration(wcfg.Timeout)
		handler := rp.NewHandler(rpCfg, pg.DB, redis.Client, log)
		startWorker(zeebeClient, rp.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 4. Communication Workers (1) ---
	if config.IsWorkerEnabled(cfg, mn.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, mn.TaskType)
		handler, err := mn.NewHandler(
			&mn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SenderID:     cfg.Notifications.SMS.SenderID,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      config.GetDuration(wcfg.Timeout),
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create match-notify handler", zap.Error(err))
		}
		startWorker(zeebeClient, mn.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	zapLog.Info("All 7 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		timer := prometheus.NewTimer(metrics.WorkerJobDuration.WithLabelValues(taskType))
		handlerFunc(jobClient, job)
		timer.ObserveDuration()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		obs.RecordJobProcessed(context.Background(), "processed")
		obs.RecordJobDuration(context.Background(), time.Since(start), "processed")
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
