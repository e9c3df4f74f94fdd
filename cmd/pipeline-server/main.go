// cmd/pipeline-server/main.go
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

	"go.uber.org/zap"

	"talent-pipeline/internal/common/config"
	"talent-pipeline/internal/common/database"
	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/common/observability"
	"talent-pipeline/internal/notify"
	"talent-pipeline/internal/pipeline"
	"talent-pipeline/internal/repository"
	"talent-pipeline/internal/search"
	"talent-pipeline/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting pipeline server",
		zap.String("environment", cfg.App.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	obs := observability.New("pipeline-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Postgres ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "Postgres connection")
	if err != nil {
		zapLog.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	var repo repository.ApplicationRepository = repository.NewPostgresRepository(pg.DB, log)

	// --- Redis cache (optional) ---
	if cfg.Database.Redis.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := rdb.Ping(ctx); err != nil {
			zapLog.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			defer rdb.Close()
			ttl := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
			repo = repository.NewCachedRepository(repo, rdb.Client, ttl, log)
			zapLog.Info("application cache enabled", zap.Duration("ttl", ttl))
		}
	}

	// --- Notification dispatcher ---
	var dispatcher notify.Dispatcher = notify.NoopDispatcher{}
	if cfg.Notifications.EmailEnabled || cfg.Notifications.SMSEnabled {
		directory := notify.NewSQLContactDirectory(pg.DB)
		awsDispatcher, err := notify.NewAWSDispatcher(ctx, notify.Config{
			EmailEnabled: cfg.Notifications.EmailEnabled,
			SMSEnabled:   cfg.Notifications.SMSEnabled,
			FromEmail:    cfg.Notifications.FromEmail,
			AWSRegion:    cfg.Notifications.AWSRegion,
		}, directory, log)
		if err != nil {
			zapLog.Fatal("dispatcher init failed", zap.Error(err))
		}
		dispatcher = awsDispatcher
	}

	orch := pipeline.NewOrchestrator(repo, dispatcher, log).WithObservability(obs)

	// --- Search index (optional) ---
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("elasticsearch init failed, running without search index", zap.Error(err))
		} else {
			orch = orch.WithIndexer(search.NewIndexer(es.Client, cfg.Database.Elasticsearch.Index, log))
			zapLog.Info("search indexing enabled", zap.String("index", cfg.Database.Elasticsearch.Index))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewServer(orch, log).Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}
