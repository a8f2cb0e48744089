// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/database"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/common/observability"
	"smartfarm-backend/internal/notify"
	"smartfarm-backend/internal/search"
	"smartfarm-backend/internal/server"
	"smartfarm-backend/internal/store"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func bindAddress() string {
	if port := os.Getenv("PORT"); port != "" {
		return net.JoinHostPort("0.0.0.0", port)
	}
	return "0.0.0.0:8000"
}

func main() {
	configPath := pflag.String("config", "", "path to config file")
	bind := pflag.String("bind", bindAddress(), "listen address")
	pflag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting backend server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("bind", *bind),
	)

	obs := observability.New("smartfarm-server")
	defer obs.Shutdown()

	tracing := observability.NewTracing("smartfarm-server", os.Getenv("JAEGER_ENDPOINT"))
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init SQL store with retry ---
	var sqlClient *database.SQLClient
	err = retryWithBackoff(func() error {
		var err error
		sqlClient, err = database.Open(cfg.Database)
		if err != nil {
			return err
		}
		return sqlClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "database connection")
	if err != nil {
		zapLog.Fatal("database failed after retries", zap.Error(err))
	}
	defer sqlClient.Close()
	zapLog.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	st := store.New(sqlClient.DB)
	if err := st.Migrate(ctx); err != nil {
		zapLog.Fatal("migration failed", zap.Error(err))
	}

	// --- Init Redis cache, optional ---
	var cache *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			cache, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return cache.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("Redis unavailable, control status will not be cached", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Init Elasticsearch mirror, optional ---
	var searcher server.Searcher
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("Elasticsearch unavailable, report search disabled", zap.Error(err))
		} else {
			searcher = search.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Init alert notifier ---
	var alerts server.AlertSender
	if cfg.Alerts.Enabled {
		notifier, err := notify.New(ctx, cfg.Alerts, st, log)
		if err != nil {
			zapLog.Warn("alert notifier init failed, alerts disabled", zap.Error(err))
		} else {
			alerts = notifier
			zapLog.Info("Alert notifier initialized")
		}
	}

	api := server.New(cfg.Server, st, cache, searcher, alerts, log)

	srv := &http.Server{
		Addr:         *bind,
		Handler:      api.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		zapLog.Debug("sd_notify not available", zap.Error(err))
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during shutdown", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}
