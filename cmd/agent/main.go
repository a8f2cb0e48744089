// cmd/agent/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"smartfarm-backend/internal/agent"
	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/logger"
)

func main() {
	configPath := pflag.String("config", "", "path to config file")
	seed := pflag.Int64("seed", time.Now().UnixNano(), "simulated sensor seed")
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

	zapLog.Info("Starting field agent...",
		zap.String("api", cfg.Agent.APIBaseURL),
		zap.String("plant", cfg.Agent.PlantName),
	)

	client := agent.NewClient(cfg.Agent.APIBaseURL,
		time.Duration(cfg.Agent.RequestTimeout)*time.Second)

	sensor := agent.NewSimulatedSensor(*seed)
	pump := agent.NewLogPump(log)

	a := agent.New(cfg.Agent, client, sensor, pump, nil, log, time.Now())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLog.Error("agent stopped", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("Agent stopped gracefully")
}
