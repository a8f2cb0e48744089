// cmd/launcher/main.go
package main

import (
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/launch"
)

func main() {
	configPath := pflag.String("config", "", "path to config file (default: search config/ directories)")
	pflag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

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
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	launchCfg, err := launch.New(cfg.Launch, os.Getenv)
	if err != nil {
		zapLog.Fatal("launch configuration invalid", zap.Error(err))
	}

	// Run only returns on failure: on success the process image is
	// replaced by the process manager.
	if err := launch.NewLauncher(launchCfg, log).Run(); err != nil {
		zapLog.Error("launch failed", zap.Error(err))
		os.Exit(1)
	}
}
