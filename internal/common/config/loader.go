package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overrides, ignored when absent
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	// Try multiple paths (for running from different directories)
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Walk up directories looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "smartfarm-backend"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}
	if cfg.Server.ControlCacheTTL == 0 {
		cfg.Server.ControlCacheTTL = 3
	}
	if cfg.Server.RecentReports == 0 {
		cfg.Server.RecentReports = 10
	}

	if cfg.Launch.Manager == "" {
		cfg.Launch.Manager = "procman"
	}
	if cfg.Launch.App == "" {
		cfg.Launch.App = "smartfarm-server"
	}
	if cfg.Launch.WorkerClass == "" {
		cfg.Launch.WorkerClass = "async"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "./smart_farm.db"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 {
		cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "pest-reports"
	}

	if cfg.Alerts.Region == "" {
		cfg.Alerts.Region = "us-east-1"
	}
	if cfg.Alerts.MinCertainty == 0 {
		cfg.Alerts.MinCertainty = 0.85
	}

	if cfg.Agent.APIBaseURL == "" {
		cfg.Agent.APIBaseURL = "http://localhost:8000"
	}
	if cfg.Agent.PlantName == "" {
		cfg.Agent.PlantName = "Tomato"
	}
	if cfg.Agent.ReportInterval == 0 {
		cfg.Agent.ReportInterval = 5
	}
	if cfg.Agent.ControlInterval == 0 {
		cfg.Agent.ControlInterval = 3
	}
	if cfg.Agent.RequestTimeout == 0 {
		cfg.Agent.RequestTimeout = 15
	}

	irr := &cfg.Agent.Irrigation
	if irr.Threshold == 0 {
		irr.Threshold = 0.06
	}
	if irr.EmergencyOnPct == 0 {
		irr.EmergencyOnPct = 20.0
	}
	if irr.WetADC == 0 {
		irr.WetADC = 233
	}
	if irr.DryADC == 0 {
		irr.DryADC = 619
	}
	if irr.MedianSamples == 0 {
		irr.MedianSamples = 9
	}
	if irr.SmoothWindow == 0 {
		irr.SmoothWindow = 12
	}
	if irr.TrendWindow == 0 {
		irr.TrendWindow = 30
	}
	if irr.BurstOnSec == 0 {
		irr.BurstOnSec = 4
	}
	if irr.RestSec == 0 {
		irr.RestSec = 5
	}
	if irr.MinOnSec == 0 {
		irr.MinOnSec = 6
	}
	if irr.MinOffSec == 0 {
		irr.MinOffSec = 3
	}
	if irr.MaxOnSec == 0 {
		irr.MaxOnSec = 60
	}
	if irr.MaxMinPerHour == 0 {
		irr.MaxMinPerHour = 8
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Alerts.Sender == "" {
		if val := os.Getenv("ALERT_SENDER"); val != "" {
			cfg.Alerts.Sender = val
		}
	}
	if cfg.Alerts.TopicARN == "" {
		if val := os.Getenv("ALERT_TOPIC_ARN"); val != "" {
			cfg.Alerts.TopicARN = val
		}
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	if cfg.Database.Driver == "postgres" && cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}

	if cfg.Alerts.Enabled && cfg.Alerts.Sender == "" && cfg.Alerts.TopicARN == "" {
		return fmt.Errorf("alerts enabled but neither sender nor topic_arn configured")
	}

	irr := cfg.Agent.Irrigation
	if irr.WetADC >= irr.DryADC {
		return fmt.Errorf("agent.irrigation.wet_adc (%d) must be below dry_adc (%d)", irr.WetADC, irr.DryADC)
	}
	if irr.MedianSamples < 1 {
		return fmt.Errorf("agent.irrigation.median_samples must be at least 1")
	}

	return nil
}
