package config

import "fmt"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Launch   LaunchConfig   `mapstructure:"launch"`
	Database DatabaseConfig `mapstructure:"database"`
	Alerts   AlertConfig    `mapstructure:"alerts"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
	ControlCacheTTL int `mapstructure:"control_cache_ttl"` // seconds
	RecentReports   int `mapstructure:"recent_reports"`
}

// LaunchConfig describes how the launcher invokes the external process
// manager. The worker count is deliberately not configurable.
type LaunchConfig struct {
	Manager     string   `mapstructure:"manager"`      // process manager binary
	App         string   `mapstructure:"app"`          // target application reference
	WorkerClass string   `mapstructure:"worker_class"` // async worker plugin identifier
	Install     []string `mapstructure:"install"`      // dependency acquisition command, run before exec
}

type DatabaseConfig struct {
	Driver        string              `mapstructure:"driver"` // "postgres" or "sqlite"
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	SQLite        SQLiteConfig        `mapstructure:"sqlite"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type AlertConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Region       string   `mapstructure:"region"`
	Sender       string   `mapstructure:"sender"`
	Recipients   []string `mapstructure:"recipients"`
	TopicARN     string   `mapstructure:"topic_arn"`
	MinCertainty float64  `mapstructure:"min_certainty"`
}

type AgentConfig struct {
	APIBaseURL      string           `mapstructure:"api_base_url"`
	PlantName       string           `mapstructure:"plant_name"`
	ReportInterval  int              `mapstructure:"report_interval"`  // seconds
	ControlInterval int              `mapstructure:"control_interval"` // seconds
	RequestTimeout  int              `mapstructure:"request_timeout"`  // seconds
	Irrigation      IrrigationConfig `mapstructure:"irrigation"`
}

type IrrigationConfig struct {
	Threshold      float64 `mapstructure:"threshold"`        // model probability cutoff
	EmergencyOnPct float64 `mapstructure:"emergency_on_pct"` // soil % forcing the pump on
	WetADC         int     `mapstructure:"wet_adc"`
	DryADC         int     `mapstructure:"dry_adc"`
	MedianSamples  int     `mapstructure:"median_samples"` // raw reads medianed per tick
	SmoothWindow   int     `mapstructure:"smooth_window"`  // ADC medians averaged before calibration
	TrendWindow    int     `mapstructure:"trend_window"`   // soil percents behind the moving average
	BurstOnSec     int     `mapstructure:"burst_on_sec"`
	RestSec        int     `mapstructure:"rest_sec"`
	MinOnSec       int     `mapstructure:"min_on_sec"`
	MinOffSec      int     `mapstructure:"min_off_sec"`
	MaxOnSec       int     `mapstructure:"max_on_sec"`
	MaxMinPerHour  int     `mapstructure:"max_min_per_hour"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
