package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SensorReadingsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farm_sensor_readings_recorded_total",
			Help: "Total number of sensor readings ingested",
		},
	)

	PestReportsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_pest_reports_recorded_total",
			Help: "Total number of pest reports ingested",
		},
		[]string{"pest"},
	)

	PestAlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_pest_alerts_sent_total",
			Help: "Total number of pest alerts delivered",
		},
		[]string{"channel"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "farm_http_request_duration_seconds",
			Help: "Duration of API request handling in seconds",
		},
		[]string{"route", "method"},
	)

	ControlCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farm_control_cache_hits_total",
			Help: "Manual control reads served from the cache",
		},
	)

	ControlCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farm_control_cache_misses_total",
			Help: "Manual control reads that fell through to the store",
		},
	)
)
