package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/database"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/common/metrics"
	"smartfarm-backend/internal/models"
)

// Store is the persistence surface the handlers need.
type Store interface {
	CreateSensorReading(ctx context.Context, in *models.SensorReadingCreate) (*models.SensorReading, error)
	LatestSensorReading(ctx context.Context) (*models.SensorReading, error)
	CreatePestReport(ctx context.Context, in *models.PestReportCreate) (*models.PestReport, error)
	RecentPestReports(ctx context.Context, limit int) ([]models.PestReport, error)
	GetManualControl(ctx context.Context) (*models.ManualControl, error)
	UpdateManualControl(ctx context.Context, upd *models.ManualControlUpdate) (*models.ManualControl, error)
	WeeklyStatistics(ctx context.Context, now time.Time) ([]models.WeeklyStatistics, error)
}

// Searcher mirrors pest reports into the search index.
type Searcher interface {
	IndexReport(ctx context.Context, report *models.PestReport) error
	SearchReports(ctx context.Context, query string, size int) ([]models.PestReport, error)
}

// AlertSender delivers pest alerts out of band.
type AlertSender interface {
	NotifyReport(ctx context.Context, report *models.PestReport) error
}

type Server struct {
	cfg      config.ServerConfig
	store    Store
	cache    *database.RedisClient
	searcher Searcher
	alerts   AlertSender
	logger   logger.Logger
	router   *mux.Router
}

// New wires the API. searcher and alerts may be nil; the corresponding
// features degrade to no-ops.
func New(cfg config.ServerConfig, st Store, cache *database.RedisClient, searcher Searcher, alerts AlertSender, log logger.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		cache:    cache,
		searcher: searcher,
		alerts:   alerts,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/control/manual/", s.handleSetManualControl).Methods(http.MethodPut)
	r.HandleFunc("/control/status/", s.handleGetControlStatus).Methods(http.MethodGet)

	r.HandleFunc("/data/sensor/", s.handleRecordSensor).Methods(http.MethodPost)
	r.HandleFunc("/data/pest-report/", s.handleRecordPestReport).Methods(http.MethodPost)

	r.HandleFunc("/status/latest/", s.handleLatestStatus).Methods(http.MethodGet)
	r.HandleFunc("/reports/recent/", s.handleRecentReports).Methods(http.MethodGet)
	r.HandleFunc("/reports/search/", s.handleSearchReports).Methods(http.MethodGet)
	r.HandleFunc("/statistics/weekly/", s.handleWeeklyStats).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
