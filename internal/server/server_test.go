package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/database"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/models"
	"smartfarm-backend/internal/store"
)

type fakeStore struct {
	readings []models.SensorReading
	reports  []models.PestReport
	control  models.ManualControl
	failAll  bool
}

func (f *fakeStore) CreateSensorReading(_ context.Context, in *models.SensorReadingCreate) (*models.SensorReading, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	r := models.SensorReading{
		ID:               int64(len(f.readings) + 1),
		Timestamp:        time.Now().UTC(),
		Temperature:      in.Temperature,
		Humidity:         in.Humidity,
		SoilMoisture:     in.SoilMoisture,
		IrrigationStatus: in.IrrigationStatus,
		Decision:         in.Decision,
	}
	f.readings = append(f.readings, r)
	return &r, nil
}

func (f *fakeStore) LatestSensorReading(context.Context) (*models.SensorReading, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	if len(f.readings) == 0 {
		return nil, store.ErrNoReadings
	}
	return &f.readings[len(f.readings)-1], nil
}

func (f *fakeStore) CreatePestReport(_ context.Context, in *models.PestReportCreate) (*models.PestReport, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	r := models.PestReport{
		ID:                 int64(len(f.reports) + 1),
		Timestamp:          time.Now().UTC(),
		PestName:           in.PestName,
		PlantName:          in.PlantName,
		DetectionCertainty: in.DetectionCertainty,
		Recommendation:     in.Recommendation,
	}
	f.reports = append(f.reports, r)
	return &r, nil
}

func (f *fakeStore) RecentPestReports(_ context.Context, limit int) ([]models.PestReport, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	if len(f.reports) > limit {
		return f.reports[len(f.reports)-limit:], nil
	}
	return f.reports, nil
}

func (f *fakeStore) GetManualControl(context.Context) (*models.ManualControl, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	ctl := f.control
	return &ctl, nil
}

func (f *fakeStore) UpdateManualControl(_ context.Context, upd *models.ManualControlUpdate) (*models.ManualControl, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	f.control = models.ManualControl{
		ManualEnabled: upd.ManualEnabled,
		PumpCommand:   upd.PumpCommand,
		Timestamp:     time.Now().UTC(),
	}
	ctl := f.control
	return &ctl, nil
}

func (f *fakeStore) WeeklyStatistics(context.Context, time.Time) ([]models.WeeklyStatistics, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	return []models.WeeklyStatistics{
		{WeekStart: "2025-08-18", WeekEnd: "2025-08-24", AvgTemperature: 24.5, TotalPestReports: 2},
	}, nil
}

type fakeSearcher struct {
	indexed   []*models.PestReport
	results   []models.PestReport
	indexErr  error
	searchErr error
}

func (f *fakeSearcher) IndexReport(_ context.Context, report *models.PestReport) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = append(f.indexed, report)
	return nil
}

func (f *fakeSearcher) SearchReports(context.Context, string, int) ([]models.PestReport, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

type fakeAlerts struct {
	notified []*models.PestReport
	err      error
}

func (f *fakeAlerts) NotifyReport(_ context.Context, report *models.PestReport) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, report)
	return nil
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ControlCacheTTL: 3,
		RecentReports:   10,
	}
}

func newTestCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}, mr
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecordSensor(t *testing.T) {
	st := &fakeStore{}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/sensor/",
		`{"temperature":24.5,"humidity":61.2,"soil_moisture":37.8,"irrigation_status":true,"ai_decision":"Irrigation required (Reason: AI)"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.SensorReading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, 24.5, got.Temperature)
	assert.True(t, got.IrrigationStatus)
	assert.Len(t, st.readings, 1)
}

func TestRecordSensor_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "humidity out of range", body: `{"temperature":24.5,"humidity":150,"soil_moisture":37.8,"irrigation_status":true,"ai_decision":"x"}`},
		{name: "missing field", body: `{"temperature":24.5,"humidity":61.2,"soil_moisture":37.8,"irrigation_status":true}`},
		{name: "unknown field", body: `{"temperature":24.5,"humidity":61.2,"soil_moisture":37.8,"irrigation_status":true,"ai_decision":"x","extra":1}`},
	}

	st := &fakeStore{}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/data/sensor/", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
	assert.Empty(t, st.readings)
}

func TestLatestStatus_NoData(t *testing.T) {
	srv := New(testServerConfig(), &fakeStore{}, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/status/latest/", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No sensor data found.")
}

func TestLatestStatus_ReturnsNewest(t *testing.T) {
	st := &fakeStore{}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	do(t, srv.Handler(), http.MethodPost, "/data/sensor/",
		`{"temperature":20,"humidity":50,"soil_moisture":30,"irrigation_status":false,"ai_decision":"Irrigation not required"}`)
	do(t, srv.Handler(), http.MethodPost, "/data/sensor/",
		`{"temperature":26,"humidity":55,"soil_moisture":28,"irrigation_status":true,"ai_decision":"Irrigation required (Reason: AI)"}`)

	rec := do(t, srv.Handler(), http.MethodGet, "/status/latest/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.SensorReading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 26.0, got.Temperature)
}

func TestRecordPestReport_FillsRecommendation(t *testing.T) {
	st := &fakeStore{}
	search := &fakeSearcher{}
	alerts := &fakeAlerts{}
	srv := New(testServerConfig(), st, nil, search, alerts, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/pest-report/",
		`{"pest_name":"Late Blight","plant_name":"Tomato","detection_certainty":0.93}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.PestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Recommendation, "fungicides")

	require.Len(t, search.indexed, 1)
	assert.Equal(t, "Late Blight", search.indexed[0].PestName)
	require.Len(t, alerts.notified, 1)
}

func TestRecordPestReport_KeepsProvidedRecommendation(t *testing.T) {
	st := &fakeStore{}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/pest-report/",
		`{"pest_name":"Late Blight","plant_name":"Tomato","detection_certainty":0.93,"recommendation":"custom advice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "custom advice", st.reports[0].Recommendation)
}

func TestRecordPestReport_IndexFailureStillCreated(t *testing.T) {
	st := &fakeStore{}
	search := &fakeSearcher{indexErr: assert.AnError}
	srv := New(testServerConfig(), st, nil, search, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/pest-report/",
		`{"pest_name":"White Rot","plant_name":"Tomato","detection_certainty":0.88}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, st.reports, 1)
}

func TestRecordPestReport_UnknownPestWithoutRecommendation(t *testing.T) {
	st := &fakeStore{}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/pest-report/",
		`{"pest_name":"Moth Infestation","plant_name":"Tomato","detection_certainty":0.9}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_PEST_LABEL")
	assert.Empty(t, st.reports)
}

func TestRecordPestReport_UnknownPestWithRecommendationAccepted(t *testing.T) {
	st := &fakeStore{}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/pest-report/",
		`{"pest_name":"Moth Infestation","plant_name":"Tomato","detection_certainty":0.9,"recommendation":"Deploy pheromone traps."}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, st.reports, 1)
	assert.Equal(t, "Deploy pheromone traps.", st.reports[0].Recommendation)
}

func TestRecordPestReport_CertaintyOutOfRange(t *testing.T) {
	srv := New(testServerConfig(), &fakeStore{}, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/data/pest-report/",
		`{"pest_name":"Late Blight","plant_name":"Tomato","detection_certainty":1.5}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRecentReports(t *testing.T) {
	st := &fakeStore{reports: []models.PestReport{
		{ID: 1, PestName: "Late Blight"},
		{ID: 2, PestName: "White Rot"},
	}}
	srv := New(testServerConfig(), st, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/reports/recent/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.PestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestSearchReports(t *testing.T) {
	search := &fakeSearcher{results: []models.PestReport{{ID: 7, PestName: "Late Blight"}}}
	srv := New(testServerConfig(), &fakeStore{}, nil, search, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/reports/search/?q=blight", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.PestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
}

func TestSearchReports_MissingQuery(t *testing.T) {
	srv := New(testServerConfig(), &fakeStore{}, nil, &fakeSearcher{}, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/reports/search/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchReports_NotConfigured(t *testing.T) {
	srv := New(testServerConfig(), &fakeStore{}, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/reports/search/?q=blight", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestManualControl_UpdateAndCache(t *testing.T) {
	cache, mr := newTestCache(t)
	st := &fakeStore{}
	srv := New(testServerConfig(), st, cache, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodPut, "/control/manual/",
		`{"manual_enabled":true,"pump_command":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.control.ManualEnabled)
	assert.True(t, st.control.PumpCommand)

	cached, err := mr.Get(controlCacheKey)
	require.NoError(t, err)
	assert.Contains(t, cached, `"manual_enabled":true`)
}

func TestControlStatus_ServedFromCache(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(controlCacheKey, `{"manual_enabled":true,"pump_command":false,"timestamp":"2025-08-30T10:00:00Z"}`))

	// A failing store proves the cache answered.
	srv := New(testServerConfig(), &fakeStore{failAll: true}, cache, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/control/status/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.ManualControl
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.ManualEnabled)
	assert.False(t, got.PumpCommand)
}

func TestControlStatus_CacheMissFallsBack(t *testing.T) {
	cache, mr := newTestCache(t)
	st := &fakeStore{control: models.ManualControl{ManualEnabled: false, PumpCommand: false}}
	srv := New(testServerConfig(), st, cache, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/control/status/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The miss should have repopulated the cache.
	assert.True(t, mr.Exists(controlCacheKey))
}

func TestWeeklyStats(t *testing.T) {
	srv := New(testServerConfig(), &fakeStore{}, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/statistics/weekly/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.WeeklyStatistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2025-08-18", got[0].WeekStart)
}

func TestHealthAndReady(t *testing.T) {
	srv := New(testServerConfig(), &fakeStore{}, nil, nil, nil, logger.NewNoOpLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = do(t, srv.Handler(), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
