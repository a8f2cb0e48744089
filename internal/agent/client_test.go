package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfarm-backend/internal/models"
)

func TestClient_PostSensorReading(t *testing.T) {
	var got models.SensorReadingCreate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/data/sensor/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	err := c.PostSensorReading(context.Background(), &models.SensorReadingCreate{
		Temperature:  24.5,
		Humidity:     61.2,
		SoilMoisture: 37.8,
		Decision:     "Irrigation not required",
	})

	require.NoError(t, err)
	assert.Equal(t, 24.5, got.Temperature)
	assert.Equal(t, "Irrigation not required", got.Decision)
}

func TestClient_PostSensorReading_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	err := c.PostSensorReading(context.Background(), &models.SensorReadingCreate{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_POST_FAILED")
	assert.Contains(t, err.Error(), "422")
}

func TestClient_FetchControlStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/control/status/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"manual_enabled":true,"pump_command":false,"timestamp":"2025-08-30T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	ctl, err := c.FetchControlStatus(context.Background())

	require.NoError(t, err)
	assert.True(t, ctl.ManualEnabled)
	assert.False(t, ctl.PumpCommand)
}

func TestClient_FetchControlStatus_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.FetchControlStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONTROL_FETCH_FAILED")
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/pest-report/", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 2*time.Second)
	err := c.PostPestReport(context.Background(), &models.PestReportCreate{
		PestName:           "Late Blight",
		PlantName:          "Tomato",
		DetectionCertainty: 0.9,
	})
	require.NoError(t, err)
}
