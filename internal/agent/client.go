package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/httpclient"
	"smartfarm-backend/internal/models"
)

// Client talks to the backend API on behalf of a field agent.
type Client struct {
	baseURL string
	http    *httpclient.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.NewClient(timeout),
	}
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(errs.ErrCodeReportPostFailed, fmt.Sprintf("marshal %s payload", path), err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(errs.ErrCodeReportPostFailed, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return errs.Wrap(errs.ErrCodeReportPostFailed, fmt.Sprintf("POST %s", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.Wrap(errs.ErrCodeReportPostFailed,
			fmt.Sprintf("POST %s: unexpected status %d", path, resp.StatusCode),
			fmt.Errorf("%s", snippet))
	}
	return nil
}

// PostSensorReading uploads one reading.
func (c *Client) PostSensorReading(ctx context.Context, in *models.SensorReadingCreate) error {
	return c.post(ctx, "/data/sensor/", in)
}

// PostPestReport uploads one pest detection.
func (c *Client) PostPestReport(ctx context.Context, in *models.PestReportCreate) error {
	return c.post(ctx, "/data/pest-report/", in)
}

// FetchControlStatus reads the manual override state.
func (c *Client) FetchControlStatus(ctx context.Context) (*models.ManualControl, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/control/status/", nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeControlFetchFailed, "build request", err)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeControlFetchFailed, "GET /control/status/", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Wrap(errs.ErrCodeControlFetchFailed,
			fmt.Sprintf("GET /control/status/: unexpected status %d", resp.StatusCode), nil)
	}

	var ctl models.ManualControl
	if err := json.NewDecoder(resp.Body).Decode(&ctl); err != nil {
		return nil, errs.Wrap(errs.ErrCodeControlFetchFailed, "decode control status", err)
	}
	return &ctl, nil
}
