package errors

import (
	"fmt"
	"time"
)

type ErrorCode string

const (
	ErrCodePortMissing   ErrorCode = "PORT_MISSING"
	ErrCodeInstallFailed ErrorCode = "INSTALL_FAILED"
	ErrCodeExecFailed    ErrorCode = "EXEC_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeNoSensorData             ErrorCode = "NO_SENSOR_DATA"

	ErrCodePayloadValidationFailed ErrorCode = "PAYLOAD_VALIDATION_FAILED"
	ErrCodeUnknownPestLabel        ErrorCode = "UNKNOWN_PEST_LABEL"

	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeAlertSendFailed ErrorCode = "ALERT_SEND_FAILED"

	ErrCodeControlFetchFailed ErrorCode = "CONTROL_FETCH_FAILED"
	ErrCodeReportPostFailed   ErrorCode = "REPORT_POST_FAILED"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func Wrap(code ErrorCode, message string, err error) *StandardError {
	se := New(code, message)
	if err != nil {
		se.Details = err.Error()
	}
	return se
}

func (e *StandardError) WithRetryable(retryable bool) *StandardError {
	e.Retryable = retryable
	return e
}

func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}
