package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the application error type carried across layers
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrProcessingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PROCESSING_FAILED,
		Message:  "Processing failed",
	}
}

// Session Errors

func ErrSessionNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_SESSION_NOT_FOUND,
		Message:  "Session not found",
	}.WithDetail("session_id", sessionID)
}

func ErrSessionInvalidState(sessionID, currentState, expectedState string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_INVALID_STATE,
		Message:  "Session is in invalid state",
	}.WithDetail("session_id", sessionID).
		WithDetail("current_state", currentState).
		WithDetail("expected_state", expectedState)
}

func ErrSessionAlreadyLive(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_ALREADY_LIVE,
		Message:  "Session already has a live connection",
	}.WithDetail("session_id", sessionID)
}

func ErrSessionStartFailed(sessionID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_SESSION_START_FAILED,
		Message:  "Failed to start session",
	}.WithDetail("session_id", sessionID)
}

func ErrSessionStopFailed(sessionID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_SESSION_STOP_FAILED,
		Message:  "Failed to stop session",
	}.WithDetail("session_id", sessionID)
}

// Transport Errors

func ErrTransportCredential(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_TRANSPORT_CREDENTIAL_FAILED,
		Message:  "Failed to obtain realtime credential",
	}
}

func ErrTransportOpen(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_TRANSPORT_OPEN_FAILED,
		Message:  "Failed to open realtime transport",
	}
}

// Persona / Project Errors

func ErrPersonaNotFound(personaID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_PERSONA_NOT_FOUND,
		Message:  "Persona not found",
	}.WithDetail("persona_id", personaID)
}

func ErrProjectNotFound(projectID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_PROJECT_NOT_FOUND,
		Message:  "Project not found",
	}.WithDetail("project_id", projectID)
}

// Report Errors

func ErrReportNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_REPORT_NOT_FOUND,
		Message:  "Report not found",
	}.WithDetail("session_id", sessionID)
}

func ErrReportPersistFailed(sessionID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_REPORT_PERSIST_FAILED,
		Message:  "Failed to persist session report",
	}.WithDetail("session_id", sessionID)
}

// Advisory Errors

func ErrAdvisoryUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_ADVISORY_UNAVAILABLE,
		Message:  "Advisory service temporarily unavailable",
	}
}

// Infrastructure Errors

func ErrDBConnectionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_CONNECTION_FAILED,
		Message:  "Database connection failed",
	}
}

func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("query", query)
}

func ErrCacheFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_CACHE_FAILED,
		Message:  fmt.Sprintf("Cache operation failed: %s", operation),
	}
}
