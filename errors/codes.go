package errors

// ErrorCode identifies an application error category
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED
	ErrorCode_FORBIDDEN
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_HTTP_OK

	// Session lifecycle
	ErrorCode_SESSION_NOT_FOUND
	ErrorCode_SESSION_INVALID_STATE
	ErrorCode_SESSION_ALREADY_LIVE
	ErrorCode_SESSION_START_FAILED
	ErrorCode_SESSION_STOP_FAILED

	// Realtime transport
	ErrorCode_TRANSPORT_CREDENTIAL_FAILED
	ErrorCode_TRANSPORT_OPEN_FAILED
	ErrorCode_TRANSPORT_CLOSED

	// Persona / project
	ErrorCode_PERSONA_NOT_FOUND
	ErrorCode_PROJECT_NOT_FOUND

	// Reports
	ErrorCode_REPORT_NOT_FOUND
	ErrorCode_REPORT_PERSIST_FAILED

	// Advisory
	ErrorCode_ADVISORY_UNAVAILABLE

	// Infrastructure
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_CACHE_FAILED
	ErrorCode_PROCESSING_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                     "UNKNOWN",
	ErrorCode_INTERNAL:                    "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:            "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                   "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:              "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:           "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:             "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                   "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:             "INVALID_PAYLOAD",
	ErrorCode_HTTP_OK:                     "OK",
	ErrorCode_SESSION_NOT_FOUND:           "SESSION_NOT_FOUND",
	ErrorCode_SESSION_INVALID_STATE:       "SESSION_INVALID_STATE",
	ErrorCode_SESSION_ALREADY_LIVE:        "SESSION_ALREADY_LIVE",
	ErrorCode_SESSION_START_FAILED:        "SESSION_START_FAILED",
	ErrorCode_SESSION_STOP_FAILED:         "SESSION_STOP_FAILED",
	ErrorCode_TRANSPORT_CREDENTIAL_FAILED: "TRANSPORT_CREDENTIAL_FAILED",
	ErrorCode_TRANSPORT_OPEN_FAILED:       "TRANSPORT_OPEN_FAILED",
	ErrorCode_TRANSPORT_CLOSED:            "TRANSPORT_CLOSED",
	ErrorCode_PERSONA_NOT_FOUND:           "PERSONA_NOT_FOUND",
	ErrorCode_PROJECT_NOT_FOUND:           "PROJECT_NOT_FOUND",
	ErrorCode_REPORT_NOT_FOUND:            "REPORT_NOT_FOUND",
	ErrorCode_REPORT_PERSIST_FAILED:       "REPORT_PERSIST_FAILED",
	ErrorCode_ADVISORY_UNAVAILABLE:        "ADVISORY_UNAVAILABLE",
	ErrorCode_DB_CONNECTION_FAILED:        "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:             "DB_QUERY_FAILED",
	ErrorCode_CACHE_FAILED:                "CACHE_FAILED",
	ErrorCode_PROCESSING_FAILED:           "PROCESSING_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
