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

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED
	ErrorCode_AUTH_INVALID_CREDENTIALS
	ErrorCode_AUTH_USER_NOT_FOUND
	ErrorCode_AUTH_USER_ALREADY_EXISTS
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN

	// CRM
	ErrorCode_CLIENT_NOT_FOUND
	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_TASK_NOT_FOUND
	ErrorCode_TASK_INVALID_TRANSITION

	// Billing
	ErrorCode_PLAN_NOT_FOUND
	ErrorCode_SUBSCRIPTION_NOT_FOUND
	ErrorCode_CREDITS_EXHAUSTED

	// Webhooks
	ErrorCode_WEBHOOK_NOT_FOUND
	ErrorCode_WEBHOOK_EVENT_NOT_FOUND
	ErrorCode_WEBHOOK_EVENT_NOT_RETRYABLE
	ErrorCode_WEBHOOK_DELIVERY_FAILED

	// AI pipeline
	ErrorCode_AI_ANALYSIS_FAILED
	ErrorCode_AI_TRANSCRIPTION_FAILED
	ErrorCode_AI_SUMMARY_FAILED
	ErrorCode_AI_SERVICE_UNAVAILABLE

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED

	// Database
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED

	// Misc
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_PROCESSING_FAILED
	ErrorCode_HTTP_OK
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                         "UNKNOWN",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                       "FORBIDDEN",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:        "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:             "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:        "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN:      "AUTH_INVALID_REFRESH_TOKEN",
	ErrorCode_CLIENT_NOT_FOUND:                "CLIENT_NOT_FOUND",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_TASK_NOT_FOUND:                  "TASK_NOT_FOUND",
	ErrorCode_TASK_INVALID_TRANSITION:         "TASK_INVALID_TRANSITION",
	ErrorCode_PLAN_NOT_FOUND:                  "PLAN_NOT_FOUND",
	ErrorCode_SUBSCRIPTION_NOT_FOUND:          "SUBSCRIPTION_NOT_FOUND",
	ErrorCode_CREDITS_EXHAUSTED:               "CREDITS_EXHAUSTED",
	ErrorCode_WEBHOOK_NOT_FOUND:               "WEBHOOK_NOT_FOUND",
	ErrorCode_WEBHOOK_EVENT_NOT_FOUND:         "WEBHOOK_EVENT_NOT_FOUND",
	ErrorCode_WEBHOOK_EVENT_NOT_RETRYABLE:     "WEBHOOK_EVENT_NOT_RETRYABLE",
	ErrorCode_WEBHOOK_DELIVERY_FAILED:         "WEBHOOK_DELIVERY_FAILED",
	ErrorCode_AI_ANALYSIS_FAILED:              "AI_ANALYSIS_FAILED",
	ErrorCode_AI_TRANSCRIPTION_FAILED:         "AI_TRANSCRIPTION_FAILED",
	ErrorCode_AI_SUMMARY_FAILED:               "AI_SUMMARY_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:          "AI_SERVICE_UNAVAILABLE",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:           "DB_TRANSACTION_FAILED",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_PROCESSING_FAILED:               "PROCESSING_FAILED",
	ErrorCode_HTTP_OK:                         "HTTP_OK",
}

// String returns the symbolic name of the error code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
