package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserNotActive      = errors.New("user is not active")
	ErrEmailAlreadyUsed   = errors.New("email already in use")
)

// Client errors
var (
	ErrClientNotFound    = errors.New("client not found")
	ErrClientNameEmpty   = errors.New("client name is required")
	ErrClientNotOwned    = errors.New("client belongs to another user")
	ErrInvalidRiskScore  = errors.New("risk score must be between 0 and 100")
	ErrInvalidClientType = errors.New("invalid client status")
)

// Meeting errors
var (
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrMeetingNotOwned      = errors.New("meeting belongs to another user")
	ErrTranscriptEmpty      = errors.New("meeting has no transcript")
	ErrSummaryInProgress    = errors.New("summary generation already in progress")
	ErrInvalidMeetingStatus = errors.New("invalid meeting status")
)

// Task errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskNotOwned       = errors.New("task belongs to another user")
	ErrInvalidTransition  = errors.New("invalid task status transition")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrInvalidPriority    = errors.New("invalid task priority")
	ErrTaskAlreadyClosed  = errors.New("task is already closed")
	ErrInvalidKanbanOrder = errors.New("invalid kanban ordering")
)

// Billing errors
var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanInactive         = errors.New("plan is not active")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionInactive = errors.New("subscription is not active")
	ErrCreditsExhausted     = errors.New("subscription credits exhausted")
	ErrAlreadySubscribed    = errors.New("user already has an active subscription")
)

// Webhook errors
var (
	ErrWebhookNotFound     = errors.New("webhook configuration not found")
	ErrWebhookNotOwned     = errors.New("webhook configuration belongs to another user")
	ErrWebhookInactive     = errors.New("webhook configuration is not active")
	ErrEventNotFound       = errors.New("webhook event not found")
	ErrEventNotRetryable   = errors.New("webhook event is not retryable")
	ErrEventAlreadyClaimed = errors.New("webhook event already claimed")
	ErrNoMatchingWebhooks  = errors.New("no active webhook subscribed to event type")
	ErrInvalidEventType    = errors.New("invalid webhook event type")
	ErrDeliveryFailed      = errors.New("webhook delivery failed")
	ErrEndpointCircuitOpen = errors.New("webhook endpoint circuit open")
)

// AI errors
var (
	ErrJobNotFound        = errors.New("analysis job not found")
	ErrJobNotClaimable    = errors.New("analysis job cannot be claimed")
	ErrTranscriptionEmpty = errors.New("transcription returned no text")
	ErrSummaryParseFailed = errors.New("failed to parse summary response")
)
