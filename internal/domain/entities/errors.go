package entities

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPassword   = errors.New("invalid password")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")

	// Client errors
	ErrInvalidClientStatus = errors.New("invalid client status")
	ErrInvalidRiskScore    = errors.New("risk score out of range")

	// Task errors
	ErrInvalidTaskStatus     = errors.New("invalid task status")
	ErrInvalidTaskPriority   = errors.New("invalid task priority")
	ErrInvalidTaskTransition = errors.New("invalid task status transition")
	ErrTaskNotInColumn       = errors.New("task does not belong to the column")

	// Webhook errors
	ErrInvalidWebhookMethod = errors.New("invalid webhook http method")
	ErrEventNotPending      = errors.New("webhook event is not pending")
	ErrEventExhausted       = errors.New("webhook event attempts exhausted")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)
