package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEventStatus represents the queue status of an event
type WebhookEventStatus string

const (
	WebhookEventStatusPending    WebhookEventStatus = "pending"
	WebhookEventStatusProcessing WebhookEventStatus = "processing"
	WebhookEventStatusCompleted  WebhookEventStatus = "completed"
	WebhookEventStatusFailed     WebhookEventStatus = "failed"
)

// IsValid checks if the event status is valid
func (s WebhookEventStatus) IsValid() bool {
	switch s {
	case WebhookEventStatusPending, WebhookEventStatusProcessing,
		WebhookEventStatusCompleted, WebhookEventStatusFailed:
		return true
	}
	return false
}

// WebhookEvent is a queued outbound event awaiting dispatch
type WebhookEvent struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`

	EventType      string         `json:"event_type" gorm:"type:varchar(100);not null;index"`
	Payload        datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	PreviousValues datatypes.JSON `json:"previous_values,omitempty" gorm:"type:jsonb"`

	Status      WebhookEventStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts    int                `json:"attempts" gorm:"not null;default:0"`
	MaxAttempts int                `json:"max_attempts" gorm:"not null;default:5"`
	LastError   *string            `json:"last_error,omitempty" gorm:"type:text"`

	// Events are only claimable once next_attempt_at has passed
	NextAttemptAt time.Time  `json:"next_attempt_at" gorm:"not null;index"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty" gorm:"type:timestamp"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewWebhookEvent creates a pending event ready for immediate dispatch
func NewWebhookEvent(ownerID uuid.UUID, eventType string, payload, previousValues datatypes.JSON, maxAttempts int) *WebhookEvent {
	now := time.Now()
	return &WebhookEvent{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		EventType:      eventType,
		Payload:        payload,
		PreviousValues: previousValues,
		Status:         WebhookEventStatusPending,
		MaxAttempts:    maxAttempts,
		NextAttemptAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsDue reports whether the event is claimable now
func (e *WebhookEvent) IsDue() bool {
	return e.Status == WebhookEventStatusPending && !e.NextAttemptAt.After(time.Now())
}

// IsExhausted reports whether every attempt has been used
func (e *WebhookEvent) IsExhausted() bool {
	return e.Attempts >= e.MaxAttempts
}

// MarkCompleted finalizes the event after a successful delivery
func (e *WebhookEvent) MarkCompleted() {
	now := time.Now()
	e.Status = WebhookEventStatusCompleted
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// RecordFailure bumps the attempt counter and either reschedules the event
// or marks it failed once max attempts is reached.
func (e *WebhookEvent) RecordFailure(errMsg string, nextAttemptAt time.Time) {
	now := time.Now()
	e.Attempts++
	e.LastError = &errMsg
	if e.IsExhausted() {
		e.Status = WebhookEventStatusFailed
		e.ProcessedAt = &now
	} else {
		e.Status = WebhookEventStatusPending
		e.NextAttemptAt = nextAttemptAt
	}
	e.UpdatedAt = now
}

// Requeue resets a failed event for another round of attempts
func (e *WebhookEvent) Requeue() error {
	if e.Status != WebhookEventStatusFailed {
		return ErrEventNotPending
	}
	now := time.Now()
	e.Status = WebhookEventStatusPending
	e.Attempts = 0
	e.LastError = nil
	e.NextAttemptAt = now
	e.ProcessedAt = nil
	e.UpdatedAt = now
	return nil
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events_queue"
}
