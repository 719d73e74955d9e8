package entities

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Webhook event types emitted by the application
const (
	EventClientCreated       = "client.created"
	EventClientUpdated       = "client.updated"
	EventClientDeleted       = "client.deleted"
	EventMeetingCreated      = "meeting.created"
	EventMeetingUpdated      = "meeting.updated"
	EventMeetingDeleted      = "meeting.deleted"
	EventMeetingSummaryReady = "meeting.summary_ready"
	EventTaskCreated         = "task.created"
	EventTaskUpdated         = "task.updated"
	EventTaskStatusChanged   = "task.status_changed"
	EventTaskDeleted         = "task.deleted"
)

// KnownEventTypes lists every event type the dispatcher can emit
var KnownEventTypes = []string{
	EventClientCreated, EventClientUpdated, EventClientDeleted,
	EventMeetingCreated, EventMeetingUpdated, EventMeetingDeleted,
	EventMeetingSummaryReady,
	EventTaskCreated, EventTaskUpdated, EventTaskStatusChanged, EventTaskDeleted,
}

// IsKnownEventType reports whether the event type is emitted by the app
func IsKnownEventType(eventType string) bool {
	for _, t := range KnownEventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// WebhookConfiguration represents an outbound webhook endpoint owned by a user
type WebhookConfiguration struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`

	Name       string `json:"name" gorm:"type:varchar(255);not null"`
	URL        string `json:"url" gorm:"type:text;not null"`
	HTTPMethod string `json:"http_method" gorm:"type:varchar(10);not null;default:'POST'"`
	Secret     string `json:"-" gorm:"type:text;not null"` // HMAC signing key, never exposed

	// Custom headers applied to every delivery
	Headers map[string]string `json:"headers,omitempty" gorm:"type:jsonb;serializer:json"`

	// Subscribed event types; empty means all
	EventTypes []string `json:"event_types" gorm:"type:jsonb;serializer:json"`

	IsActive    bool `json:"is_active" gorm:"default:true;not null;index"`
	MaxAttempts int  `json:"max_attempts" gorm:"not null;default:5"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewWebhookConfiguration creates an active configuration with defaults
func NewWebhookConfiguration(ownerID uuid.UUID, name, url, secret string) *WebhookConfiguration {
	now := time.Now()
	return &WebhookConfiguration{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		URL:         url,
		HTTPMethod:  http.MethodPost,
		Secret:      secret,
		IsActive:    true,
		MaxAttempts: 5,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SubscribedTo reports whether the configuration wants the event type
func (w *WebhookConfiguration) SubscribedTo(eventType string) bool {
	if len(w.EventTypes) == 0 {
		return true
	}
	for _, t := range w.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// ValidateMethod checks the configured HTTP method
func (w *WebhookConfiguration) ValidateMethod() error {
	switch w.HTTPMethod {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return nil
	}
	return ErrInvalidWebhookMethod
}

// TableName specifies the table name for GORM
func (WebhookConfiguration) TableName() string {
	return "webhook_configurations"
}
