package entities

import (
	"time"

	"github.com/google/uuid"
)

// WebhookDeliveryLog records a single delivery attempt against an endpoint
type WebhookDeliveryLog struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID  uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	ConfigID uuid.UUID `json:"config_id" gorm:"type:uuid;not null;index"`

	URL        string `json:"url" gorm:"type:text;not null"`
	HTTPMethod string `json:"http_method" gorm:"type:varchar(10);not null"`

	Attempt        int     `json:"attempt" gorm:"not null"`
	Success        bool    `json:"success" gorm:"not null;index"`
	ResponseStatus *int    `json:"response_status,omitempty"`
	ResponseBody   *string `json:"response_body,omitempty" gorm:"type:text"` // truncated
	DurationMs     int64   `json:"duration_ms" gorm:"not null"`
	Error          *string `json:"error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (WebhookDeliveryLog) TableName() string {
	return "webhook_delivery_logs"
}
