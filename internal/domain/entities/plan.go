package entities

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a subscription plan with a monthly credit allowance
type Plan struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code           string    `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	MonthlyCredits int       `json:"monthly_credits" gorm:"not null;default:0"`
	PriceCents     int64     `json:"price_cents" gorm:"not null;default:0"`
	IsActive       bool      `json:"is_active" gorm:"default:true;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Plan) TableName() string {
	return "plans"
}
