package entities

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the lifecycle status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusAtiva     SubscriptionStatus = "ativa"
	SubscriptionStatusCancelada SubscriptionStatus = "cancelada"
	SubscriptionStatusExpirada  SubscriptionStatus = "expirada"
)

// IsValid checks if the subscription status is valid
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusAtiva, SubscriptionStatusCancelada, SubscriptionStatusExpirada:
		return true
	}
	return false
}

// Subscription binds a user to a plan and meters credit usage
type Subscription struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	PlanID uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`
	Plan   *Plan     `json:"plan,omitempty" gorm:"foreignKey:PlanID"`

	Status           SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null;default:'ativa';index"`
	CreditsUsed      int                `json:"credits_used" gorm:"not null;default:0"`
	CreditsRemaining int                `json:"credits_remaining" gorm:"not null;default:0"`

	PeriodStart time.Time `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time `json:"period_end" gorm:"not null;index"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewSubscription creates an active subscription for the plan's current period
func NewSubscription(userID uuid.UUID, plan *Plan) *Subscription {
	now := time.Now()
	return &Subscription{
		ID:               uuid.New(),
		UserID:           userID,
		PlanID:           plan.ID,
		Status:           SubscriptionStatusAtiva,
		CreditsUsed:      0,
		CreditsRemaining: plan.MonthlyCredits,
		PeriodStart:      now,
		PeriodEnd:        now.AddDate(0, 1, 0),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsActive reports whether the subscription currently grants access
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusAtiva && time.Now().Before(s.PeriodEnd)
}

// HasCredits reports whether at least one credit remains
func (s *Subscription) HasCredits() bool {
	return s.CreditsRemaining > 0
}

// Cancel marks the subscription as cancelled
func (s *Subscription) Cancel() {
	now := time.Now()
	s.Status = SubscriptionStatusCancelada
	s.CancelledAt = &now
	s.UpdatedAt = now
}

// RolloverPeriod resets credits for a new billing period
func (s *Subscription) RolloverPeriod(monthlyCredits int) {
	now := time.Now()
	s.CreditsUsed = 0
	s.CreditsRemaining = monthlyCredits
	s.PeriodStart = now
	s.PeriodEnd = now.AddDate(0, 1, 0)
	s.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
