package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
)

// PlanRepository defines the interface for plan data access
type PlanRepository interface {
	// Create creates a new plan
	Create(ctx context.Context, plan *entities.Plan) error

	// FindByCode retrieves a plan by its code
	FindByCode(ctx context.Context, code string) (*entities.Plan, error)

	// FindByID retrieves a plan by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error)

	// ListActive retrieves all active plans
	ListActive(ctx context.Context) ([]*entities.Plan, error)
}

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	// Create creates a new subscription
	Create(ctx context.Context, sub *entities.Subscription) error

	// FindActiveByUser retrieves the user's active subscription
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error)

	// Update updates an existing subscription
	Update(ctx context.Context, sub *entities.Subscription) error

	// ConsumeCredit atomically decrements one credit; returns false when no
	// credit remains or no active subscription exists.
	ConsumeCredit(ctx context.Context, userID uuid.UUID) (bool, error)

	// FindDueForRollover retrieves active subscriptions whose period ended
	FindDueForRollover(ctx context.Context, now time.Time) ([]*entities.Subscription, error)
}
