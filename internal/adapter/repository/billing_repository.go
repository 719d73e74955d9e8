package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) repositories.PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan
func (r *planRepository) Create(ctx context.Context, plan *entities.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// FindByCode retrieves a plan by its code
func (r *planRepository) FindByCode(ctx context.Context, code string) (*entities.Plan, error) {
	var plan entities.Plan
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// FindByID retrieves a plan by its ID
func (r *planRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	var plan entities.Plan
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// ListActive retrieves all active plans
func (r *planRepository) ListActive(ctx context.Context) ([]*entities.Plan, error) {
	var plans []*entities.Plan
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price_cents ASC").
		Find(&plans).Error
	return plans, err
}

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) repositories.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindActiveByUser retrieves the user's active subscription
func (r *subscriptionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error) {
	var sub entities.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status = ?", userID, entities.SubscriptionStatusAtiva).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Update updates an existing subscription
func (r *subscriptionRepository) Update(ctx context.Context, sub *entities.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// ConsumeCredit atomically decrements one credit. The conditional update
// guarantees the balance never goes negative under concurrent consumers.
func (r *subscriptionRepository) ConsumeCredit(ctx context.Context, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("user_id = ? AND status = ? AND credits_remaining > 0",
			userID, entities.SubscriptionStatusAtiva).
		Updates(map[string]interface{}{
			"credits_used":      gorm.Expr("credits_used + 1"),
			"credits_remaining": gorm.Expr("credits_remaining - 1"),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindDueForRollover retrieves active subscriptions whose period ended
func (r *subscriptionRepository) FindDueForRollover(ctx context.Context, now time.Time) ([]*entities.Subscription, error) {
	var subs []*entities.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("status = ? AND period_end <= ?", entities.SubscriptionStatusAtiva, now).
		Find(&subs).Error
	return subs, err
}
