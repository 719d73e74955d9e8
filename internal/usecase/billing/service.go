package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/observability"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
)

// Service defines subscription and credit metering operations
type Service interface {
	// ListPlans retrieves the active plans
	ListPlans(ctx context.Context) ([]*entities.Plan, error)

	// Subscribe opens a subscription to a plan for the user
	Subscribe(ctx context.Context, userID uuid.UUID, planCode string) (*entities.Subscription, error)

	// GetSubscription retrieves the user's active subscription
	GetSubscription(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error)

	// Cancel cancels the user's active subscription
	Cancel(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error)

	// ConsumeCredit atomically spends one AI credit
	ConsumeCredit(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	planRepo repositories.PlanRepository
	subRepo  repositories.SubscriptionRepository
	logger   *zap.Logger
}

// NewService constructs the billing service
func NewService(planRepo repositories.PlanRepository, subRepo repositories.SubscriptionRepository, logger *zap.Logger) Service {
	return &service{
		planRepo: planRepo,
		subRepo:  subRepo,
		logger:   logger,
	}
}

// ListPlans retrieves the active plans
func (s *service) ListPlans(ctx context.Context) ([]*entities.Plan, error) {
	return s.planRepo.ListActive(ctx)
}

// Subscribe opens a subscription for the user on the named plan
func (s *service) Subscribe(ctx context.Context, userID uuid.UUID, planCode string) (*entities.Subscription, error) {
	plan, err := s.planRepo.FindByCode(ctx, planCode)
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	if plan == nil {
		return nil, usecaseErrors.ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, usecaseErrors.ErrPlanInactive
	}

	existing, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if existing != nil {
		if existing.PlanID == plan.ID {
			return nil, usecaseErrors.ErrAlreadySubscribed
		}
		// Switching plans: close the current subscription first
		existing.Cancel()
		if err := s.subRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to close previous subscription: %w", err)
		}
		s.logger.Info("subscription switched",
			zap.String("user_id", userID.String()),
			zap.String("previous_subscription_id", existing.ID.String()),
			zap.String("new_plan", plan.Code),
		)
	}

	sub := entities.NewSubscription(userID, plan)
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	sub.Plan = plan

	s.logger.Info("subscription created",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.Code),
		zap.Int("credits", plan.MonthlyCredits),
	)
	return sub, nil
}

// GetSubscription retrieves the user's active subscription
func (s *service) GetSubscription(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error) {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	if sub == nil {
		return nil, usecaseErrors.ErrSubscriptionNotFound
	}
	return sub, nil
}

// Cancel cancels the user's active subscription
func (s *service) Cancel(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error) {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.Cancel()
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.Info("subscription cancelled",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", sub.ID.String()),
	)
	return sub, nil
}

// ConsumeCredit spends one credit. The repository performs a conditional
// decrement so concurrent consumers cannot overdraw.
func (s *service) ConsumeCredit(ctx context.Context, userID uuid.UUID) error {
	consumed, err := s.subRepo.ConsumeCredit(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to consume credit: %w", err)
	}
	if !consumed {
		sub, findErr := s.subRepo.FindActiveByUser(ctx, userID)
		if findErr == nil && sub == nil {
			return usecaseErrors.ErrSubscriptionNotFound
		}
		return usecaseErrors.ErrCreditsExhausted
	}

	observability.CreditsConsumedTotal.Inc()
	return nil
}
