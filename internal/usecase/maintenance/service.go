package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

// Service runs the periodic housekeeping sweeps: releasing stuck webhook
// claims, pruning old delivery logs, deleting expired sessions and rolling
// subscriptions into their next billing period.
type Service struct {
	eventRepo   repositories.WebhookEventRepository
	logRepo     repositories.WebhookDeliveryLogRepository
	sessionRepo repositories.SessionRepository
	subRepo     repositories.SubscriptionRepository
	planRepo    repositories.PlanRepository
	cfg         *config.WebhookConfig
	logger      *zap.Logger
	cron        *cron.Cron
}

// NewService constructs the maintenance service
func NewService(
	eventRepo repositories.WebhookEventRepository,
	logRepo repositories.WebhookDeliveryLogRepository,
	sessionRepo repositories.SessionRepository,
	subRepo repositories.SubscriptionRepository,
	planRepo repositories.PlanRepository,
	cfg *config.WebhookConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		eventRepo:   eventRepo,
		logRepo:     logRepo,
		sessionRepo: sessionRepo,
		subRepo:     subRepo,
		planRepo:    planRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start registers and launches the cron schedule
func (s *Service) Start(ctx context.Context) error {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc("@every 1m", func() { s.ReleaseStuckEvents(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", func() { s.PruneDeliveryLogs(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", func() { s.CleanupSessions(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 10m", func() { s.RolloverSubscriptions(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running sweeps
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("maintenance scheduler stopped")
}

// ReleaseStuckEvents returns claims held past the visibility window
func (s *Service) ReleaseStuckEvents(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.VisibilityWindow)
	released, err := s.eventRepo.ReleaseStuck(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to release stuck webhook events", zap.Error(err))
		return
	}
	if released > 0 {
		s.logger.Warn("released stuck webhook events", zap.Int64("count", released))
	}
}

// PruneDeliveryLogs removes delivery logs past the retention window
func (s *Service) PruneDeliveryLogs(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.LogRetention)
	pruned, err := s.logRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune delivery logs", zap.Error(err))
		return
	}
	if pruned > 0 {
		s.logger.Info("pruned old delivery logs", zap.Int64("count", pruned))
	}
}

// CleanupSessions deletes expired sessions
func (s *Service) CleanupSessions(ctx context.Context) {
	deleted, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("failed to delete expired sessions", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("deleted expired sessions", zap.Int64("count", deleted))
	}
}

// RolloverSubscriptions resets credits for subscriptions whose period ended
func (s *Service) RolloverSubscriptions(ctx context.Context) {
	subs, err := s.subRepo.FindDueForRollover(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to find subscriptions due for rollover", zap.Error(err))
		return
	}

	for _, sub := range subs {
		credits := 0
		if sub.Plan != nil {
			credits = sub.Plan.MonthlyCredits
		} else {
			plan, err := s.planRepo.FindByID(ctx, sub.PlanID)
			if err != nil || plan == nil {
				s.logger.Error("failed to resolve plan for rollover",
					zap.String("subscription_id", sub.ID.String()),
					zap.Error(err),
				)
				continue
			}
			credits = plan.MonthlyCredits
		}

		sub.RolloverPeriod(credits)
		if err := s.subRepo.Update(ctx, sub); err != nil {
			s.logger.Error("failed to rollover subscription",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("subscription rolled into new period",
			zap.String("subscription_id", sub.ID.String()),
			zap.Int("credits", credits),
		)
	}
}
