package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
)

// webhookDeliveryLogRepository implements the WebhookDeliveryLogRepository interface
type webhookDeliveryLogRepository struct {
	db *gorm.DB
}

// NewWebhookDeliveryLogRepository creates a new delivery log repository
func NewWebhookDeliveryLogRepository(db *gorm.DB) repositories.WebhookDeliveryLogRepository {
	return &webhookDeliveryLogRepository{db: db}
}

// Create records a delivery attempt
func (r *webhookDeliveryLogRepository) Create(ctx context.Context, log *entities.WebhookDeliveryLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByConfig retrieves logs for a configuration, newest first
func (r *webhookDeliveryLogRepository) ListByConfig(ctx context.Context, configID uuid.UUID, limit, offset int) ([]*entities.WebhookDeliveryLog, int64, error) {
	var logs []*entities.WebhookDeliveryLog
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entities.WebhookDeliveryLog{}).
		Where("config_id = ?", configID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ListByEvent retrieves logs for an event, newest first
func (r *webhookDeliveryLogRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entities.WebhookDeliveryLog, error) {
	var logs []*entities.WebhookDeliveryLog
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// DeleteOlderThan prunes logs created before the cutoff
func (r *webhookDeliveryLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&entities.WebhookDeliveryLog{})
	return result.RowsAffected, result.Error
}
