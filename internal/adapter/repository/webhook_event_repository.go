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

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event queue repository
func NewWebhookEventRepository(db *gorm.DB) repositories.WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// Enqueue inserts a pending event
func (r *webhookEventRepository) Enqueue(ctx context.Context, event *entities.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID retrieves an event by its ID
func (r *webhookEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.WebhookEvent, error) {
	var event entities.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// ClaimDue atomically claims up to limit due pending events. Each candidate
// is flipped to processing with a conditional update so a row claimed by a
// concurrent dispatcher is skipped, never double-delivered.
func (r *webhookEventRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entities.WebhookEvent, error) {
	var candidates []*entities.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", entities.WebhookEventStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]*entities.WebhookEvent, 0, len(candidates))
	for _, event := range candidates {
		result := r.db.WithContext(ctx).
			Model(&entities.WebhookEvent{}).
			Where("id = ? AND status = ?", event.ID, entities.WebhookEventStatusPending).
			Updates(map[string]interface{}{
				"status":     entities.WebhookEventStatusProcessing,
				"claimed_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return claimed, result.Error
		}
		if result.RowsAffected == 0 {
			// Another dispatcher won this row
			continue
		}
		event.Status = entities.WebhookEventStatusProcessing
		claimedAt := now
		event.ClaimedAt = &claimedAt
		claimed = append(claimed, event)
	}
	return claimed, nil
}

// Update updates an existing event
func (r *webhookEventRepository) Update(ctx context.Context, event *entities.WebhookEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// List retrieves queue entries with filters and pagination
func (r *webhookEventRepository) List(ctx context.Context, filters repositories.WebhookEventFilters) ([]*entities.WebhookEvent, int64, error) {
	var events []*entities.WebhookEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.WebhookEvent{})

	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.EventType != nil {
		query = query.Where("event_type = ?", *filters.EventType)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ReleaseStuck returns processing rows older than the cutoff to pending.
// Covers dispatchers that died mid-delivery.
func (r *webhookEventRepository) ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.WebhookEvent{}).
		Where("status = ? AND claimed_at < ?", entities.WebhookEventStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":          entities.WebhookEventStatusPending,
			"claimed_at":      nil,
			"next_attempt_at": time.Now(),
			"updated_at":      time.Now(),
		})
	return result.RowsAffected, result.Error
}
