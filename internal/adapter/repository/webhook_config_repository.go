package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
)

// webhookConfigRepository implements the WebhookConfigRepository interface
type webhookConfigRepository struct {
	db *gorm.DB
}

// NewWebhookConfigRepository creates a new webhook configuration repository
func NewWebhookConfigRepository(db *gorm.DB) repositories.WebhookConfigRepository {
	return &webhookConfigRepository{db: db}
}

// Create creates a new configuration
func (r *webhookConfigRepository) Create(ctx context.Context, cfg *entities.WebhookConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

// FindByID retrieves an owned configuration by its ID
func (r *webhookConfigRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.WebhookConfiguration, error) {
	var cfg entities.WebhookConfiguration
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// Update updates an existing configuration
func (r *webhookConfigRepository) Update(ctx context.Context, cfg *entities.WebhookConfiguration) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// Delete removes a configuration
func (r *webhookConfigRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&entities.WebhookConfiguration{}).Error
}

// ListByOwner retrieves all configurations of a user
func (r *webhookConfigRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.WebhookConfiguration, error) {
	var cfgs []*entities.WebhookConfiguration
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&cfgs).Error
	return cfgs, err
}

// FindActiveForEvent retrieves active configurations of the owner that
// subscribe to the event type. Subscription filtering happens in memory
// because event_types is stored as a json array.
func (r *webhookConfigRepository) FindActiveForEvent(ctx context.Context, ownerID uuid.UUID, eventType string) ([]*entities.WebhookConfiguration, error) {
	var cfgs []*entities.WebhookConfiguration
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Find(&cfgs).Error
	if err != nil {
		return nil, err
	}

	matched := make([]*entities.WebhookConfiguration, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.SubscribedTo(eventType) {
			matched = append(matched, cfg)
		}
	}
	return matched, nil
}
