package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
)

// WebhookConfigRepository defines data access for webhook configurations
type WebhookConfigRepository interface {
	// Create creates a new configuration
	Create(ctx context.Context, cfg *entities.WebhookConfiguration) error

	// FindByID retrieves an owned configuration by its ID
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.WebhookConfiguration, error)

	// Update updates an existing configuration
	Update(ctx context.Context, cfg *entities.WebhookConfiguration) error

	// Delete removes a configuration
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// ListByOwner retrieves all configurations of a user
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.WebhookConfiguration, error)

	// FindActiveForEvent retrieves active configurations of the owner that
	// subscribe to the event type.
	FindActiveForEvent(ctx context.Context, ownerID uuid.UUID, eventType string) ([]*entities.WebhookConfiguration, error)
}

// WebhookEventRepository defines data access for the outbound event queue
type WebhookEventRepository interface {
	// Enqueue inserts a pending event
	Enqueue(ctx context.Context, event *entities.WebhookEvent) error

	// FindByID retrieves an event by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.WebhookEvent, error)

	// ClaimDue atomically claims up to limit due pending events by flipping
	// them to processing. Only one dispatcher wins each row.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entities.WebhookEvent, error)

	// Update updates an existing event
	Update(ctx context.Context, event *entities.WebhookEvent) error

	// List retrieves queue entries with filters and pagination
	List(ctx context.Context, filters WebhookEventFilters) ([]*entities.WebhookEvent, int64, error)

	// ReleaseStuck returns processing rows older than the cutoff to pending
	ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error)
}

// WebhookEventFilters represents filter options for listing queue entries
type WebhookEventFilters struct {
	OwnerID   *uuid.UUID
	EventType *string
	Status    *entities.WebhookEventStatus
	Limit     int
	Offset    int
}

// WebhookDeliveryLogRepository defines data access for delivery logs
type WebhookDeliveryLogRepository interface {
	// Create records a delivery attempt
	Create(ctx context.Context, log *entities.WebhookDeliveryLog) error

	// ListByConfig retrieves logs for a configuration, newest first
	ListByConfig(ctx context.Context, configID uuid.UUID, limit, offset int) ([]*entities.WebhookDeliveryLog, int64, error)

	// ListByEvent retrieves logs for an event, newest first
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entities.WebhookDeliveryLog, error)

	// DeleteOlderThan prunes logs created before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
