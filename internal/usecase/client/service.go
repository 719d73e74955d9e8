package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
)

// Service defines client portfolio operations
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input Input) (*entities.Client, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Client, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input Input) (*entities.Client, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filters repositories.ClientFilters) ([]*entities.Client, int64, error)
}

// Input carries the writable fields of a client
type Input struct {
	Name        string
	Email       *string
	Phone       *string
	Status      *entities.ClientStatus
	RiskScore   *int
	RiskProfile *string
	Notes       *string
}

type service struct {
	clientRepo repositories.ClientRepository
	webhooks   webhook.Service
	logger     *zap.Logger
}

// NewService constructs the client service
func NewService(clientRepo repositories.ClientRepository, webhooks webhook.Service, logger *zap.Logger) Service {
	return &service{
		clientRepo: clientRepo,
		webhooks:   webhooks,
		logger:     logger,
	}
}

// Create adds a client to the consultant's portfolio
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input Input) (*entities.Client, error) {
	if input.Name == "" {
		return nil, usecaseErrors.ErrClientNameEmpty
	}

	client := entities.NewClient(ownerID, input.Name)
	applyInput(client, input)

	if err := client.Validate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventClientCreated, client, nil)
	return client, nil
}

// Get retrieves one owned client
func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, usecaseErrors.ErrClientNotFound
	}
	return client, nil
}

// Update modifies an owned client and reports the previous values
func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, input Input) (*entities.Client, error) {
	client, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	previous := *client

	if input.Name != "" {
		client.Name = input.Name
	}
	applyInput(client, input)

	if err := client.Validate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventClientUpdated, client, &previous)
	return client, nil
}

// Delete removes an owned client
func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	client, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.clientRepo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventClientDeleted, client, nil)
	return nil
}

// List retrieves the consultant's clients
func (s *service) List(ctx context.Context, ownerID uuid.UUID, filters repositories.ClientFilters) ([]*entities.Client, int64, error) {
	return s.clientRepo.List(ctx, ownerID, filters)
}

// emit publishes a webhook event; delivery problems never fail the operation
func (s *service) emit(ctx context.Context, ownerID uuid.UUID, eventType string, data, previous interface{}) {
	if s.webhooks == nil {
		return
	}
	if err := s.webhooks.Publish(ctx, ownerID, eventType, data, previous); err != nil {
		s.logger.Warn("failed to publish webhook event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func applyInput(client *entities.Client, input Input) {
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.Status != nil {
		client.Status = *input.Status
	}
	if input.RiskScore != nil {
		client.RiskScore = *input.RiskScore
	}
	if input.RiskProfile != nil {
		client.RiskProfile = input.RiskProfile
	}
	if input.Notes != nil {
		client.Notes = input.Notes
	}
}
