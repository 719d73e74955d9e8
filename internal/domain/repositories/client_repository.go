package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
)

// ClientRepository defines the interface for client data access.
// Every lookup is scoped by owner: tenants never see each other's rows.
type ClientRepository interface {
	// Create creates a new client
	Create(ctx context.Context, client *entities.Client) error

	// FindByID retrieves an owned client by its ID
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Client, error)

	// Update updates an existing client
	Update(ctx context.Context, client *entities.Client) error

	// Delete removes a client
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// List retrieves clients with filters and pagination
	List(ctx context.Context, ownerID uuid.UUID, filters ClientFilters) ([]*entities.Client, int64, error)
}

// ClientFilters represents filter options for listing clients
type ClientFilters struct {
	Status       *entities.ClientStatus
	Search       string // Search in name, email
	RiskScoreMin *int
	RiskScoreMax *int
	Limit        int
	Offset       int
	SortBy       string // "created_at", "name", "risk_score"
	SortOrder    string // "asc", "desc"
}
