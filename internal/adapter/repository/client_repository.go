package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
)

// clientRepository implements the ClientRepository interface
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) repositories.ClientRepository {
	return &clientRepository{db: db}
}

// Create creates a new client
func (r *clientRepository) Create(ctx context.Context, client *entities.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// FindByID retrieves an owned client by its ID
func (r *clientRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Client, error) {
	var client entities.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update updates an existing client
func (r *clientRepository) Update(ctx context.Context, client *entities.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete removes a client
func (r *clientRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&entities.Client{}, id).Error
}

// List retrieves clients with filters and pagination
func (r *clientRepository) List(ctx context.Context, ownerID uuid.UUID, filters repositories.ClientFilters) ([]*entities.Client, int64, error) {
	var clients []*entities.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.Client{}).Where("owner_id = ?", ownerID)

	// Apply filters
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		searchPattern := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("name ILIKE ? OR email ILIKE ?", searchPattern, searchPattern)
	}
	if filters.RiskScoreMin != nil {
		query = query.Where("risk_score >= ?", *filters.RiskScoreMin)
	}
	if filters.RiskScoreMax != nil {
		query = query.Where("risk_score <= ?", *filters.RiskScoreMax)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	sortBy := "created_at"
	switch filters.SortBy {
	case "name", "risk_score", "created_at":
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	// Apply pagination
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	err := query.Find(&clients).Error
	return clients, total, err
}
