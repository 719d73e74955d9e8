package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *entities.Task) error

	// FindByID retrieves an owned task by its ID
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error)

	// Update updates an existing task
	Update(ctx context.Context, task *entities.Task) error

	// Delete removes a task
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// List retrieves tasks with filters and pagination
	List(ctx context.Context, ownerID uuid.UUID, filters TaskFilters) ([]*entities.Task, int64, error)

	// MaxPosition returns the highest kanban position in a status column
	MaxPosition(ctx context.Context, ownerID uuid.UUID, status entities.TaskStatus) (int, error)

	// Reorder rewrites the positions of the given tasks within a column
	Reorder(ctx context.Context, ownerID uuid.UUID, status entities.TaskStatus, orderedIDs []uuid.UUID) error
}

// TaskFilters represents filter options for listing tasks
type TaskFilters struct {
	ClientID  *uuid.UUID
	MeetingID *uuid.UUID
	Status    *entities.TaskStatus
	Priority  *entities.TaskPriority
	Search    string
	Limit     int
	Offset    int
	SortBy    string // "position", "created_at", "due_date", "priority"
	SortOrder string // "asc", "desc"
}
