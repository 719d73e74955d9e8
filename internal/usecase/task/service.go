package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
)

// Service defines kanban task operations
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input Input) (*entities.Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input Input) (*entities.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filters repositories.TaskFilters) ([]*entities.Task, int64, error)

	// Transition moves a task through the status state machine
	Transition(ctx context.Context, ownerID, id uuid.UUID, target entities.TaskStatus) (*entities.Task, error)

	// Reorder rewrites the kanban positions within one column
	Reorder(ctx context.Context, ownerID uuid.UUID, status entities.TaskStatus, orderedIDs []uuid.UUID) error
}

// Input carries the writable fields of a task
type Input struct {
	Title       string
	Description *string
	ClientID    *uuid.UUID
	MeetingID   *uuid.UUID
	Priority    *entities.TaskPriority
	DueDate     *time.Time
}

type service struct {
	taskRepo repositories.TaskRepository
	webhooks webhook.Service
	logger   *zap.Logger
}

// NewService constructs the task service
func NewService(taskRepo repositories.TaskRepository, webhooks webhook.Service, logger *zap.Logger) Service {
	return &service{
		taskRepo: taskRepo,
		webhooks: webhooks,
		logger:   logger,
	}
}

// Create adds a task at the end of the backlog column
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input Input) (*entities.Task, error) {
	if input.Title == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, usecaseErrors.ErrInvalidPriority
	}

	task := entities.NewTask(ownerID, input.Title)
	applyInput(task, input)

	maxPos, err := s.taskRepo.MaxPosition(ctx, ownerID, task.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to compute kanban position: %w", err)
	}
	task.Position = maxPos + 1

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventTaskCreated, task, nil)
	return task, nil
}

// Get retrieves one owned task
func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, usecaseErrors.ErrTaskNotFound
	}
	return task, nil
}

// Update modifies the task fields that do not touch the state machine
func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, input Input) (*entities.Task, error) {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, usecaseErrors.ErrInvalidPriority
	}

	previous := *task

	if input.Title != "" {
		task.Title = input.Title
	}
	applyInput(task, input)
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventTaskUpdated, task, &previous)
	return task, nil
}

// Delete removes an owned task
func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventTaskDeleted, task, nil)
	return nil
}

// List retrieves the consultant's tasks
func (s *service) List(ctx context.Context, ownerID uuid.UUID, filters repositories.TaskFilters) ([]*entities.Task, int64, error) {
	return s.taskRepo.List(ctx, ownerID, filters)
}

// Transition moves a task to a new status. Illegal moves are rejected by
// the entity; the task lands at the end of its new column.
func (s *service) Transition(ctx context.Context, ownerID, id uuid.UUID, target entities.TaskStatus) (*entities.Task, error) {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	previous := *task

	if err := task.TransitionTo(target); err != nil {
		return nil, usecaseErrors.ErrInvalidTransition
	}

	maxPos, err := s.taskRepo.MaxPosition(ctx, ownerID, target)
	if err != nil {
		return nil, fmt.Errorf("failed to compute kanban position: %w", err)
	}
	task.Position = maxPos + 1

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to transition task: %w", err)
	}

	s.logger.Info("task transitioned",
		zap.String("task_id", task.ID.String()),
		zap.String("from", string(previous.Status)),
		zap.String("to", string(target)),
	)

	s.emit(ctx, ownerID, entities.EventTaskStatusChanged, task, &previous)
	return task, nil
}

// Reorder rewrites the positions of a kanban column
func (s *service) Reorder(ctx context.Context, ownerID uuid.UUID, status entities.TaskStatus, orderedIDs []uuid.UUID) error {
	if !status.IsValid() {
		return usecaseErrors.ErrInvalidTaskStatus
	}
	if len(orderedIDs) == 0 {
		return usecaseErrors.ErrInvalidKanbanOrder
	}

	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return usecaseErrors.ErrInvalidKanbanOrder
		}
		seen[id] = struct{}{}
	}

	if err := s.taskRepo.Reorder(ctx, ownerID, status, orderedIDs); err != nil {
		if err == entities.ErrTaskNotInColumn {
			return usecaseErrors.ErrInvalidKanbanOrder
		}
		return fmt.Errorf("failed to reorder tasks: %w", err)
	}
	return nil
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

func applyInput(task *entities.Task, input Input) {
	if input.Description != nil {
		task.Description = input.Description
	}
	if input.ClientID != nil {
		task.ClientID = input.ClientID
	}
	if input.MeetingID != nil {
		task.MeetingID = input.MeetingID
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
}
