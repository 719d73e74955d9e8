package entities

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the kanban status of a task
type TaskStatus string

const (
	TaskStatusBacklog     TaskStatus = "backlog"
	TaskStatusPendente    TaskStatus = "pendente"
	TaskStatusEmAndamento TaskStatus = "em_andamento"
	TaskStatusEmRevisao   TaskStatus = "em_revisao"
	TaskStatusConcluida   TaskStatus = "concluida"
	TaskStatusCancelada   TaskStatus = "cancelada"
)

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusPendente, TaskStatusEmAndamento,
		TaskStatusEmRevisao, TaskStatusConcluida, TaskStatusCancelada:
		return true
	}
	return false
}

// IsTerminal reports whether the status closes the task
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusConcluida || s == TaskStatusCancelada
}

// taskTransitions encodes the legal status state machine
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusBacklog:     {TaskStatusPendente, TaskStatusCancelada},
	TaskStatusPendente:    {TaskStatusBacklog, TaskStatusEmAndamento, TaskStatusCancelada},
	TaskStatusEmAndamento: {TaskStatusPendente, TaskStatusEmRevisao, TaskStatusCancelada},
	TaskStatusEmRevisao:   {TaskStatusEmAndamento, TaskStatusConcluida, TaskStatusCancelada},
	TaskStatusConcluida:   {TaskStatusEmRevisao},
	TaskStatusCancelada:   {TaskStatusBacklog},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TaskPriority represents task priority
type TaskPriority string

const (
	TaskPriorityBaixa   TaskPriority = "baixa"
	TaskPriorityMedia   TaskPriority = "media"
	TaskPriorityAlta    TaskPriority = "alta"
	TaskPriorityUrgente TaskPriority = "urgente"
)

// IsValid checks if the task priority is valid
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityBaixa, TaskPriorityMedia, TaskPriorityAlta, TaskPriorityUrgente:
		return true
	}
	return false
}

// Task represents a follow-up task on the consultant's kanban board
type Task struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID   uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	ClientID  *uuid.UUID `json:"client_id,omitempty" gorm:"type:uuid;index"`
	MeetingID *uuid.UUID `json:"meeting_id,omitempty" gorm:"type:uuid;index"`

	Title       string       `json:"title" gorm:"type:varchar(255);not null"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'backlog';index"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(20);not null;default:'media';index"`

	// Ordering within the kanban column
	Position int `json:"position" gorm:"not null;default:0"`

	DueDate     *time.Time `json:"due_date,omitempty" gorm:"index"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTask creates a new task in the backlog
func NewTask(ownerID uuid.UUID, title string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Status:    TaskStatusBacklog,
		Priority:  TaskPriorityMedia,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the task to a new status, keeping completed_at in sync
func (t *Task) TransitionTo(target TaskStatus) error {
	if !target.IsValid() {
		return ErrInvalidTaskStatus
	}
	if !t.Status.CanTransitionTo(target) {
		return ErrInvalidTaskTransition
	}

	t.Status = target
	now := time.Now()
	if target == TaskStatusConcluida {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return nil
}

// IsOwnedBy checks tenant ownership
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.OwnerID == userID
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}
