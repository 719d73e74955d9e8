package task

import "time"

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	ClientID    *string    `json:"client_id,omitempty" validate:"omitempty,uuid"`
	MeetingID   *string    `json:"meeting_id,omitempty" validate:"omitempty,uuid"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=baixa media alta urgente"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest represents the request to update a task
type UpdateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	ClientID    *string    `json:"client_id,omitempty" validate:"omitempty,uuid"`
	MeetingID   *string    `json:"meeting_id,omitempty" validate:"omitempty,uuid"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=baixa media alta urgente"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TransitionTaskRequest moves a task through the kanban state machine
type TransitionTaskRequest struct {
	Status string `json:"status" validate:"required,oneof=backlog pendente em_andamento em_revisao concluida cancelada"`
}

// ReorderTasksRequest rewrites the positions inside one kanban column
type ReorderTasksRequest struct {
	Status  string   `json:"status" validate:"required,oneof=backlog pendente em_andamento em_revisao concluida cancelada"`
	TaskIDs []string `json:"task_ids" validate:"required,min=1,dive,uuid"`
}

// ListTasksRequest represents the query parameters for listing tasks
type ListTasksRequest struct {
	ClientID  *string `query:"client_id" validate:"omitempty,uuid"`
	MeetingID *string `query:"meeting_id" validate:"omitempty,uuid"`
	Status    *string `query:"status" validate:"omitempty,oneof=backlog pendente em_andamento em_revisao concluida cancelada"`
	Priority  *string `query:"priority" validate:"omitempty,oneof=baixa media alta urgente"`
	Search    string  `query:"search"`
	Page      int     `query:"page" validate:"omitempty,min=1"`
	PageSize  int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string  `query:"sort_by" validate:"omitempty,oneof=position created_at due_date priority"`
	SortOrder string  `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}
