package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/common"
	taskDTO "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/task"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	taskUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/task"
)

// Task handles kanban task endpoints
type Task struct {
	taskService taskUsecase.Service
	logger      *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService taskUsecase.Service, logger *zap.Logger) *Task {
	return &Task{
		taskService: taskService,
		logger:      logger,
	}
}

// Create adds a task to the backlog column
// @Summary      Create task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      task.CreateTaskRequest  true  "Task data"
// @Success      201      {object}  entities.Task
// @Router       /tasks [post]
func (h *Task) Create(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	input, err := toTaskInput(req.Title, req.Description, req.ClientID, req.MeetingID, req.Priority, req.DueDate)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	created, err := h.taskService.Create(c.Request().Context(), ownerID, input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, created)
}

// Get retrieves a task by id
// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  entities.Task
// @Failure      404  {object}  map[string]interface{}
// @Router       /tasks/{id} [get]
func (h *Task) Get(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	found, err := h.taskService.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, found)
}

// Update rewrites the writable fields of a task
// @Summary      Update task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Task ID"
// @Param        request  body      task.UpdateTaskRequest  true  "Task data"
// @Success      200      {object}  entities.Task
// @Router       /tasks/{id} [put]
func (h *Task) Update(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	input, err := toTaskInput(req.Title, req.Description, req.ClientID, req.MeetingID, req.Priority, req.DueDate)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.taskService.Update(c.Request().Context(), ownerID, id, input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, updated)
}

// Transition moves a task through the kanban state machine
// @Summary      Transition task status
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Task ID"
// @Param        request  body      task.TransitionTaskRequest  true  "Target status"
// @Success      200      {object}  entities.Task
// @Failure      422      {object}  map[string]interface{}
// @Router       /tasks/{id}/status [patch]
func (h *Task) Transition(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.TransitionTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.taskService.Transition(c.Request().Context(), ownerID, id, entities.TaskStatus(req.Status))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, updated)
}

// Reorder rewrites the task positions inside one kanban column
// @Summary      Reorder kanban column
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      task.ReorderTasksRequest  true  "Ordered task ids"
// @Success      200      {object}  map[string]interface{}
// @Router       /tasks/reorder [post]
func (h *Task) Reorder(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.ReorderTasksRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ids := make([]uuid.UUID, 0, len(req.TaskIDs))
	for _, raw := range req.TaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		ids = append(ids, id)
	}

	if err := h.taskService.Reorder(c.Request().Context(), ownerID, entities.TaskStatus(req.Status), ids); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// Delete removes a task
// @Summary      Delete task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /tasks/{id} [delete]
func (h *Task) Delete(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.taskService.Delete(c.Request().Context(), ownerID, id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// List retrieves tasks with filters and pagination
// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        client_id   query     string  false  "Filter by client"
// @Param        meeting_id  query     string  false  "Filter by meeting"
// @Param        status      query     string  false  "Filter by kanban column"
// @Param        priority    query     string  false  "Filter by priority"
// @Param        page        query     int     false  "Page number"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Router       /tasks [get]
func (h *Task) List(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.ListTasksRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	limit, offset := pageToLimitOffset(req.Page, req.PageSize)
	filters := repositories.TaskFilters{
		Search:    req.Search,
		Limit:     limit,
		Offset:    offset,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	clientID, err := parseOptionalUUID(req.ClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	filters.ClientID = clientID
	meetingID, err := parseOptionalUUID(req.MeetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	filters.MeetingID = meetingID
	if req.Status != nil {
		status := entities.TaskStatus(*req.Status)
		filters.Status = &status
	}
	if req.Priority != nil {
		priority := entities.TaskPriority(*req.Priority)
		filters.Priority = &priority
	}

	tasks, total, err := h.taskService.List(c.Request().Context(), ownerID, filters)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.NewListResponse(tasks, req.Page, req.PageSize, total))
}

func toTaskInput(title string, description, clientID, meetingID, priority *string, dueDate *time.Time) (taskUsecase.Input, error) {
	input := taskUsecase.Input{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
	}
	cid, err := parseOptionalUUID(clientID)
	if err != nil {
		return input, err
	}
	input.ClientID = cid
	mid, err := parseOptionalUUID(meetingID)
	if err != nil {
		return input, err
	}
	input.MeetingID = mid
	if priority != nil {
		p := entities.TaskPriority(*priority)
		input.Priority = &p
	}
	return input, nil
}
