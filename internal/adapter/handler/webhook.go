package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/common"
	webhookDTO "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/webhook"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	webhookUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
)

// Webhook handles endpoint configuration and queue introspection
type Webhook struct {
	webhookService webhookUsecase.Service
	logger         *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookService webhookUsecase.Service, logger *zap.Logger) *Webhook {
	return &Webhook{
		webhookService: webhookService,
		logger:         logger,
	}
}

// CreateConfig registers an outbound endpoint
// @Summary      Create webhook configuration
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      webhook.CreateConfigRequest  true  "Endpoint data"
// @Success      201      {object}  entities.WebhookConfiguration
// @Router       /webhooks/configs [post]
func (h *Webhook) CreateConfig(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req webhookDTO.CreateConfigRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	created, err := h.webhookService.CreateConfig(c.Request().Context(), ownerID, webhookUsecase.ConfigInput{
		Name:        req.Name,
		URL:         req.URL,
		HTTPMethod:  req.HTTPMethod,
		Secret:      req.Secret,
		Headers:     req.Headers,
		EventTypes:  req.EventTypes,
		IsActive:    req.IsActive,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, created)
}

// GetConfig retrieves an endpoint configuration
// @Summary      Get webhook configuration
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Configuration ID"
// @Success      200  {object}  entities.WebhookConfiguration
// @Failure      404  {object}  map[string]interface{}
// @Router       /webhooks/configs/{id} [get]
func (h *Webhook) GetConfig(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	found, err := h.webhookService.GetConfig(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, found)
}

// UpdateConfig rewrites an endpoint configuration
// @Summary      Update webhook configuration
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Configuration ID"
// @Param        request  body      webhook.UpdateConfigRequest  true  "Endpoint data"
// @Success      200      {object}  entities.WebhookConfiguration
// @Router       /webhooks/configs/{id} [put]
func (h *Webhook) UpdateConfig(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req webhookDTO.UpdateConfigRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.webhookService.UpdateConfig(c.Request().Context(), ownerID, id, webhookUsecase.ConfigInput{
		Name:        req.Name,
		URL:         req.URL,
		HTTPMethod:  req.HTTPMethod,
		Secret:      req.Secret,
		Headers:     req.Headers,
		EventTypes:  req.EventTypes,
		IsActive:    req.IsActive,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, updated)
}

// DeleteConfig removes an endpoint configuration
// @Summary      Delete webhook configuration
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Configuration ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /webhooks/configs/{id} [delete]
func (h *Webhook) DeleteConfig(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.webhookService.DeleteConfig(c.Request().Context(), ownerID, id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// ListConfigs retrieves the owner's endpoint configurations
// @Summary      List webhook configurations
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entities.WebhookConfiguration
// @Router       /webhooks/configs [get]
func (h *Webhook) ListConfigs(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	configs, err := h.webhookService.ListConfigs(c.Request().Context(), ownerID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, configs)
}

// TestFire sends a synthetic event to one endpoint
// @Summary      Test-fire webhook configuration
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Configuration ID"
// @Success      200  {object}  webhookUsecase.TestResult
// @Failure      404  {object}  map[string]interface{}
// @Router       /webhooks/configs/{id}/test [post]
func (h *Webhook) TestFire(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.webhookService.TestFire(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, result)
}

// ListQueue retrieves the owner's event queue with filters
// @Summary      Inspect event queue
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by queue status"
// @Param        event_type  query     string  false  "Filter by event type"
// @Param        page        query     int     false  "Page number"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Router       /webhooks/queue [get]
func (h *Webhook) ListQueue(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req webhookDTO.ListQueueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	limit, offset := pageToLimitOffset(req.Page, req.PageSize)
	filters := repositories.WebhookEventFilters{
		EventType: req.EventType,
		Limit:     limit,
		Offset:    offset,
	}
	if req.Status != nil {
		status := entities.WebhookEventStatus(*req.Status)
		filters.Status = &status
	}

	events, total, err := h.webhookService.ListQueue(c.Request().Context(), ownerID, filters)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.NewListResponse(events, req.Page, req.PageSize, total))
}

// GetEvent retrieves a queued event
// @Summary      Get queued event
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  entities.WebhookEvent
// @Failure      404  {object}  map[string]interface{}
// @Router       /webhooks/queue/{id} [get]
func (h *Webhook) GetEvent(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	event, err := h.webhookService.GetEvent(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, event)
}

// RequeueEvent resets a failed event for redelivery
// @Summary      Requeue failed event
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  entities.WebhookEvent
// @Failure      422  {object}  map[string]interface{}
// @Router       /webhooks/queue/{id}/requeue [post]
func (h *Webhook) RequeueEvent(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	event, err := h.webhookService.Requeue(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, event)
}

// AdminListQueue retrieves the event queue across every tenant
// @Summary      Inspect global event queue
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by queue status"
// @Param        event_type  query     string  false  "Filter by event type"
// @Param        page        query     int     false  "Page number"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Router       /admin/webhooks/queue [get]
func (h *Webhook) AdminListQueue(c echo.Context) error {
	var req webhookDTO.ListQueueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	limit, offset := pageToLimitOffset(req.Page, req.PageSize)
	filters := repositories.WebhookEventFilters{
		EventType: req.EventType,
		Limit:     limit,
		Offset:    offset,
	}
	if req.Status != nil {
		status := entities.WebhookEventStatus(*req.Status)
		filters.Status = &status
	}

	events, total, err := h.webhookService.ListQueueAll(c.Request().Context(), filters)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.NewListResponse(events, req.Page, req.PageSize, total))
}

// ListConfigLogs retrieves delivery attempts of one endpoint
// @Summary      List endpoint delivery logs
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true   "Configuration ID"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  common.ListResponse
// @Router       /webhooks/configs/{id}/logs [get]
func (h *Webhook) ListConfigLogs(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req webhookDTO.ListLogsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	limit, offset := pageToLimitOffset(req.Page, req.PageSize)
	logs, total, err := h.webhookService.ListDeliveryLogs(c.Request().Context(), ownerID, id, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.NewListResponse(logs, req.Page, req.PageSize, total))
}

// ListEventLogs retrieves delivery attempts of one event
// @Summary      List event delivery logs
// @Tags         Webhooks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {array}  entities.WebhookDeliveryLog
// @Router       /webhooks/queue/{id}/logs [get]
func (h *Webhook) ListEventLogs(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	logs, err := h.webhookService.ListEventDeliveryLogs(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, logs)
}
