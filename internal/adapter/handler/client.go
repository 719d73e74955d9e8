package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	clientDTO "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/client"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/common"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	clientUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/client"
)

// Client handles CRM client endpoints
type Client struct {
	clientService clientUsecase.Service
	logger        *zap.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService clientUsecase.Service, logger *zap.Logger) *Client {
	return &Client{
		clientService: clientService,
		logger:        logger,
	}
}

// Create registers a new client
// @Summary      Create client
// @Tags         Clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      client.CreateClientRequest  true  "Client data"
// @Success      201      {object}  entities.Client
// @Router       /clients [post]
func (h *Client) Create(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req clientDTO.CreateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	created, err := h.clientService.Create(c.Request().Context(), ownerID, toClientInput(req.Name, req.Email, req.Phone, req.Status, req.RiskScore, req.RiskProfile, req.Notes))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, created)
}

// Get retrieves a client by id
// @Summary      Get client
// @Tags         Clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  entities.Client
// @Failure      404  {object}  map[string]interface{}
// @Router       /clients/{id} [get]
func (h *Client) Get(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	found, err := h.clientService.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, found)
}

// Update rewrites the writable fields of a client
// @Summary      Update client
// @Tags         Clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Client ID"
// @Param        request  body      client.UpdateClientRequest  true  "Client data"
// @Success      200      {object}  entities.Client
// @Router       /clients/{id} [put]
func (h *Client) Update(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req clientDTO.UpdateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.clientService.Update(c.Request().Context(), ownerID, id, toClientInput(req.Name, req.Email, req.Phone, req.Status, req.RiskScore, req.RiskProfile, req.Notes))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, updated)
}

// Delete removes a client
// @Summary      Delete client
// @Tags         Clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /clients/{id} [delete]
func (h *Client) Delete(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.clientService.Delete(c.Request().Context(), ownerID, id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// List retrieves clients with filters and pagination
// @Summary      List clients
// @Tags         Clients
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        search     query     string  false  "Search in name and email"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  common.ListResponse
// @Router       /clients [get]
func (h *Client) List(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req clientDTO.ListClientsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	limit, offset := pageToLimitOffset(req.Page, req.PageSize)
	filters := repositories.ClientFilters{
		Search:       req.Search,
		RiskScoreMin: req.RiskScoreMin,
		RiskScoreMax: req.RiskScoreMax,
		Limit:        limit,
		Offset:       offset,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
	}
	if req.Status != nil {
		status := entities.ClientStatus(*req.Status)
		filters.Status = &status
	}

	clients, total, err := h.clientService.List(c.Request().Context(), ownerID, filters)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.NewListResponse(clients, req.Page, req.PageSize, total))
}

func toClientInput(name string, email, phone, status *string, riskScore *int, riskProfile, notes *string) clientUsecase.Input {
	input := clientUsecase.Input{
		Name:        name,
		Email:       email,
		Phone:       phone,
		RiskScore:   riskScore,
		RiskProfile: riskProfile,
		Notes:       notes,
	}
	if status != nil {
		s := entities.ClientStatus(*status)
		input.Status = &s
	}
	return input
}
