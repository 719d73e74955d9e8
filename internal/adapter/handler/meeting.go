package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/common"
	meetingDTO "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/meeting"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	meetingUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/meeting"
)

// Meeting handles meeting endpoints
type Meeting struct {
	meetingService meetingUsecase.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService meetingUsecase.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetingService: meetingService,
		logger:         logger,
	}
}

// Create schedules a new meeting for a client
// @Summary      Create meeting
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.CreateMeetingRequest  true  "Meeting data"
// @Success      201      {object}  entities.Meeting
// @Router       /meetings [post]
func (h *Meeting) Create(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.CreateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	clientID, err := parseOptionalUUID(&req.ClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	created, err := h.meetingService.Create(c.Request().Context(), ownerID, meetingUsecase.Input{
		ClientID:        clientID,
		TypeCode:        req.TypeCode,
		Title:           req.Title,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, created)
}

// Get retrieves a meeting by id
// @Summary      Get meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  entities.Meeting
// @Failure      404  {object}  map[string]interface{}
// @Router       /meetings/{id} [get]
func (h *Meeting) Get(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	found, err := h.meetingService.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, found)
}

// Update rewrites the writable fields of a meeting
// @Summary      Update meeting
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Meeting ID"
// @Param        request  body      meeting.UpdateMeetingRequest  true  "Meeting data"
// @Success      200      {object}  entities.Meeting
// @Router       /meetings/{id} [put]
func (h *Meeting) Update(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.UpdateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	input := meetingUsecase.Input{
		TypeCode:        req.TypeCode,
		Title:           req.Title,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	}
	if req.Status != nil {
		status := entities.MeetingStatus(*req.Status)
		input.Status = &status
	}

	updated, err := h.meetingService.Update(c.Request().Context(), ownerID, id, input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, updated)
}

// Delete removes a meeting
// @Summary      Delete meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /meetings/{id} [delete]
func (h *Meeting) Delete(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.meetingService.Delete(c.Request().Context(), ownerID, id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// List retrieves meetings with filters and pagination
// @Summary      List meetings
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        client_id  query     string  false  "Filter by client"
// @Param        status     query     string  false  "Filter by status"
// @Param        search     query     string  false  "Search in title"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  common.ListResponse
// @Router       /meetings [get]
func (h *Meeting) List(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.ListMeetingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	limit, offset := pageToLimitOffset(req.Page, req.PageSize)
	filters := repositories.MeetingFilters{
		TypeCode:  req.TypeCode,
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
	if req.Status != nil {
		status := entities.MeetingStatus(*req.Status)
		filters.Status = &status
	}

	meetings, total, err := h.meetingService.List(c.Request().Context(), ownerID, filters)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.NewListResponse(meetings, req.Page, req.PageSize, total))
}

// AttachTranscript stores a manually provided transcript
// @Summary      Attach transcript
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Meeting ID"
// @Param        request  body      meeting.AttachTranscriptRequest  true  "Transcript"
// @Success      200      {object}  entities.Meeting
// @Router       /meetings/{id}/transcript [put]
func (h *Meeting) AttachTranscript(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.AttachTranscriptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.meetingService.AttachTranscript(c.Request().Context(), ownerID, id, req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, updated)
}
