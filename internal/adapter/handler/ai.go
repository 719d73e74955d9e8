package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	aiUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
)

// AI handles the meeting analysis pipeline endpoints
type AI struct {
	aiService aiUsecase.Service
	logger    *zap.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService aiUsecase.Service, logger *zap.Logger) *AI {
	return &AI{
		aiService: aiService,
		logger:    logger,
	}
}

// RequestSummary consumes a credit and queues analysis for a meeting
// @Summary      Request meeting summary
// @Description  Spends one AI credit and queues transcription or summarization
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      202  {object}  entities.AnalysisJob
// @Failure      402  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /meetings/{id}/summary [post]
func (h *AI) RequestSummary(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.aiService.RequestSummary(c.Request().Context(), ownerID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return c.JSON(202, success{
		Code:    202,
		Message: "analysis queued",
		Data:    job,
	})
}

// GetJob retrieves an analysis job
// @Summary      Get analysis job
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  entities.AnalysisJob
// @Failure      404  {object}  map[string]interface{}
// @Router       /analysis-jobs/{id} [get]
func (h *AI) GetJob(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.aiService.GetJob(c.Request().Context(), ownerID, jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, job)
}

// ListJobs retrieves the analysis jobs of a meeting
// @Summary      List meeting analysis jobs
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {array}  entities.AnalysisJob
// @Router       /meetings/{id}/jobs [get]
func (h *AI) ListJobs(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobs, err := h.aiService.ListJobs(c.Request().Context(), ownerID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, jobs)
}

// CancelJob cancels a queued analysis job
// @Summary      Cancel analysis job
// @Description  Cancels a job that no worker has picked up yet
// @Tags         AI
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  entities.AnalysisJob
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /analysis-jobs/{id}/cancel [post]
func (h *AI) CancelJob(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.aiService.CancelJob(c.Request().Context(), ownerID, jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, job)
}

// TranscriptionWebhook receives the transcription provider callback.
// The payload is verified with the shared webhook secret before any
// state is touched.
// @Summary      Transcription provider callback
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /webhooks/transcription [post]
func (h *AI) TranscriptionWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	signature := c.Request().Header.Get(ai.ProviderSignatureHeader)

	if err := h.aiService.HandleTranscriptionWebhook(c.Request().Context(), body, signature); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}
