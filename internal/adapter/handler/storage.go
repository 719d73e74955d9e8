package handler

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/storage"
	meetingUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/meeting"
)

// Storage handles meeting recording uploads
type Storage struct {
	storageClient  *storage.MinIOClient
	meetingService meetingUsecase.Service
	logger         *zap.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(storageClient *storage.MinIOClient, meetingService meetingUsecase.Service, logger *zap.Logger) *Storage {
	return &Storage{
		storageClient:  storageClient,
		meetingService: meetingService,
		logger:         logger,
	}
}

// UploadRecording stores a meeting recording and links it to the meeting
// @Summary      Upload recording
// @Description  Stores the audio file and links its URL to the meeting
// @Tags         Meetings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Meeting ID"
// @Param        file  formData  file    true  "Audio file"
// @Success      200   {object}  entities.Meeting
// @Router       /meetings/{id}/recording [post]
func (h *Storage) UploadRecording(c echo.Context) error {
	ownerID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing file field"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("open upload", err))
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s/%s/%d%s",
		ownerID.String(),
		meetingID.String(),
		time.Now().Unix(),
		filepath.Ext(fileHeader.Filename),
	)

	ctx := c.Request().Context()
	if err := h.storageClient.UploadRecording(ctx, objectName, src, fileHeader.Size, contentType); err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("upload recording", err))
	}

	url, err := h.storageClient.GetFileURL(ctx, objectName, 7*24*time.Hour)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("presign recording", err))
	}

	meeting, err := h.meetingService.AttachRecording(ctx, ownerID, meetingID, url)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	h.logger.Info("recording uploaded",
		zap.String("meeting_id", meetingID.String()),
		zap.String("object", objectName),
		zap.Int64("size", fileHeader.Size),
	)

	return HandleSuccess(h.logger, c, meeting)
}
