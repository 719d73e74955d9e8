package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/errors"
	httpMiddleware "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/http/middleware"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Info    string      `json:"info,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleCreated is HandleSuccess with a 201 status
func HandleCreated(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "created",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusCreated, resp)
}

// HandleError centralizes error handling and logging. Usecase sentinel
// errors are translated to AppError before rendering.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	mapped := toAppError(err)

	var appErr errors.AppError
	if stdErrors.As(mapped, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// toAppError maps usecase sentinels onto the HTTP error vocabulary
func toAppError(err error) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	// Auth
	case stdErrors.Is(err, usecaseErrors.ErrInvalidCredentials):
		return errors.ErrInvalidCredentials()
	case stdErrors.Is(err, usecaseErrors.ErrEmailAlreadyUsed):
		return errors.ErrUserAlreadyExists("")
	case stdErrors.Is(err, usecaseErrors.ErrUserNotFound):
		return errors.ErrUserNotFound()
	case stdErrors.Is(err, usecaseErrors.ErrUserNotActive):
		return errors.ErrForbidden("user account is disabled")
	case stdErrors.Is(err, usecaseErrors.ErrTokenInvalid),
		stdErrors.Is(err, usecaseErrors.ErrSessionNotFound):
		return errors.ErrInvalidToken()
	case stdErrors.Is(err, usecaseErrors.ErrTokenExpired),
		stdErrors.Is(err, usecaseErrors.ErrSessionExpired):
		return errors.ErrTokenExpired()

	// CRM
	case stdErrors.Is(err, usecaseErrors.ErrClientNotFound):
		return errors.ErrClientNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrTaskNotFound):
		return errors.ErrTaskNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrInvalidTransition):
		return errors.ErrTaskInvalidTransition("", "")
	case stdErrors.Is(err, usecaseErrors.ErrInvalidKanbanOrder):
		return errors.ErrInvalidArgument("kanban ordering does not match the column")
	case stdErrors.Is(err, usecaseErrors.ErrTranscriptEmpty):
		return errors.ErrInvalidArgument("meeting has no usable transcript")
	case stdErrors.Is(err, usecaseErrors.ErrSummaryInProgress):
		return errors.ErrAlreadyExists("analysis job")

	// Billing
	case stdErrors.Is(err, usecaseErrors.ErrPlanNotFound):
		return errors.ErrPlanNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrPlanInactive):
		return errors.ErrInvalidArgument("plan is not available")
	case stdErrors.Is(err, usecaseErrors.ErrSubscriptionNotFound):
		return errors.ErrSubscriptionNotFound()
	case stdErrors.Is(err, usecaseErrors.ErrAlreadySubscribed):
		return errors.ErrAlreadyExists("subscription")
	case stdErrors.Is(err, usecaseErrors.ErrCreditsExhausted):
		return errors.ErrCreditsExhausted()

	// Webhooks
	case stdErrors.Is(err, usecaseErrors.ErrWebhookNotFound):
		return errors.ErrWebhookNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrEventNotFound):
		return errors.ErrWebhookEventNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrEventNotRetryable):
		return errors.ErrWebhookEventNotRetryable("", "")
	case stdErrors.Is(err, usecaseErrors.ErrInvalidEventType):
		return errors.ErrInvalidArgument("unknown event type")

	// AI pipeline
	case stdErrors.Is(err, usecaseErrors.ErrJobNotFound):
		return errors.ErrNotFound("analysis job")
	case stdErrors.Is(err, usecaseErrors.ErrJobNotClaimable):
		return errors.ErrInvalidArgument("analysis job is already running or finished")
	case stdErrors.Is(err, usecaseErrors.ErrSummaryParseFailed):
		return errors.ErrAISummaryFailed(err)

	// Generic
	case stdErrors.Is(err, usecaseErrors.ErrUnauthorized):
		return errors.ErrUnauthenticated()
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrForbidden):
		return errors.ErrForbidden("access denied")
	case stdErrors.Is(err, usecaseErrors.ErrNotFound):
		return errors.ErrNotFound("resource")
	}

	return err
}

func errUnauthenticated() error {
	return errors.ErrUnauthenticated()
}

// bindAndValidate decodes the request into v and runs struct validation
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(v); err != nil {
		return errors.ErrInvalidArgument(err.Error())
	}
	return nil
}

// currentUserID reads the authenticated user id set by the auth middleware
func currentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(httpMiddleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return id, nil
}

// parseUUIDParam parses a path parameter as UUID
func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("invalid " + name)
	}
	return id, nil
}

// parseOptionalUUID parses a nullable uuid string from a request body
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, errors.ErrInvalidArgument("invalid uuid: " + *s)
	}
	return &id, nil
}

// pageToLimitOffset converts page-based pagination to limit/offset
func pageToLimitOffset(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
