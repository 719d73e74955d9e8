package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/auth"
)

// Context keys set by EchoAuth for downstream handlers
const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
)

// EchoAuth validates the access token and loads the authenticated user
// into the echo context. Tokens are read from the Authorization header
// or the access_token cookie.
func EchoAuth(authService auth.Service, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return renderAppError(c, appErrors.ErrUnauthenticated())
			}

			user, err := authService.ValidateSession(c.Request().Context(), token)
			if err != nil {
				if logger != nil {
					logger.Debug("auth middleware rejected token",
						zap.String("path", c.Path()),
						zap.Error(err),
					)
				}
				return renderAppError(c, appErrors.ErrInvalidToken())
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyUserID, user.ID)

			return next(c)
		}
	}
}

// RequireRole guards a route group behind a user role. It must run
// after EchoAuth.
func RequireRole(role entities.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(ContextKeyUser).(*entities.User)
			if !ok {
				return renderAppError(c, appErrors.ErrUnauthenticated())
			}
			if user.Role != role {
				return renderAppError(c, appErrors.ErrForbidden("insufficient role"))
			}
			return next(c)
		}
	}
}

// renderAppError writes the standard error body for middleware rejections
func renderAppError(c echo.Context, appErr appErrors.AppError) error {
	body := map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.HTTPCode == 0 {
		appErr.HTTPCode = http.StatusInternalServerError
	}
	return c.JSON(appErr.HTTPCode, body)
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := c.Cookie("access_token")
	if err == nil && cookie != nil {
		return cookie.Value
	}

	return ""
}
