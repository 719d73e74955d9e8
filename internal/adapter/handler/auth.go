package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	authDTO "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/auth"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	httpMiddleware "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/http/middleware"
	authUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/auth"
	billingUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/billing"
)

// Auth handles authentication endpoints
type Auth struct {
	authService    authUsecase.Service
	billingService billingUsecase.Service
	defaultPlan    string
	logger         *zap.Logger
}

// NewAuthHandler creates a new auth handler. New accounts are subscribed to
// defaultPlan when it is non-empty.
func NewAuthHandler(authService authUsecase.Service, billingService billingUsecase.Service, defaultPlan string, logger *zap.Logger) *Auth {
	return &Auth{
		authService:    authService,
		billingService: billingService,
		defaultPlan:    defaultPlan,
		logger:         logger,
	}
}

// Register creates a new account
// @Summary      Register
// @Description  Creates a consultant account and opens a session
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.RegisterRequest  true  "Account data"
// @Success      201      {object}  auth.TokenResponse
// @Failure      409      {object}  map[string]interface{}
// @Router       /auth/register [post]
func (h *Auth) Register(c echo.Context) error {
	var req authDTO.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	resp, err := h.authService.Register(c.Request().Context(), authUsecase.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// New accounts start on the default plan; a missing or inactive plan
	// must not fail the registration itself.
	if h.defaultPlan != "" && h.billingService != nil && resp.User != nil {
		if _, err := h.billingService.Subscribe(c.Request().Context(), resp.User.ID, h.defaultPlan); err != nil {
			h.logger.Warn("failed to open default subscription",
				zap.String("user_id", resp.User.ID.String()),
				zap.String("plan", h.defaultPlan),
				zap.Error(err),
			)
		}
	}

	return HandleCreated(h.logger, c, toTokenResponse(resp))
}

// Login authenticates with email and password
// @Summary      Login
// @Description  Authenticates a consultant and opens a session
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.LoginRequest  true  "Credentials"
// @Success      200      {object}  auth.TokenResponse
// @Failure      401      {object}  map[string]interface{}
// @Router       /auth/login [post]
func (h *Auth) Login(c echo.Context) error {
	var req authDTO.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	resp, err := h.authService.Login(c.Request().Context(), authUsecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, toTokenResponse(resp))
}

// RefreshToken rotates the session tokens
// @Summary      Refresh token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.RefreshTokenRequest  true  "Refresh token"
// @Success      200      {object}  auth.TokenResponse
// @Failure      401      {object}  map[string]interface{}
// @Router       /auth/refresh [post]
func (h *Auth) RefreshToken(c echo.Context) error {
	var req authDTO.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	resp, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, toTokenResponse(resp))
}

// Logout revokes the session of the given refresh token
// @Summary      Logout
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.LogoutRequest  true  "Refresh token"
// @Success      200      {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (h *Auth) Logout(c echo.Context) error {
	var req authDTO.LogoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// LogoutAll revokes every session of the authenticated user
// @Summary      Logout everywhere
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout-all [post]
func (h *Auth) LogoutAll(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.authService.LogoutAll(c.Request().Context(), userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// Me returns the authenticated user profile
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entities.PublicUser
// @Failure      401  {object}  map[string]interface{}
// @Router       /auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	user, ok := c.Get(httpMiddleware.ContextKeyUser).(*entities.User)
	if !ok {
		return HandleError(h.logger, c, errUnauthenticated())
	}
	return HandleSuccess(h.logger, c, user.ToPublic())
}

// CleanupSessions purges expired sessions on demand
// @Summary      Cleanup expired sessions
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/sessions/cleanup [post]
func (h *Auth) CleanupSessions(c echo.Context) error {
	removed, err := h.authService.CleanupExpiredSessions(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"removed": removed,
	})
}

func toTokenResponse(resp *authUsecase.AuthResponse) *authDTO.TokenResponse {
	out := &authDTO.TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    resp.ExpiresIn,
	}
	if resp.User != nil {
		out.User = resp.User.ToPublic()
	}
	return out
}
