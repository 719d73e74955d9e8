package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	billingDTO "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/dto/billing"
	billingUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/billing"
)

// Billing handles plan and subscription endpoints
type Billing struct {
	billingService billingUsecase.Service
	logger         *zap.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService billingUsecase.Service, logger *zap.Logger) *Billing {
	return &Billing{
		billingService: billingService,
		logger:         logger,
	}
}

// ListPlans retrieves the active plans
// @Summary      List plans
// @Tags         Billing
// @Produce      json
// @Success      200  {array}  entities.Plan
// @Router       /plans [get]
func (h *Billing) ListPlans(c echo.Context) error {
	plans, err := h.billingService.ListPlans(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, plans)
}

// Subscribe opens a subscription to a plan
// @Summary      Subscribe to a plan
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      billing.SubscribeRequest  true  "Plan code"
// @Success      201      {object}  entities.Subscription
// @Failure      409      {object}  map[string]interface{}
// @Router       /subscription [post]
func (h *Billing) Subscribe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req billingDTO.SubscribeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	sub, err := h.billingService.Subscribe(c.Request().Context(), userID, req.PlanCode)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, sub)
}

// GetSubscription retrieves the active subscription with credit balance
// @Summary      Current subscription
// @Tags         Billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entities.Subscription
// @Failure      404  {object}  map[string]interface{}
// @Router       /subscription [get]
func (h *Billing) GetSubscription(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	sub, err := h.billingService.GetSubscription(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, sub)
}

// Cancel cancels the active subscription
// @Summary      Cancel subscription
// @Tags         Billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entities.Subscription
// @Router       /subscription [delete]
func (h *Billing) Cancel(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	sub, err := h.billingService.Cancel(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, sub)
}
