package billing

// SubscribeRequest represents the request to open a subscription
type SubscribeRequest struct {
	PlanCode string `json:"plan_code" validate:"required,oneof=essencial profissional premium"`
}
