package client

// CreateClientRequest represents the request to create a client
type CreateClientRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=prospecto ativo inativo"`
	RiskScore   *int    `json:"risk_score,omitempty" validate:"omitempty,min=0,max=100"`
	RiskProfile *string `json:"risk_profile,omitempty" validate:"omitempty,max=50"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateClientRequest represents the request to update a client
type UpdateClientRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=prospecto ativo inativo"`
	RiskScore   *int    `json:"risk_score,omitempty" validate:"omitempty,min=0,max=100"`
	RiskProfile *string `json:"risk_profile,omitempty" validate:"omitempty,max=50"`
	Notes       *string `json:"notes,omitempty"`
}

// ListClientsRequest represents the query parameters for listing clients
type ListClientsRequest struct {
	Status       *string `query:"status" validate:"omitempty,oneof=prospecto ativo inativo"`
	Search       string  `query:"search"`
	RiskScoreMin *int    `query:"risk_score_min" validate:"omitempty,min=0,max=100"`
	RiskScoreMax *int    `query:"risk_score_max" validate:"omitempty,min=0,max=100"`
	Page         int     `query:"page" validate:"omitempty,min=1"`
	PageSize     int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy       string  `query:"sort_by" validate:"omitempty,oneof=created_at name risk_score"`
	SortOrder    string  `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}
