package webhook

// CreateConfigRequest represents the request to register an endpoint
type CreateConfigRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=255"`
	URL         string            `json:"url" validate:"required,url"`
	HTTPMethod  string            `json:"http_method,omitempty" validate:"omitempty,oneof=POST PUT PATCH"`
	Secret      string            `json:"secret" validate:"required,min=16"`
	Headers     map[string]string `json:"headers,omitempty"`
	EventTypes  []string          `json:"event_types,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
	MaxAttempts *int              `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=20"`
}

// UpdateConfigRequest represents the request to update an endpoint.
// Secret is optional; when empty the stored signing key is kept.
type UpdateConfigRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=255"`
	URL         string            `json:"url" validate:"required,url"`
	HTTPMethod  string            `json:"http_method,omitempty" validate:"omitempty,oneof=POST PUT PATCH"`
	Secret      string            `json:"secret,omitempty" validate:"omitempty,min=16"`
	Headers     map[string]string `json:"headers,omitempty"`
	EventTypes  []string          `json:"event_types,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
	MaxAttempts *int              `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=20"`
}

// ListQueueRequest represents the query parameters for queue introspection
type ListQueueRequest struct {
	EventType *string `query:"event_type"`
	Status    *string `query:"status" validate:"omitempty,oneof=pending processing completed failed"`
	Page      int     `query:"page" validate:"omitempty,min=1"`
	PageSize  int     `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListLogsRequest represents the query parameters for delivery log pages
type ListLogsRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}
