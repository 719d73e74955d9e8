package meeting

import "time"

// CreateMeetingRequest represents the request to create a meeting
type CreateMeetingRequest struct {
	ClientID        string     `json:"client_id" validate:"required,uuid"`
	TypeCode        string     `json:"type_code" validate:"required,max=50"`
	Title           string     `json:"title" validate:"required,min=1,max=255"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

// UpdateMeetingRequest represents the request to update a meeting
type UpdateMeetingRequest struct {
	TypeCode        string     `json:"type_code" validate:"required,max=50"`
	Title           string     `json:"title" validate:"required,min=1,max=255"`
	Status          *string    `json:"status,omitempty" validate:"omitempty,oneof=agendada realizada cancelada"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

// AttachTranscriptRequest carries a manually provided transcript
type AttachTranscriptRequest struct {
	Transcript string `json:"transcript" validate:"required,min=1"`
}

// ListMeetingsRequest represents the query parameters for listing meetings
type ListMeetingsRequest struct {
	ClientID  *string `query:"client_id" validate:"omitempty,uuid"`
	TypeCode  *string `query:"type_code"`
	Status    *string `query:"status" validate:"omitempty,oneof=agendada realizada cancelada"`
	Search    string  `query:"search"`
	Page      int     `query:"page" validate:"omitempty,min=1"`
	PageSize  int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string  `query:"sort_by" validate:"omitempty,oneof=created_at scheduled_at title"`
	SortOrder string  `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}
