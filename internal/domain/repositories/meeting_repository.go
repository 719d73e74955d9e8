package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"gorm.io/datatypes"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves an owned meeting by its ID
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error)

	// Update updates an existing meeting
	Update(ctx context.Context, meeting *entities.Meeting) error

	// Delete removes a meeting
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// List retrieves meetings with filters and pagination
	List(ctx context.Context, ownerID uuid.UUID, filters MeetingFilters) ([]*entities.Meeting, int64, error)

	// SetTranscript stores a transcript on the meeting
	SetTranscript(ctx context.Context, meetingID uuid.UUID, transcript string) error

	// SetSummary stores the AI summary on the meeting
	SetSummary(ctx context.Context, meetingID uuid.UUID, summary datatypes.JSON) error
}

// MeetingFilters represents filter options for listing meetings
type MeetingFilters struct {
	ClientID  *uuid.UUID
	TypeCode  *string
	Status    *entities.MeetingStatus
	Search    string
	Limit     int
	Offset    int
	SortBy    string // "created_at", "scheduled_at", "title"
	SortOrder string // "asc", "desc"
}

// AnalysisJobRepository defines the interface for AI job data access
type AnalysisJobRepository interface {
	// Create creates a new analysis job
	Create(ctx context.Context, job *entities.AnalysisJob) error

	// FindByID retrieves a job by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisJob, error)

	// FindByExternalID retrieves a job by the transcription provider id
	FindByExternalID(ctx context.Context, externalID string) (*entities.AnalysisJob, error)

	// FindByMeetingID retrieves jobs for a meeting, newest first
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.AnalysisJob, error)

	// FindByStatus retrieves jobs in a given status, oldest first
	FindByStatus(ctx context.Context, status entities.AnalysisJobStatus, limit int) ([]*entities.AnalysisJob, error)

	// FindOverdueSubmitted retrieves submitted jobs not updated since cutoff
	FindOverdueSubmitted(ctx context.Context, cutoff time.Time, limit int) ([]*entities.AnalysisJob, error)

	// Touch refreshes updated_at so an in-flight job is not re-polled early
	Touch(ctx context.Context, id uuid.UUID) error

	// Claim atomically moves a job from one status to another; returns false
	// when another worker already took it.
	Claim(ctx context.Context, id uuid.UUID, from, to entities.AnalysisJobStatus) (bool, error)

	// Update updates an existing job
	Update(ctx context.Context, job *entities.AnalysisJob) error

	// MarkSubmitted stores the external id and flips status to submitted
	MarkSubmitted(ctx context.Context, id uuid.UUID, externalID string) error

	// MarkFailed records a failure message
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// UpdateStatus updates only the job status
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AnalysisJobStatus) error
}
