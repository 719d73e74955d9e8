package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisJobStatus represents the status of an AI processing job
type AnalysisJobStatus string

const (
	AnalysisJobStatusPending    AnalysisJobStatus = "pending"    // Waiting to be picked up
	AnalysisJobStatusSubmitted  AnalysisJobStatus = "submitted"  // Sent to the transcription provider
	AnalysisJobStatusProcessing AnalysisJobStatus = "processing" // Summary generation in flight
	AnalysisJobStatusCompleted  AnalysisJobStatus = "completed"  // All processing done
	AnalysisJobStatusFailed     AnalysisJobStatus = "failed"     // Processing failed
	AnalysisJobStatusCancelled  AnalysisJobStatus = "cancelled"  // Job was cancelled
)

// AnalysisJobType represents the type of AI job
type AnalysisJobType string

const (
	AnalysisJobTypeTranscription AnalysisJobType = "transcription" // Speech to text
	AnalysisJobTypeSummary       AnalysisJobType = "summary"       // LLM summary
)

// AnalysisJob represents an AI processing job for a meeting
type AnalysisJob struct {
	ID            uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID     uuid.UUID         `json:"meeting_id" gorm:"type:uuid;not null;index"`
	OwnerID       uuid.UUID         `json:"owner_id" gorm:"type:uuid;not null;index"`
	JobType       AnalysisJobType   `json:"job_type" gorm:"type:varchar(50);not null;index"`
	Status        AnalysisJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	ExternalJobID *string           `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"` // transcription provider id

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	Metadata AnalysisJobMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AnalysisJobMetadata stores additional metadata for AI jobs
type AnalysisJobMetadata struct {
	DurationSeconds  int                    `json:"duration_seconds,omitempty"`
	Language         string                 `json:"language,omitempty"`
	ProcessingTimeMs int64                  `json:"processing_time_ms,omitempty"`
	ErrorDetails     map[string]interface{} `json:"error_details,omitempty"`
}

// Scan implements sql.Scanner interface for GORM
func (m *AnalysisJobMetadata) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &m)
}

// Value implements driver.Valuer interface for GORM
func (m AnalysisJobMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// NewAnalysisJob creates a new pending job
func NewAnalysisJob(meetingID, ownerID uuid.UUID, jobType AnalysisJobType) *AnalysisJob {
	now := time.Now()
	return &AnalysisJob{
		ID:         uuid.New(),
		MeetingID:  meetingID,
		OwnerID:    ownerID,
		JobType:    jobType,
		Status:     AnalysisJobStatusPending,
		RetryCount: 0,
		MaxRetries: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsRetryable checks if a failed job still has retry budget
func (j *AnalysisJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries && j.Status == AnalysisJobStatusFailed
}

// MarkAsFailed marks job as failed with error message
func (j *AnalysisJob) MarkAsFailed(errMsg string) {
	j.Status = AnalysisJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// MarkForRetry re-queues a failed job, spending one retry. Returns false
// when the budget is exhausted and the failure is final.
func (j *AnalysisJob) MarkForRetry() bool {
	if !j.IsRetryable() {
		return false
	}
	j.RetryCount++
	j.Status = AnalysisJobStatusPending
	j.UpdatedAt = time.Now()
	return true
}

// IsFinished reports whether the job reached a terminal status
func (j *AnalysisJob) IsFinished() bool {
	switch j.Status {
	case AnalysisJobStatusCompleted, AnalysisJobStatusFailed, AnalysisJobStatusCancelled:
		return true
	}
	return false
}

// TableName specifies the table name for GORM
func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}
