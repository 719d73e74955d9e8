package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
)

// analysisJobRepository implements the AnalysisJobRepository interface
type analysisJobRepository struct {
	db *gorm.DB
}

// NewAnalysisJobRepository creates a new analysis job repository
func NewAnalysisJobRepository(db *gorm.DB) repositories.AnalysisJobRepository {
	return &analysisJobRepository{db: db}
}

// Create creates a new analysis job
func (r *analysisJobRepository) Create(ctx context.Context, job *entities.AnalysisJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID retrieves a job by its ID
func (r *analysisJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// FindByExternalID retrieves a job by the transcription provider id
func (r *analysisJobRepository) FindByExternalID(ctx context.Context, externalID string) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	err := r.db.WithContext(ctx).
		Where("external_job_id = ?", externalID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// FindByMeetingID retrieves jobs for a meeting, newest first
func (r *analysisJobRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.AnalysisJob, error) {
	var jobs []*entities.AnalysisJob
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// FindByStatus retrieves jobs in a given status, oldest first
func (r *analysisJobRepository) FindByStatus(ctx context.Context, status entities.AnalysisJobStatus, limit int) ([]*entities.AnalysisJob, error) {
	var jobs []*entities.AnalysisJob
	query := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&jobs).Error
	return jobs, err
}

// FindOverdueSubmitted retrieves submitted jobs not updated since cutoff,
// oldest first. These are candidates for polling the provider directly.
func (r *analysisJobRepository) FindOverdueSubmitted(ctx context.Context, cutoff time.Time, limit int) ([]*entities.AnalysisJob, error) {
	var jobs []*entities.AnalysisJob
	query := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", entities.AnalysisJobStatusSubmitted, cutoff).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&jobs).Error
	return jobs, err
}

// Touch refreshes updated_at so an in-flight job is not re-polled early
func (r *analysisJobRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// Claim atomically moves a job from one status to another. Only one worker
// succeeds when several see the same job.
func (r *analysisJobRepository) Claim(ctx context.Context, id uuid.UUID, from, to entities.AnalysisJobStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update updates an existing job
func (r *analysisJobRepository) Update(ctx context.Context, job *entities.AnalysisJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// MarkSubmitted stores the external id and flips status to submitted
func (r *analysisJobRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, externalID string) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          entities.AnalysisJobStatusSubmitted,
			"external_job_id": externalID,
			"started_at":      time.Now(),
			"updated_at":      time.Now(),
		}).Error
}

// MarkFailed records a failure message
func (r *analysisJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.AnalysisJobStatusFailed,
			"last_error": errMsg,
			"updated_at": time.Now(),
		}).Error
}

// UpdateStatus updates only the job status
func (r *analysisJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AnalysisJobStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
