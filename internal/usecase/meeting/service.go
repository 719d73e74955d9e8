package meeting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
)

// Service defines meeting operations
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input Input) (*entities.Meeting, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input Input) (*entities.Meeting, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error)

	// AttachTranscript stores a manually provided transcript
	AttachTranscript(ctx context.Context, ownerID, id uuid.UUID, transcript string) (*entities.Meeting, error)

	// AttachRecording links an uploaded recording to the meeting
	AttachRecording(ctx context.Context, ownerID, id uuid.UUID, recordingURL string) (*entities.Meeting, error)
}

// Input carries the writable fields of a meeting
type Input struct {
	ClientID        *uuid.UUID
	TypeCode        string
	Title           string
	Status          *entities.MeetingStatus
	ScheduledAt     *time.Time
	DurationMinutes *int
}

type service struct {
	meetingRepo repositories.MeetingRepository
	clientRepo  repositories.ClientRepository
	webhooks    webhook.Service
	logger      *zap.Logger
}

// NewService constructs the meeting service
func NewService(
	meetingRepo repositories.MeetingRepository,
	clientRepo repositories.ClientRepository,
	webhooks webhook.Service,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo: meetingRepo,
		clientRepo:  clientRepo,
		webhooks:    webhooks,
		logger:      logger,
	}
}

// Create schedules a meeting with one of the consultant's clients
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input Input) (*entities.Meeting, error) {
	if input.Title == "" || input.TypeCode == "" || input.ClientID == nil {
		return nil, usecaseErrors.ErrInvalidInput
	}

	// The client must belong to the same consultant
	client, err := s.clientRepo.FindByID(ctx, ownerID, *input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, usecaseErrors.ErrClientNotFound
	}

	meeting := entities.NewMeeting(ownerID, *input.ClientID, input.TypeCode, input.Title)
	applyInput(meeting, input)

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventMeetingCreated, meeting, nil)
	return meeting, nil
}

// Get retrieves one owned meeting
func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, usecaseErrors.ErrMeetingNotFound
	}
	return meeting, nil
}

// Update modifies an owned meeting
func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, input Input) (*entities.Meeting, error) {
	meeting, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, usecaseErrors.ErrInvalidMeetingStatus
	}

	previous := *meeting

	if input.Title != "" {
		meeting.Title = input.Title
	}
	if input.TypeCode != "" {
		meeting.TypeCode = input.TypeCode
	}
	applyInput(meeting, input)
	meeting.UpdatedAt = time.Now()

	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventMeetingUpdated, meeting, &previous)
	return meeting, nil
}

// Delete removes an owned meeting
func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	meeting, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.meetingRepo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	s.emit(ctx, ownerID, entities.EventMeetingDeleted, meeting, nil)
	return nil
}

// List retrieves the consultant's meetings
func (s *service) List(ctx context.Context, ownerID uuid.UUID, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	return s.meetingRepo.List(ctx, ownerID, filters)
}

// AttachTranscript stores a manually provided transcript and marks the
// meeting as held.
func (s *service) AttachTranscript(ctx context.Context, ownerID, id uuid.UUID, transcript string) (*entities.Meeting, error) {
	if transcript == "" {
		return nil, usecaseErrors.ErrTranscriptEmpty
	}

	meeting, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.meetingRepo.SetTranscript(ctx, id, transcript); err != nil {
		return nil, fmt.Errorf("failed to store transcript: %w", err)
	}

	meeting.Transcript = &transcript
	meeting.MarkRealizada()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting status: %w", err)
	}

	return meeting, nil
}

// AttachRecording links an uploaded recording to the meeting
func (s *service) AttachRecording(ctx context.Context, ownerID, id uuid.UUID, recordingURL string) (*entities.Meeting, error) {
	if recordingURL == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	meeting, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	meeting.RecordingURL = &recordingURL
	meeting.MarkRealizada()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to attach recording: %w", err)
	}

	return meeting, nil
}

// emit publishes a webhook event; delivery problems never fail the operation
func (s *service) emit(ctx context.Context, ownerID uuid.UUID, eventType string, data, previous interface{}) {
	if s.webhooks == nil {
		return
	}
	if err := s.webhooks.Publish(ctx, ownerID, eventType, data, previous); err != nil {
		s.logger.Warn("failed to publish webhook event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func applyInput(meeting *entities.Meeting, input Input) {
	if input.Status != nil {
		meeting.Status = *input.Status
	}
	if input.ScheduledAt != nil {
		meeting.ScheduledAt = input.ScheduledAt
	}
	if input.DurationMinutes != nil {
		meeting.DurationMinutes = input.DurationMinutes
	}
}
