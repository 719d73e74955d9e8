package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entities.AnalysisJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*entities.AnalysisJob)}
}

func (r *fakeJobRepo) put(job *entities.AnalysisJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
}

func (r *fakeJobRepo) get(id uuid.UUID) *entities.AnalysisJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		cp := *job
		return &cp
	}
	return nil
}

func (r *fakeJobRepo) Create(ctx context.Context, job *entities.AnalysisJob) error {
	r.put(job)
	return nil
}

func (r *fakeJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisJob, error) {
	return r.get(id), nil
}

func (r *fakeJobRepo) FindByExternalID(ctx context.Context, externalID string) (*entities.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.ExternalJobID != nil && *job.ExternalJobID == externalID {
			cp := *job
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.AnalysisJob
	for _, job := range r.jobs {
		if job.MeetingID == meetingID {
			cp := *job
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindByStatus(ctx context.Context, status entities.AnalysisJobStatus, limit int) ([]*entities.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.AnalysisJob
	for _, job := range r.jobs {
		if job.Status == status {
			cp := *job
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindOverdueSubmitted(ctx context.Context, cutoff time.Time, limit int) ([]*entities.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.AnalysisJob
	for _, job := range r.jobs {
		if job.Status == entities.AnalysisJobStatusSubmitted && job.UpdatedAt.Before(cutoff) {
			cp := *job
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeJobRepo) Touch(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) Claim(ctx context.Context, id uuid.UUID, from, to entities.AnalysisJobStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	job.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *entities.AnalysisJob) error {
	r.put(job)
	return nil
}

func (r *fakeJobRepo) MarkSubmitted(ctx context.Context, id uuid.UUID, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		now := time.Now()
		job.Status = entities.AnalysisJobStatusSubmitted
		job.ExternalJobID = &externalID
		job.StartedAt = &now
		job.UpdatedAt = now
	}
	return nil
}

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = entities.AnalysisJobStatusFailed
		job.LastError = &errMsg
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AnalysisJobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
	return nil
}

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
}

func (r *fakeMeetingRepo) Create(ctx context.Context, meeting *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[meeting.ID] = meeting
	return nil
}

func (r *fakeMeetingRepo) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meeting, ok := r.meetings[id]
	if !ok || meeting.OwnerID != ownerID {
		return nil, nil
	}
	return meeting, nil
}

func (r *fakeMeetingRepo) Update(ctx context.Context, meeting *entities.Meeting) error {
	return r.Create(ctx, meeting)
}

func (r *fakeMeetingRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meetings, id)
	return nil
}

func (r *fakeMeetingRepo) List(ctx context.Context, ownerID uuid.UUID, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	return nil, 0, nil
}

func (r *fakeMeetingRepo) SetTranscript(ctx context.Context, meetingID uuid.UUID, transcript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if meeting, ok := r.meetings[meetingID]; ok {
		meeting.Transcript = &transcript
	}
	return nil
}

func (r *fakeMeetingRepo) SetSummary(ctx context.Context, meetingID uuid.UUID, summary datatypes.JSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if meeting, ok := r.meetings[meetingID]; ok {
		meeting.Summary = summary
	}
	return nil
}

// fakeTranscriber scripts provider behavior for submits and status reads
type fakeTranscriber struct {
	mu        sync.Mutex
	submitID  string
	submitErr error
	submits   int
	result    *pkgai.TranscriptResult
	getErr    error
}

func (t *fakeTranscriber) SubmitFromURL(ctx context.Context, audioURL string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.submits++
	if t.submitErr != nil {
		return "", t.submitErr
	}
	return t.submitID, nil
}

func (t *fakeTranscriber) GetTranscript(ctx context.Context, transcriptID string) (*pkgai.TranscriptResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.getErr != nil {
		return nil, t.getErr
	}
	return t.result, nil
}

func newTestAIService(jobs *fakeJobRepo, meetings *fakeMeetingRepo, transcriber *fakeTranscriber) *service {
	cfg := &config.Config{
		AI: config.AIWorkerConfig{
			Workers:          1,
			PollInterval:     10 * time.Millisecond,
			SubmittedTimeout: 10 * time.Minute,
		},
	}
	svc := NewService(jobs, meetings, nil, nil, nil, transcriber, nil, cfg, zap.NewNop())
	return svc.(*service)
}

func newSubmittedJob(jobs *fakeJobRepo, ownerID, meetingID uuid.UUID, externalID string, age time.Duration) *entities.AnalysisJob {
	job := entities.NewAnalysisJob(meetingID, ownerID, entities.AnalysisJobTypeTranscription)
	job.Status = entities.AnalysisJobStatusSubmitted
	if externalID != "" {
		job.ExternalJobID = &externalID
	}
	job.UpdatedAt = time.Now().Add(-age)
	jobs.put(job)
	return job
}

func TestProcessTranscriptionJob_SubmitsWithoutCompleting(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	transcriber := &fakeTranscriber{submitID: "tx_55"}
	svc := newTestAIService(jobs, meetings, transcriber)

	ownerID := uuid.New()
	recording := "https://cdn.example.com/reuniao.mp3"
	meeting := &entities.Meeting{ID: uuid.New(), OwnerID: ownerID, ClientID: uuid.New(), RecordingURL: &recording}
	meetings.Create(context.Background(), meeting)

	job := entities.NewAnalysisJob(meeting.ID, ownerID, entities.AnalysisJobTypeTranscription)
	jobs.put(job)

	svc.processTranscriptionJob(context.Background(), jobs.get(job.ID))

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusSubmitted {
		t.Fatalf("expected submitted, got %s", got.Status)
	}
	if got.ExternalJobID == nil || *got.ExternalJobID != "tx_55" {
		t.Fatalf("external id not stored: %v", got.ExternalJobID)
	}
	if transcriber.submits != 1 {
		t.Fatalf("expected one submit, got %d", transcriber.submits)
	}
	// The transcript only lands via webhook or sweep, never on submit
	if meeting.HasTranscript() {
		t.Fatal("submit must not attach a transcript")
	}
}

func TestProcessTranscriptionJob_RetriesBeforeFailing(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	transcriber := &fakeTranscriber{submitErr: errors.New("audio format not supported")}
	svc := newTestAIService(jobs, meetings, transcriber)

	ownerID := uuid.New()
	recording := "https://cdn.example.com/reuniao.mp3"
	meeting := &entities.Meeting{ID: uuid.New(), OwnerID: ownerID, ClientID: uuid.New(), RecordingURL: &recording}
	meetings.Create(context.Background(), meeting)

	job := entities.NewAnalysisJob(meeting.ID, ownerID, entities.AnalysisJobTypeTranscription)
	jobs.put(job)

	svc.processTranscriptionJob(context.Background(), jobs.get(job.ID))

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusPending {
		t.Fatalf("expected re-queued pending job, got %s", got.Status)
	}
	if got.RetryCount != 1 {
		t.Fatalf("expected retry count 1, got %d", got.RetryCount)
	}
	if got.LastError == nil || !strings.Contains(*got.LastError, "audio format") {
		t.Fatalf("last error not recorded: %v", got.LastError)
	}

	// Burn the remaining budget; the final failure sticks
	for i := 0; i < got.MaxRetries; i++ {
		svc.processTranscriptionJob(context.Background(), jobs.get(job.ID))
	}
	got = jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusFailed {
		t.Fatalf("expected failed after retries exhausted, got %s", got.Status)
	}
	if got.RetryCount != got.MaxRetries {
		t.Fatalf("expected retry count %d, got %d", got.MaxRetries, got.RetryCount)
	}
}

func TestSweepSubmitted_CompletesMissedWebhook(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	transcriber := &fakeTranscriber{
		result: &pkgai.TranscriptResult{ID: "tx_7", Status: "completed", Text: "ata da reunião de planejamento"},
	}
	svc := newTestAIService(jobs, meetings, transcriber)

	ownerID := uuid.New()
	meeting := &entities.Meeting{ID: uuid.New(), OwnerID: ownerID, ClientID: uuid.New()}
	meetings.Create(context.Background(), meeting)

	job := newSubmittedJob(jobs, ownerID, meeting.ID, "tx_7", time.Hour)

	svc.sweepSubmitted(context.Background())

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !meeting.HasTranscript() {
		t.Fatal("transcript not attached to meeting")
	}

	// The summary stage chains off the polled completion too
	all, _ := jobs.FindByMeetingID(context.Background(), meeting.ID)
	var summaryQueued bool
	for _, j := range all {
		if j.JobType == entities.AnalysisJobTypeSummary && j.Status == entities.AnalysisJobStatusPending {
			summaryQueued = true
		}
	}
	if !summaryQueued {
		t.Fatal("summary job not queued after polled completion")
	}
}

func TestSweepSubmitted_ProviderError(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	transcriber := &fakeTranscriber{
		result: &pkgai.TranscriptResult{ID: "tx_8", Status: "error", Error: "audio too short"},
	}
	svc := newTestAIService(jobs, meetings, transcriber)

	job := newSubmittedJob(jobs, uuid.New(), uuid.New(), "tx_8", time.Hour)

	svc.sweepSubmitted(context.Background())

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.LastError == nil || !strings.Contains(*got.LastError, "audio too short") {
		t.Fatalf("provider error not recorded: %v", got.LastError)
	}
}

func TestSweepSubmitted_StillProcessingExtendsDeadline(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	transcriber := &fakeTranscriber{
		result: &pkgai.TranscriptResult{ID: "tx_9", Status: "processing"},
	}
	svc := newTestAIService(jobs, meetings, transcriber)

	job := newSubmittedJob(jobs, uuid.New(), uuid.New(), "tx_9", time.Hour)

	svc.sweepSubmitted(context.Background())

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusSubmitted {
		t.Fatalf("expected job to stay submitted, got %s", got.Status)
	}
	// The refreshed timestamp keeps the next sweep from re-polling early
	overdue, _ := jobs.FindOverdueSubmitted(context.Background(), time.Now().Add(-svc.cfg.AI.SubmittedTimeout), 10)
	if len(overdue) != 0 {
		t.Fatalf("job still reported overdue after touch: %d", len(overdue))
	}
}

func TestSweepSubmitted_MissingExternalID(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	svc := newTestAIService(jobs, meetings, &fakeTranscriber{})

	job := newSubmittedJob(jobs, uuid.New(), uuid.New(), "", time.Hour)

	svc.sweepSubmitted(context.Background())

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
}

func TestHandleTranscriptionWebhook_Completes(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	transcriber := &fakeTranscriber{
		result: &pkgai.TranscriptResult{ID: "tx_10", Status: "completed", Text: "decisões da reunião"},
	}
	svc := newTestAIService(jobs, meetings, transcriber)

	ownerID := uuid.New()
	meeting := &entities.Meeting{ID: uuid.New(), OwnerID: ownerID, ClientID: uuid.New()}
	meetings.Create(context.Background(), meeting)

	job := newSubmittedJob(jobs, ownerID, meeting.ID, "tx_10", 0)

	payload, _ := json.Marshal(map[string]string{"transcript_id": "tx_10", "status": "completed"})
	if err := svc.HandleTranscriptionWebhook(context.Background(), payload, ""); err != nil {
		t.Fatalf("HandleTranscriptionWebhook: %v", err)
	}

	got := jobs.get(job.ID)
	if got.Status != entities.AnalysisJobStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !meeting.HasTranscript() {
		t.Fatal("transcript not attached to meeting")
	}
}

func TestCancelJob(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	svc := newTestAIService(jobs, meetings, &fakeTranscriber{})

	ownerID := uuid.New()
	job := entities.NewAnalysisJob(uuid.New(), ownerID, entities.AnalysisJobTypeSummary)
	jobs.put(job)

	cancelled, err := svc.CancelJob(context.Background(), ownerID, job.ID)
	if err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if cancelled.Status != entities.AnalysisJobStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if got := jobs.get(job.ID); got.Status != entities.AnalysisJobStatusCancelled {
		t.Fatalf("cancel not persisted, got %s", got.Status)
	}
}

func TestCancelJob_Rules(t *testing.T) {
	jobs := newFakeJobRepo()
	meetings := newFakeMeetingRepo()
	svc := newTestAIService(jobs, meetings, &fakeTranscriber{})

	ownerID := uuid.New()

	// A submitted job already ran against the provider
	submitted := newSubmittedJob(jobs, ownerID, uuid.New(), "tx_11", 0)
	if _, err := svc.CancelJob(context.Background(), ownerID, submitted.ID); !errors.Is(err, usecaseErrors.ErrJobNotClaimable) {
		t.Fatalf("expected ErrJobNotClaimable for submitted job, got %v", err)
	}

	// Another user's job reads as not found
	other := entities.NewAnalysisJob(uuid.New(), uuid.New(), entities.AnalysisJobTypeSummary)
	jobs.put(other)
	if _, err := svc.CancelJob(context.Background(), ownerID, other.ID); !errors.Is(err, usecaseErrors.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
