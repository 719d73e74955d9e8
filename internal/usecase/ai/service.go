package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/observability"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/billing"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/jobcontext"
)

const systemPrompt = `Você é um analista de uma consultoria de planejamento financeiro.
Analise a transcrição da reunião e responda APENAS com um JSON válido no formato:
{
  "executive_summary": "resumo executivo em português",
  "key_points": [{"text": "...", "importance": "low|medium|high"}],
  "decisions": [{"decision_text": "...", "owner": "...", "impact": "low|medium|high"}],
  "risk_signals": [{"description": "...", "severity": "low|medium|high", "category": "..."}],
  "next_steps": [{"description": "...", "owner": "...", "due_date_mentioned": "...", "priority": "baixa|media|alta|urgente"}],
  "extracted_tasks": [{"title": "...", "description": "...", "priority": "baixa|media|alta|urgente"}],
  "topics": ["..."],
  "open_questions": ["..."],
  "client_sentiment": 0.0
}`

// Service orchestrates the meeting analysis pipeline: transcription,
// summary generation and task extraction.
type Service interface {
	// RequestSummary consumes a credit and queues analysis for a meeting
	RequestSummary(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.AnalysisJob, error)

	// HandleTranscriptionWebhook processes the provider's completion callback
	HandleTranscriptionWebhook(ctx context.Context, payload []byte, signature string) error

	// GetJob retrieves an owned analysis job
	GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*entities.AnalysisJob, error)

	// ListJobs retrieves the jobs of a meeting
	ListJobs(ctx context.Context, ownerID, meetingID uuid.UUID) ([]*entities.AnalysisJob, error)

	// CancelJob cancels a job that has not been picked up yet
	CancelJob(ctx context.Context, ownerID, jobID uuid.UUID) (*entities.AnalysisJob, error)

	// Worker pool lifecycle
	StartWorkerPool(ctx context.Context) error
	StopWorkerPool()
}

type service struct {
	jobRepo     repositories.AnalysisJobRepository
	meetingRepo repositories.MeetingRepository
	taskRepo    repositories.TaskRepository
	billing     billing.Service
	webhooks    webhook.Service
	transcriber pkgai.Transcriber
	llm         *pkgai.LLMClient
	parser      *Parser
	cfg         *config.Config
	logger      *zap.Logger

	runMu    sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewService constructs the analysis service
func NewService(
	jobRepo repositories.AnalysisJobRepository,
	meetingRepo repositories.MeetingRepository,
	taskRepo repositories.TaskRepository,
	billingSvc billing.Service,
	webhooks webhook.Service,
	transcriber pkgai.Transcriber,
	llm *pkgai.LLMClient,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		jobRepo:     jobRepo,
		meetingRepo: meetingRepo,
		taskRepo:    taskRepo,
		billing:     billingSvc,
		webhooks:    webhooks,
		transcriber: transcriber,
		llm:         llm,
		parser:      NewParser(),
		cfg:         cfg,
		logger:      logger,
	}
}

// RequestSummary validates the meeting, spends one credit and queues the
// right pipeline stage: transcription when only a recording exists, summary
// when a transcript is already attached.
func (s *service) RequestSummary(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.AnalysisJob, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, ownerID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, usecaseErrors.ErrMeetingNotFound
	}

	jobType := entities.AnalysisJobTypeSummary
	if !meeting.HasTranscript() {
		if meeting.RecordingURL == nil || *meeting.RecordingURL == "" {
			return nil, usecaseErrors.ErrTranscriptEmpty
		}
		jobType = entities.AnalysisJobTypeTranscription
	} else if err := s.parser.ValidateTranscript(*meeting.Transcript); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrTranscriptEmpty, err)
	}

	// One in-flight job per meeting
	jobs, err := s.jobRepo.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing jobs: %w", err)
	}
	for _, j := range jobs {
		switch j.Status {
		case entities.AnalysisJobStatusPending, entities.AnalysisJobStatusSubmitted, entities.AnalysisJobStatusProcessing:
			return nil, usecaseErrors.ErrSummaryInProgress
		}
	}

	if err := s.billing.ConsumeCredit(ctx, ownerID); err != nil {
		return nil, err
	}

	job := entities.NewAnalysisJob(meetingID, ownerID, jobType)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create analysis job: %w", err)
	}

	s.logger.Info("analysis job queued",
		zap.String("job_id", job.ID.String()),
		zap.String("meeting_id", meetingID.String()),
		zap.String("job_type", string(jobType)),
	)
	return job, nil
}

// GetJob retrieves an owned analysis job
func (s *service) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*entities.AnalysisJob, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.OwnerID != ownerID {
		return nil, usecaseErrors.ErrJobNotFound
	}
	return job, nil
}

// ListJobs retrieves the jobs of an owned meeting
func (s *service) ListJobs(ctx context.Context, ownerID, meetingID uuid.UUID) ([]*entities.AnalysisJob, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, ownerID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, usecaseErrors.ErrMeetingNotFound
	}
	return s.jobRepo.FindByMeetingID(ctx, meetingID)
}

// CancelJob cancels an owned job while it is still pending. Jobs already
// submitted or processing run to completion; the claim keeps the cancel from
// racing a worker pickup.
func (s *service) CancelJob(ctx context.Context, ownerID, jobID uuid.UUID) (*entities.AnalysisJob, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.OwnerID != ownerID {
		return nil, usecaseErrors.ErrJobNotFound
	}
	if job.IsFinished() {
		return nil, usecaseErrors.ErrJobNotClaimable
	}

	claimed, err := s.jobRepo.Claim(ctx, job.ID, entities.AnalysisJobStatusPending, entities.AnalysisJobStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel job: %w", err)
	}
	if !claimed {
		return nil, usecaseErrors.ErrJobNotClaimable
	}

	job.Status = entities.AnalysisJobStatusCancelled
	s.logger.Info("analysis job cancelled",
		zap.String("job_id", job.ID.String()),
		zap.String("meeting_id", job.MeetingID.String()),
	)
	return job, nil
}

// transcriptionCallback is the payload the provider posts on completion
type transcriptionCallback struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

// HandleTranscriptionWebhook verifies the callback signature, stores the
// transcript and queues the summary stage.
func (s *service) HandleTranscriptionWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.Assembly.WebhookSecret != "" {
		if !pkgai.VerifyHMAC(s.cfg.Assembly.WebhookSecret, payload, signature) {
			return usecaseErrors.ErrUnauthorized
		}
	}

	var cb transcriptionCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return fmt.Errorf("invalid webhook payload: %w", err)
	}
	if cb.TranscriptID == "" {
		return usecaseErrors.ErrInvalidInput
	}

	job, err := s.jobRepo.FindByExternalID(ctx, cb.TranscriptID)
	if err != nil {
		return fmt.Errorf("failed to find job by external id: %w", err)
	}
	if job == nil {
		return usecaseErrors.ErrJobNotFound
	}

	if cb.Status == "error" {
		observability.AnalysisJobsTotal.WithLabelValues(string(job.JobType), "failure").Inc()
		return s.jobRepo.MarkFailed(ctx, job.ID, "transcription provider reported error")
	}

	// Only one webhook/poller wins the completion
	claimed, err := s.jobRepo.Claim(ctx, job.ID, entities.AnalysisJobStatusSubmitted, entities.AnalysisJobStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if !claimed {
		return nil
	}

	return s.completeTranscription(ctx, job, cb.TranscriptID)
}

// completeTranscription fetches the transcript text, attaches it to the
// meeting and queues the summary job.
func (s *service) completeTranscription(ctx context.Context, job *entities.AnalysisJob, transcriptID string) error {
	result, err := s.transcriber.GetTranscript(ctx, transcriptID)
	if err != nil {
		s.jobRepo.MarkFailed(ctx, job.ID, fmt.Sprintf("failed to fetch transcript: %v", err))
		return err
	}
	if result.Text == "" {
		s.jobRepo.MarkFailed(ctx, job.ID, "transcription returned no text")
		return usecaseErrors.ErrTranscriptionEmpty
	}

	if err := s.meetingRepo.SetTranscript(ctx, job.MeetingID, result.Text); err != nil {
		s.jobRepo.MarkFailed(ctx, job.ID, fmt.Sprintf("failed to store transcript: %v", err))
		return err
	}

	if err := s.jobRepo.UpdateStatus(ctx, job.ID, entities.AnalysisJobStatusCompleted); err != nil {
		return err
	}
	observability.AnalysisJobsTotal.WithLabelValues(string(entities.AnalysisJobTypeTranscription), "success").Inc()

	// Chain the summary stage; the credit was already spent
	summaryJob := entities.NewAnalysisJob(job.MeetingID, job.OwnerID, entities.AnalysisJobTypeSummary)
	if err := s.jobRepo.Create(ctx, summaryJob); err != nil {
		return fmt.Errorf("failed to queue summary job: %w", err)
	}

	s.logger.Info("transcript stored, summary queued",
		zap.String("meeting_id", job.MeetingID.String()),
		zap.String("summary_job_id", summaryJob.ID.String()),
	)
	return nil
}

// StartWorkerPool launches the polling workers
func (s *service) StartWorkerPool(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running {
		return fmt.Errorf("worker pool already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})

	for i := 0; i < s.cfg.AI.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.submittedSweeper(ctx)

	s.logger.Info("analysis worker pool started", zap.Int("workers", s.cfg.AI.Workers))
	return nil
}

// StopWorkerPool signals the workers and waits for in-flight jobs
func (s *service) StopWorkerPool() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.running {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	s.running = false

	s.logger.Info("analysis worker pool stopped")
}

func (s *service) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.AI.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.drainPending(ctx, workerID)
		}
	}
}

func (s *service) drainPending(parentCtx context.Context, workerID int) {
	jobs, err := s.jobRepo.FindByStatus(parentCtx, entities.AnalysisJobStatusPending, 5)
	if err != nil {
		s.logger.Error("failed to poll pending analysis jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		select {
		case <-s.stopChan:
			return
		default:
		}

		ctx, cancel := jobcontext.Begin(parentCtx, job.ID, string(job.JobType), workerID)
		s.processJob(ctx, job)
		cancel()
	}
}

// submittedSweeper polls the provider for jobs stuck in submitted. The
// completion webhook can be lost, or never configured at all, so overdue
// submitted jobs are resolved by asking the provider directly.
func (s *service) submittedSweeper(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.AI.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepSubmitted(ctx)
		}
	}
}

func (s *service) sweepSubmitted(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.AI.SubmittedTimeout)
	jobs, err := s.jobRepo.FindOverdueSubmitted(ctx, cutoff, 10)
	if err != nil {
		s.logger.Error("failed to poll overdue submitted jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		select {
		case <-s.stopChan:
			return
		default:
		}
		s.resolveSubmittedJob(ctx, job)
	}
}

// resolveSubmittedJob settles one overdue submitted job against the provider
func (s *service) resolveSubmittedJob(ctx context.Context, job *entities.AnalysisJob) {
	if job.ExternalJobID == nil || *job.ExternalJobID == "" {
		s.jobRepo.MarkFailed(ctx, job.ID, "submitted job has no external transcript id")
		return
	}

	result, err := s.transcriber.GetTranscript(ctx, *job.ExternalJobID)
	if err != nil {
		s.logger.Warn("failed to poll transcript status",
			zap.String("job_id", job.ID.String()),
			zap.String("external_id", *job.ExternalJobID),
			zap.Error(err),
		)
		return
	}

	switch result.Status {
	case "completed":
		// The webhook may still arrive; only one side wins the claim
		claimed, err := s.jobRepo.Claim(ctx, job.ID, entities.AnalysisJobStatusSubmitted, entities.AnalysisJobStatusProcessing)
		if err != nil || !claimed {
			return
		}
		s.logger.Info("overdue transcription finished, completing without webhook",
			zap.String("job_id", job.ID.String()),
			zap.String("external_id", *job.ExternalJobID),
		)
		if err := s.completeTranscription(ctx, job, *job.ExternalJobID); err != nil {
			s.logger.Error("failed to complete polled transcription",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	case "error":
		observability.AnalysisJobsTotal.WithLabelValues(string(job.JobType), "failure").Inc()
		msg := "transcription provider reported error"
		if result.Error != "" {
			msg = fmt.Sprintf("transcription provider reported error: %s", result.Error)
		}
		s.jobRepo.MarkFailed(ctx, job.ID, msg)
	default:
		// Still queued or processing at the provider: push the deadline out
		s.jobRepo.Touch(ctx, job.ID)
	}
}

func (s *service) processJob(ctx context.Context, job *entities.AnalysisJob) {
	switch job.JobType {
	case entities.AnalysisJobTypeTranscription:
		s.processTranscriptionJob(ctx, job)
	case entities.AnalysisJobTypeSummary:
		s.processSummaryJob(ctx, job)
	default:
		s.jobRepo.MarkFailed(ctx, job.ID, fmt.Sprintf("unknown job type %q", job.JobType))
	}
}

// processTranscriptionJob submits the recording to the provider. The claim
// keeps concurrent workers off the same job.
func (s *service) processTranscriptionJob(ctx context.Context, job *entities.AnalysisJob) {
	claimed, err := s.jobRepo.Claim(ctx, job.ID, entities.AnalysisJobStatusPending, entities.AnalysisJobStatusProcessing)
	if err != nil || !claimed {
		return
	}

	meeting, err := s.meetingRepo.FindByID(ctx, job.OwnerID, job.MeetingID)
	if err != nil || meeting == nil || meeting.RecordingURL == nil {
		s.jobRepo.MarkFailed(ctx, job.ID, "meeting or recording no longer available")
		return
	}

	var externalID string
	submitFn := func() error {
		id, err := s.transcriber.SubmitFromURL(ctx, *meeting.RecordingURL)
		if err != nil {
			if jobcontext.IsRetryableError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		externalID = id
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		s.failJob(ctx, job, fmt.Sprintf("failed to submit recording: %v", err))
		return
	}

	// The completion webhook races the submit; the external id must be in
	// the database first.
	if err := s.jobRepo.MarkSubmitted(ctx, job.ID, externalID); err != nil {
		s.logger.Error("failed to store external job id",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("transcription submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("external_id", externalID),
	)
}

// processSummaryJob runs the LLM over the transcript and persists the result
func (s *service) processSummaryJob(ctx context.Context, job *entities.AnalysisJob) {
	claimed, err := s.jobRepo.Claim(ctx, job.ID, entities.AnalysisJobStatusPending, entities.AnalysisJobStatusProcessing)
	if err != nil || !claimed {
		return
	}

	meeting, err := s.meetingRepo.FindByID(ctx, job.OwnerID, job.MeetingID)
	if err != nil || meeting == nil {
		s.jobRepo.MarkFailed(ctx, job.ID, "meeting no longer available")
		return
	}
	if !meeting.HasTranscript() {
		s.jobRepo.MarkFailed(ctx, job.ID, "meeting has no transcript")
		return
	}

	var content string
	completeFn := func() error {
		out, err := s.llm.Complete(ctx, systemPrompt, *meeting.Transcript)
		if err != nil {
			if jobcontext.IsRetryableError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		content = out
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = 90 * time.Second

	if err := backoff.Retry(completeFn, backoff.WithContext(bo, ctx)); err != nil {
		s.failJob(ctx, job, fmt.Sprintf("llm call failed: %v", err))
		return
	}

	// The LLM is not deterministic; a malformed response earns a retry
	result, err := s.parser.ParseSummaryResponse(content)
	if err != nil {
		s.failJob(ctx, job, err.Error())
		return
	}

	summaryJSON, err := json.Marshal(result)
	if err != nil {
		s.jobRepo.MarkFailed(ctx, job.ID, fmt.Sprintf("failed to serialize summary: %v", err))
		return
	}

	if err := s.meetingRepo.SetSummary(ctx, meeting.ID, summaryJSON); err != nil {
		s.failJob(ctx, job, fmt.Sprintf("failed to store summary: %v", err))
		return
	}

	s.createExtractedTasks(ctx, meeting, result)

	if err := s.jobRepo.UpdateStatus(ctx, job.ID, entities.AnalysisJobStatusCompleted); err != nil {
		s.logger.Error("failed to complete summary job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}
	observability.AnalysisJobsTotal.WithLabelValues(string(job.JobType), "success").Inc()

	if s.webhooks != nil {
		payload := map[string]interface{}{
			"meeting_id": meeting.ID,
			"client_id":  meeting.ClientID,
			"summary":    result,
		}
		if err := s.webhooks.Publish(ctx, meeting.OwnerID, entities.EventMeetingSummaryReady, payload, nil); err != nil {
			s.logger.Warn("failed to publish summary_ready event", zap.Error(err))
		}
	}

	s.logger.Info("meeting summary stored",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Int("extracted_tasks", len(result.ExtractedTasks)+len(result.NextSteps)),
	)
}

// failJob records the failure and re-queues the job while its retry budget
// lasts. Only the final failure counts against the metric.
func (s *service) failJob(ctx context.Context, job *entities.AnalysisJob, errMsg string) {
	job.MarkAsFailed(errMsg)
	if job.MarkForRetry() {
		s.logger.Warn("analysis job re-queued for retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.String("last_error", errMsg),
		)
	} else {
		observability.AnalysisJobsTotal.WithLabelValues(string(job.JobType), "failure").Inc()
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.Error("failed to settle job failure",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

// createExtractedTasks appends task candidates to the backlog column
func (s *service) createExtractedTasks(ctx context.Context, meeting *entities.Meeting, result *entities.AnalysisResult) {
	tasks := s.parser.ExtractTasks(meeting.OwnerID, meeting.ID, meeting.ClientID, result)
	if len(tasks) == 0 {
		return
	}

	maxPos, err := s.taskRepo.MaxPosition(ctx, meeting.OwnerID, entities.TaskStatusBacklog)
	if err != nil {
		s.logger.Warn("failed to compute backlog position for extracted tasks", zap.Error(err))
		maxPos = -1
	}

	for i, task := range tasks {
		task.Position = maxPos + 1 + i
		if err := s.taskRepo.Create(ctx, task); err != nil {
			s.logger.Warn("failed to create extracted task",
				zap.String("meeting_id", meeting.ID.String()),
				zap.String("title", task.Title),
				zap.Error(err),
			)
		}
	}
}
