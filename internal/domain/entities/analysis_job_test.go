package entities

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewAnalysisJob_Defaults(t *testing.T) {
	job := NewAnalysisJob(uuid.New(), uuid.New(), AnalysisJobTypeTranscription)

	if job.Status != AnalysisJobStatusPending {
		t.Fatalf("expected pending, got %s", job.Status)
	}
	if job.RetryCount != 0 || job.MaxRetries != 3 {
		t.Fatalf("unexpected retry budget: %d/%d", job.RetryCount, job.MaxRetries)
	}
}

func TestAnalysisJob_MarkForRetry(t *testing.T) {
	job := NewAnalysisJob(uuid.New(), uuid.New(), AnalysisJobTypeSummary)

	// Only failed jobs are retry candidates
	if job.MarkForRetry() {
		t.Fatal("pending job must not be retried")
	}

	for i := 1; i <= job.MaxRetries; i++ {
		job.MarkAsFailed("llm call failed")
		if !job.MarkForRetry() {
			t.Fatalf("retry %d rejected with budget remaining", i)
		}
		if job.Status != AnalysisJobStatusPending {
			t.Fatalf("retry %d left status %s", i, job.Status)
		}
		if job.RetryCount != i {
			t.Fatalf("expected retry count %d, got %d", i, job.RetryCount)
		}
	}

	job.MarkAsFailed("llm call failed")
	if job.MarkForRetry() {
		t.Fatal("retry granted past the budget")
	}
	if job.Status != AnalysisJobStatusFailed {
		t.Fatalf("exhausted job must stay failed, got %s", job.Status)
	}
	if job.LastError == nil || *job.LastError != "llm call failed" {
		t.Fatalf("last error not kept: %v", job.LastError)
	}
}

func TestAnalysisJob_IsFinished(t *testing.T) {
	cases := map[AnalysisJobStatus]bool{
		AnalysisJobStatusPending:    false,
		AnalysisJobStatusSubmitted:  false,
		AnalysisJobStatusProcessing: false,
		AnalysisJobStatusCompleted:  true,
		AnalysisJobStatusFailed:     true,
		AnalysisJobStatusCancelled:  true,
	}
	for status, want := range cases {
		job := NewAnalysisJob(uuid.New(), uuid.New(), AnalysisJobTypeSummary)
		job.Status = status
		if got := job.IsFinished(); got != want {
			t.Errorf("IsFinished(%s) = %v, want %v", status, got, want)
		}
	}
}
