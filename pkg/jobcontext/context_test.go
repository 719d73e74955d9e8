package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBeginCarriesMetadata(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := Begin(context.Background(), jobID, "webhook_dispatch", 2)
	defer cancel()

	got, ok := JobID(ctx)
	if !ok || got != jobID {
		t.Fatalf("expected job id %s, got %s (ok=%v)", jobID, got, ok)
	}
	if jt, _ := JobType(ctx); jt != "webhook_dispatch" {
		t.Fatalf("unexpected job type %q", jt)
	}
	if WorkerID(ctx) != 2 {
		t.Fatalf("unexpected worker id %d", WorkerID(ctx))
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("job context must carry a deadline")
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []error{
		errors.New("dial tcp: connection refused"),
		errors.New("pq: deadlock detected"),
		errors.New("endpoint returned status 503 service unavailable"),
		errors.New("too many requests"),
		errors.New("context deadline exceeded"),
	}
	for _, err := range retryable {
		if !IsRetryableError(err) {
			t.Errorf("expected retryable: %v", err)
		}
	}

	permanent := []error{
		nil,
		errors.New("invalid payload"),
		errors.New("endpoint returned status 404"),
	}
	for _, err := range permanent {
		if IsRetryableError(err) {
			t.Errorf("expected non-retryable: %v", err)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 5 * time.Second
	if d := CalculateBackoff(0, base); d != 5*time.Second {
		t.Fatalf("attempt 0: got %v", d)
	}
	if d := CalculateBackoff(2, base); d != 20*time.Second {
		t.Fatalf("attempt 2: got %v", d)
	}
	if d := CalculateBackoff(10, base); d != 60*time.Second {
		t.Fatalf("cap: got %v", d)
	}
	if d := CalculateBackoff(-1, base); d != 5*time.Second {
		t.Fatalf("negative attempt: got %v", d)
	}
}
