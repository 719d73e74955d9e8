package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entities.WebhookEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*entities.WebhookEvent)}
}

func (r *fakeEventRepo) Enqueue(_ context.Context, event *entities.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]*entities.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*entities.WebhookEvent
	for _, event := range r.events {
		if len(claimed) >= limit {
			break
		}
		if event.Status == entities.WebhookEventStatusPending && !event.NextAttemptAt.After(now) {
			event.Status = entities.WebhookEventStatusProcessing
			claimedAt := now
			event.ClaimedAt = &claimedAt
			copied := *event
			claimed = append(claimed, &copied)
		}
	}
	return claimed, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *entities.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) List(_ context.Context, filters repositories.WebhookEventFilters) ([]*entities.WebhookEvent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WebhookEvent
	for _, event := range r.events {
		if filters.OwnerID != nil && event.OwnerID != *filters.OwnerID {
			continue
		}
		if filters.EventType != nil && event.EventType != *filters.EventType {
			continue
		}
		if filters.Status != nil && event.Status != *filters.Status {
			continue
		}
		copied := *event
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeEventRepo) ReleaseStuck(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var released int64
	for _, event := range r.events {
		if event.Status == entities.WebhookEventStatusProcessing && event.ClaimedAt != nil && event.ClaimedAt.Before(cutoff) {
			event.Status = entities.WebhookEventStatusPending
			event.ClaimedAt = nil
			released++
		}
	}
	return released, nil
}

type fakeConfigRepo struct {
	configs []*entities.WebhookConfiguration
}

func (r *fakeConfigRepo) Create(_ context.Context, cfg *entities.WebhookConfiguration) error {
	r.configs = append(r.configs, cfg)
	return nil
}

func (r *fakeConfigRepo) FindByID(_ context.Context, ownerID, id uuid.UUID) (*entities.WebhookConfiguration, error) {
	for _, cfg := range r.configs {
		if cfg.ID == id && cfg.OwnerID == ownerID {
			return cfg, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) Update(_ context.Context, _ *entities.WebhookConfiguration) error {
	return nil
}

func (r *fakeConfigRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func (r *fakeConfigRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*entities.WebhookConfiguration, error) {
	var out []*entities.WebhookConfiguration
	for _, cfg := range r.configs {
		if cfg.OwnerID == ownerID {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (r *fakeConfigRepo) FindActiveForEvent(_ context.Context, ownerID uuid.UUID, eventType string) ([]*entities.WebhookConfiguration, error) {
	var out []*entities.WebhookConfiguration
	for _, cfg := range r.configs {
		if cfg.OwnerID == ownerID && cfg.IsActive && cfg.SubscribedTo(eventType) {
			out = append(out, cfg)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []*entities.WebhookDeliveryLog
}

func (r *fakeLogRepo) Create(_ context.Context, log *entities.WebhookDeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeLogRepo) ListByConfig(_ context.Context, configID uuid.UUID, _, _ int) ([]*entities.WebhookDeliveryLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WebhookDeliveryLog
	for _, log := range r.logs {
		if log.ConfigID == configID {
			out = append(out, log)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeLogRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*entities.WebhookDeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WebhookDeliveryLog
	for _, log := range r.logs {
		if log.EventID == eventID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeLogRepo) all() []*entities.WebhookDeliveryLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.WebhookDeliveryLog, len(r.logs))
	copy(out, r.logs)
	return out
}

func testWebhookConfig() *config.WebhookConfig {
	return &config.WebhookConfig{
		Workers:          1,
		PollInterval:     time.Second,
		DebounceWindow:   10 * time.Millisecond,
		DeliveryTimeout:  2 * time.Second,
		DefaultMaxTries:  3,
		ClaimBatchSize:   10,
		VisibilityWindow: time.Minute,
		EndpointRate:     1000,
		EndpointBurst:    100,
	}
}

func newTestDispatcher(eventRepo *fakeEventRepo, configRepo *fakeConfigRepo, logRepo *fakeLogRepo) *Dispatcher {
	return NewDispatcher(eventRepo, configRepo, logRepo, nil, testWebhookConfig(), zap.NewNop())
}

func TestDispatcher_DeliverSignedPayload(t *testing.T) {
	var (
		gotBody      []byte
		gotSignature string
		gotMethod    string
		gotHeader    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get(SignatureHeader)
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Custom-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ownerID := uuid.New()
	cfg := entities.NewWebhookConfiguration(ownerID, "crm-sync", server.URL, "minha-chave-secreta-16")
	cfg.Headers = map[string]string{"X-Custom-Token": "abc123"}

	eventRepo := newFakeEventRepo()
	configRepo := &fakeConfigRepo{configs: []*entities.WebhookConfiguration{cfg}}
	logRepo := &fakeLogRepo{}
	d := newTestDispatcher(eventRepo, configRepo, logRepo)

	event := entities.NewWebhookEvent(ownerID, "client.created", datatypes.JSON(`{"name":"Joana"}`), nil, 3)
	if err := eventRepo.Enqueue(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	d.processEvent(context.Background(), event)

	if gotMethod != http.MethodPost {
		t.Fatalf("method = %s, want POST", gotMethod)
	}
	if gotHeader != "abc123" {
		t.Fatalf("custom header = %q, want abc123", gotHeader)
	}

	// Signature covers the exact body bytes
	const prefix = "sha256="
	if len(gotSignature) <= len(prefix) || gotSignature[:len(prefix)] != prefix {
		t.Fatalf("signature header = %q, want sha256= prefix", gotSignature)
	}
	if !pkgai.VerifyHMAC(cfg.Secret, gotBody, gotSignature[len(prefix):]) {
		t.Fatal("signature does not verify over the delivered body")
	}

	var payload struct {
		EventID   string          `json:"event_id"`
		EventType string          `json:"event_type"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if payload.EventID != event.ID.String() {
		t.Fatalf("event_id = %s, want %s", payload.EventID, event.ID)
	}
	if payload.EventType != "client.created" {
		t.Fatalf("event_type = %s, want client.created", payload.EventType)
	}
	if string(payload.Data) != `{"name":"Joana"}` {
		t.Fatalf("data = %s, want original payload", payload.Data)
	}

	stored, err := eventRepo.FindByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("find event: %v", err)
	}
	if stored.Status != entities.WebhookEventStatusCompleted {
		t.Fatalf("event status = %s, want completed", stored.Status)
	}

	logs := logRepo.all()
	if len(logs) != 1 {
		t.Fatalf("delivery logs = %d, want 1", len(logs))
	}
	if !logs[0].Success {
		t.Fatal("delivery log should record success")
	}
	if logs[0].ResponseStatus == nil || *logs[0].ResponseStatus != http.StatusOK {
		t.Fatal("delivery log should record the response status")
	}
}

func TestDispatcher_FailureReschedulesEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ownerID := uuid.New()
	cfg := entities.NewWebhookConfiguration(ownerID, "crm-sync", server.URL, "minha-chave-secreta-16")

	eventRepo := newFakeEventRepo()
	configRepo := &fakeConfigRepo{configs: []*entities.WebhookConfiguration{cfg}}
	logRepo := &fakeLogRepo{}
	d := newTestDispatcher(eventRepo, configRepo, logRepo)

	event := entities.NewWebhookEvent(ownerID, "task.updated", datatypes.JSON(`{"status":"concluida"}`), nil, 3)
	if err := eventRepo.Enqueue(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	d.processEvent(context.Background(), event)

	stored, err := eventRepo.FindByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("find event: %v", err)
	}
	if stored.Status != entities.WebhookEventStatusPending {
		t.Fatalf("event status = %s, want pending for retry", stored.Status)
	}
	if stored.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", stored.Attempts)
	}
	if !stored.NextAttemptAt.After(time.Now()) {
		t.Fatal("next_attempt_at should be pushed into the future")
	}
	if stored.LastError == nil {
		t.Fatal("last_error should record the delivery failure")
	}

	logs := logRepo.all()
	if len(logs) != 1 || logs[0].Success {
		t.Fatalf("expected one failed delivery log, got %+v", logs)
	}
}

func TestDispatcher_NoActiveEndpointsCompletesEvent(t *testing.T) {
	ownerID := uuid.New()
	eventRepo := newFakeEventRepo()
	logRepo := &fakeLogRepo{}
	d := newTestDispatcher(eventRepo, &fakeConfigRepo{}, logRepo)

	event := entities.NewWebhookEvent(ownerID, "meeting.created", datatypes.JSON(`{}`), nil, 3)
	if err := eventRepo.Enqueue(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	d.processEvent(context.Background(), event)

	stored, err := eventRepo.FindByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("find event: %v", err)
	}
	if stored.Status != entities.WebhookEventStatusCompleted {
		t.Fatalf("event status = %s, want completed when nobody subscribes", stored.Status)
	}
	if len(logRepo.all()) != 0 {
		t.Fatal("no delivery attempt should be logged without endpoints")
	}
}

func TestDispatcher_PreviousValuesInPayload(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ownerID := uuid.New()
	cfg := entities.NewWebhookConfiguration(ownerID, "crm-sync", server.URL, "minha-chave-secreta-16")

	eventRepo := newFakeEventRepo()
	d := newTestDispatcher(eventRepo, &fakeConfigRepo{configs: []*entities.WebhookConfiguration{cfg}}, &fakeLogRepo{})

	event := entities.NewWebhookEvent(
		ownerID,
		"client.updated",
		datatypes.JSON(`{"status":"ativo"}`),
		datatypes.JSON(`{"status":"prospecto"}`),
		3,
	)
	if err := eventRepo.Enqueue(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	d.processEvent(context.Background(), event)

	var payload struct {
		PreviousValues json.RawMessage `json:"previous_values"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if string(payload.PreviousValues) != `{"status":"prospecto"}` {
		t.Fatalf("previous_values = %s, want prior snapshot", payload.PreviousValues)
	}
}

func TestDispatcher_ClaimDueSkipsFutureEvents(t *testing.T) {
	eventRepo := newFakeEventRepo()

	due := entities.NewWebhookEvent(uuid.New(), "client.created", datatypes.JSON(`{}`), nil, 3)
	future := entities.NewWebhookEvent(uuid.New(), "client.created", datatypes.JSON(`{}`), nil, 3)
	future.NextAttemptAt = time.Now().Add(time.Hour)

	if err := eventRepo.Enqueue(context.Background(), due); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := eventRepo.Enqueue(context.Background(), future); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, err := eventRepo.ClaimDue(context.Background(), time.Now(), 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != due.ID {
		t.Fatalf("claimed %d events, want only the due one", len(claimed))
	}
	if claimed[0].Status != entities.WebhookEventStatusProcessing {
		t.Fatalf("claimed status = %s, want processing", claimed[0].Status)
	}
}
