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

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/cache"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
)

type fakeNotifier struct {
	mu      sync.Mutex
	notices int
}

func (n *fakeNotifier) Notify(_ context.Context, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices++
	return nil
}

func (n *fakeNotifier) Subscribe(_ context.Context, _ string) <-chan string {
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notices
}

func newTestWebhookService() (Service, *fakeEventRepo, *fakeConfigRepo, *fakeNotifier) {
	eventRepo := newFakeEventRepo()
	configRepo := &fakeConfigRepo{}
	notifier := &fakeNotifier{}
	svc := NewService(configRepo, eventRepo, &fakeLogRepo{}, cache.NewMemoryStore(), notifier, testWebhookConfig(), zap.NewNop())
	return svc, eventRepo, configRepo, notifier
}

func activeConfig(ownerID uuid.UUID, eventTypes ...string) *entities.WebhookConfiguration {
	cfg := entities.NewWebhookConfiguration(ownerID, "crm-sync", "https://example.com/hook", "minha-chave-secreta-16")
	cfg.EventTypes = eventTypes
	return cfg
}

func TestWebhookService_CreateConfig_Validation(t *testing.T) {
	svc, _, _, _ := newTestWebhookService()
	ownerID := uuid.New()

	cases := []struct {
		name  string
		input ConfigInput
		want  error
	}{
		{"missing secret", ConfigInput{Name: "x", URL: "https://example.com"}, usecaseErrors.ErrInvalidInput},
		{"bad scheme", ConfigInput{Name: "x", URL: "ftp://example.com", Secret: "minha-chave-secreta-16"}, usecaseErrors.ErrInvalidInput},
		{"unknown event type", ConfigInput{Name: "x", URL: "https://example.com", Secret: "minha-chave-secreta-16", EventTypes: []string{"pedido.criado"}}, usecaseErrors.ErrInvalidEventType},
	}
	for _, tc := range cases {
		if _, err := svc.CreateConfig(context.Background(), ownerID, tc.input); err != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	cfg, err := svc.CreateConfig(context.Background(), ownerID, ConfigInput{
		Name:       "crm-sync",
		URL:        "https://example.com/hook",
		Secret:     "minha-chave-secreta-16",
		EventTypes: []string{entities.EventClientCreated},
	})
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if !cfg.IsActive {
		t.Fatal("new configuration should be active")
	}
}

func TestWebhookService_Publish_Enqueues(t *testing.T) {
	svc, eventRepo, configRepo, notifier := newTestWebhookService()
	ownerID := uuid.New()
	configRepo.configs = []*entities.WebhookConfiguration{activeConfig(ownerID, entities.EventClientCreated)}

	data := map[string]string{"name": "Joana"}
	if err := svc.Publish(context.Background(), ownerID, entities.EventClientCreated, data, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}

	events, total, err := eventRepo.List(context.Background(), repositories.WebhookEventFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("queued events = %d, want 1", total)
	}
	if events[0].EventType != entities.EventClientCreated {
		t.Fatalf("event_type = %s, want client.created", events[0].EventType)
	}

	var payload map[string]string
	if err := json.Unmarshal(events[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["name"] != "Joana" {
		t.Fatalf("payload = %v, want original data", payload)
	}

	if notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1", notifier.count())
	}
}

func TestWebhookService_Publish_SkipsWithoutSubscribers(t *testing.T) {
	svc, eventRepo, configRepo, _ := newTestWebhookService()
	ownerID := uuid.New()
	configRepo.configs = []*entities.WebhookConfiguration{activeConfig(ownerID, entities.EventTaskCreated)}

	if err := svc.Publish(context.Background(), ownerID, entities.EventClientCreated, map[string]string{}, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, total, _ := eventRepo.List(context.Background(), repositories.WebhookEventFilters{})
	if total != 0 {
		t.Fatalf("queued events = %d, want 0 when nobody subscribes", total)
	}
}

func TestWebhookService_Publish_UnknownEventType(t *testing.T) {
	svc, _, _, _ := newTestWebhookService()
	if err := svc.Publish(context.Background(), uuid.New(), "pedido.criado", nil, nil); err != usecaseErrors.ErrInvalidEventType {
		t.Fatalf("got %v, want ErrInvalidEventType", err)
	}
}

func TestWebhookService_Publish_DebouncesWakeups(t *testing.T) {
	svc, _, configRepo, notifier := newTestWebhookService()
	ownerID := uuid.New()
	configRepo.configs = []*entities.WebhookConfiguration{activeConfig(ownerID, entities.EventTaskUpdated)}

	// Burst inside the debounce window coalesces into one wake-up
	for i := 0; i < 5; i++ {
		if err := svc.Publish(context.Background(), ownerID, entities.EventTaskUpdated, map[string]int{"i": i}, nil); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1 inside the debounce window", notifier.count())
	}

	time.Sleep(testWebhookConfig().DebounceWindow + 10*time.Millisecond)
	if err := svc.Publish(context.Background(), ownerID, entities.EventTaskUpdated, map[string]int{"i": 5}, nil); err != nil {
		t.Fatalf("publish after window: %v", err)
	}
	if notifier.count() != 2 {
		t.Fatalf("notifications = %d, want 2 after the window elapsed", notifier.count())
	}
}

func TestWebhookService_TestFire(t *testing.T) {
	var (
		gotBody      []byte
		gotSignature string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"received":true}`))
	}))
	defer server.Close()

	svc, _, configRepo, _ := newTestWebhookService()
	ownerID := uuid.New()
	cfg := entities.NewWebhookConfiguration(ownerID, "crm-sync", server.URL, "minha-chave-secreta-16")
	configRepo.configs = []*entities.WebhookConfiguration{cfg}

	result, err := svc.TestFire(context.Background(), ownerID, cfg.ID)
	if err != nil {
		t.Fatalf("test fire: %v", err)
	}
	if !result.Success || result.StatusCode != http.StatusOK {
		t.Fatalf("result = %+v, want success with status 200", result)
	}

	const prefix = "sha256="
	if !pkgai.VerifyHMAC(cfg.Secret, gotBody, gotSignature[len(prefix):]) {
		t.Fatal("test payload signature does not verify")
	}

	var payload struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal test payload: %v", err)
	}
	if payload.EventType != TestEventType {
		t.Fatalf("event_type = %s, want %s", payload.EventType, TestEventType)
	}

	if _, err := svc.TestFire(context.Background(), ownerID, uuid.New()); err != usecaseErrors.ErrWebhookNotFound {
		t.Fatalf("unknown config: got %v, want ErrWebhookNotFound", err)
	}
}

func TestWebhookService_Requeue(t *testing.T) {
	svc, eventRepo, _, _ := newTestWebhookService()
	ownerID := uuid.New()

	event := entities.NewWebhookEvent(ownerID, entities.EventClientCreated, []byte(`{}`), nil, 1)
	event.RecordFailure("connection refused", time.Now())
	if err := eventRepo.Enqueue(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	requeued, err := svc.Requeue(context.Background(), ownerID, event.ID)
	if err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if requeued.Status != entities.WebhookEventStatusPending || requeued.Attempts != 0 {
		t.Fatalf("requeued status=%s attempts=%d, want pending/0", requeued.Status, requeued.Attempts)
	}
}

func TestWebhookService_Requeue_Rules(t *testing.T) {
	svc, eventRepo, _, _ := newTestWebhookService()
	ownerID := uuid.New()

	pending := entities.NewWebhookEvent(ownerID, entities.EventClientCreated, []byte(`{}`), nil, 3)
	if err := eventRepo.Enqueue(context.Background(), pending); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := svc.Requeue(context.Background(), ownerID, pending.ID); err != usecaseErrors.ErrEventNotRetryable {
		t.Fatalf("requeue pending: got %v, want ErrEventNotRetryable", err)
	}

	// Another tenant's event is invisible
	if _, err := svc.Requeue(context.Background(), uuid.New(), pending.ID); err != usecaseErrors.ErrEventNotFound {
		t.Fatalf("cross-tenant requeue: got %v, want ErrEventNotFound", err)
	}
}

func TestWebhookService_ListQueue_ScopedToOwner(t *testing.T) {
	svc, eventRepo, _, _ := newTestWebhookService()
	ownerID := uuid.New()

	mine := entities.NewWebhookEvent(ownerID, entities.EventClientCreated, []byte(`{}`), nil, 3)
	other := entities.NewWebhookEvent(uuid.New(), entities.EventClientCreated, []byte(`{}`), nil, 3)
	if err := eventRepo.Enqueue(context.Background(), mine); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := eventRepo.Enqueue(context.Background(), other); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	events, total, err := svc.ListQueue(context.Background(), ownerID, repositories.WebhookEventFilters{})
	if err != nil {
		t.Fatalf("list queue: %v", err)
	}
	if total != 1 || events[0].ID != mine.ID {
		t.Fatalf("listed %d events, want only the owner's", total)
	}
}
