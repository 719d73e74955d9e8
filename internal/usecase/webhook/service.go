package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/cache"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/observability"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

// NotifyChannel is the pub/sub channel that wakes dispatchers early
const NotifyChannel = "webhooks:dispatch"

// TestEventType marks test-fire deliveries; it never enters the queue
const TestEventType = "webhook.test"

// Service defines webhook configuration and queue operations
type Service interface {
	// Configuration CRUD
	CreateConfig(ctx context.Context, ownerID uuid.UUID, input ConfigInput) (*entities.WebhookConfiguration, error)
	GetConfig(ctx context.Context, ownerID, id uuid.UUID) (*entities.WebhookConfiguration, error)
	UpdateConfig(ctx context.Context, ownerID, id uuid.UUID, input ConfigInput) (*entities.WebhookConfiguration, error)
	DeleteConfig(ctx context.Context, ownerID, id uuid.UUID) error
	ListConfigs(ctx context.Context, ownerID uuid.UUID) ([]*entities.WebhookConfiguration, error)

	// Publish enqueues an event for every matching endpoint
	Publish(ctx context.Context, ownerID uuid.UUID, eventType string, data interface{}, previousValues interface{}) error

	// TestFire sends a synthetic signed event to one endpoint, bypassing
	// the queue, and reports the outcome to the caller.
	TestFire(ctx context.Context, ownerID, configID uuid.UUID) (*TestResult, error)

	// Requeue resets a failed event for redelivery
	Requeue(ctx context.Context, ownerID, eventID uuid.UUID) (*entities.WebhookEvent, error)

	// Introspection
	ListQueue(ctx context.Context, ownerID uuid.UUID, filters repositories.WebhookEventFilters) ([]*entities.WebhookEvent, int64, error)

	// ListQueueAll retrieves queue entries across every tenant. Admin only;
	// the handler enforces the role.
	ListQueueAll(ctx context.Context, filters repositories.WebhookEventFilters) ([]*entities.WebhookEvent, int64, error)
	GetEvent(ctx context.Context, ownerID, eventID uuid.UUID) (*entities.WebhookEvent, error)
	ListDeliveryLogs(ctx context.Context, ownerID, configID uuid.UUID, limit, offset int) ([]*entities.WebhookDeliveryLog, int64, error)
	ListEventDeliveryLogs(ctx context.Context, ownerID, eventID uuid.UUID) ([]*entities.WebhookDeliveryLog, error)
}

// ConfigInput carries the writable fields of a configuration
type ConfigInput struct {
	Name        string
	URL         string
	HTTPMethod  string
	Secret      string
	Headers     map[string]string
	EventTypes  []string
	IsActive    *bool
	MaxAttempts *int
}

// TestResult is the outcome of a test-fire delivery
type TestResult struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Body       string `json:"body,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type service struct {
	configRepo repositories.WebhookConfigRepository
	eventRepo  repositories.WebhookEventRepository
	logRepo    repositories.WebhookDeliveryLogRepository
	store      cache.Store
	notifier   cache.Notifier
	cfg        *config.WebhookConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewService constructs the webhook service
func NewService(
	configRepo repositories.WebhookConfigRepository,
	eventRepo repositories.WebhookEventRepository,
	logRepo repositories.WebhookDeliveryLogRepository,
	store cache.Store,
	notifier cache.Notifier,
	cfg *config.WebhookConfig,
	logger *zap.Logger,
) Service {
	return &service{
		configRepo: configRepo,
		eventRepo:  eventRepo,
		logRepo:    logRepo,
		store:      store,
		notifier:   notifier,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.DeliveryTimeout},
		logger:     logger,
	}
}

// CreateConfig registers a new outbound endpoint
func (s *service) CreateConfig(ctx context.Context, ownerID uuid.UUID, input ConfigInput) (*entities.WebhookConfiguration, error) {
	if err := validateConfigInput(input, true); err != nil {
		return nil, err
	}

	cfg := entities.NewWebhookConfiguration(ownerID, input.Name, input.URL, input.Secret)
	applyConfigInput(cfg, input)

	if err := cfg.ValidateMethod(); err != nil {
		return nil, usecaseErrors.ErrInvalidInput
	}

	if err := s.configRepo.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to create webhook configuration: %w", err)
	}

	s.logger.Info("webhook configuration created",
		zap.String("config_id", cfg.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("url", cfg.URL),
	)
	return cfg, nil
}

// GetConfig retrieves one owned configuration
func (s *service) GetConfig(ctx context.Context, ownerID, id uuid.UUID) (*entities.WebhookConfiguration, error) {
	cfg, err := s.configRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, usecaseErrors.ErrWebhookNotFound
	}
	return cfg, nil
}

// UpdateConfig modifies an owned configuration
func (s *service) UpdateConfig(ctx context.Context, ownerID, id uuid.UUID, input ConfigInput) (*entities.WebhookConfiguration, error) {
	cfg, err := s.GetConfig(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := validateConfigInput(input, false); err != nil {
		return nil, err
	}

	if input.Name != "" {
		cfg.Name = input.Name
	}
	if input.URL != "" {
		cfg.URL = input.URL
	}
	if input.Secret != "" {
		cfg.Secret = input.Secret
	}
	applyConfigInput(cfg, input)

	if err := cfg.ValidateMethod(); err != nil {
		return nil, usecaseErrors.ErrInvalidInput
	}

	cfg.UpdatedAt = time.Now()
	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to update webhook configuration: %w", err)
	}
	return cfg, nil
}

// DeleteConfig removes an owned configuration
func (s *service) DeleteConfig(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetConfig(ctx, ownerID, id); err != nil {
		return err
	}
	return s.configRepo.Delete(ctx, ownerID, id)
}

// ListConfigs retrieves every configuration of the user
func (s *service) ListConfigs(ctx context.Context, ownerID uuid.UUID) ([]*entities.WebhookConfiguration, error) {
	return s.configRepo.ListByOwner(ctx, ownerID)
}

// Publish enqueues an event when the owner has at least one endpoint
// subscribed to it, then wakes a dispatcher. Wake-ups are debounced so a
// burst of events produces a single notification.
func (s *service) Publish(ctx context.Context, ownerID uuid.UUID, eventType string, data interface{}, previousValues interface{}) error {
	if !entities.IsKnownEventType(eventType) {
		return usecaseErrors.ErrInvalidEventType
	}

	configs, err := s.configRepo.FindActiveForEvent(ctx, ownerID, eventType)
	if err != nil {
		return fmt.Errorf("failed to match webhook configurations: %w", err)
	}
	if len(configs) == 0 {
		// Nothing listens for this event, skip the queue entirely
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	var prev datatypes.JSON
	if previousValues != nil {
		prev, err = json.Marshal(previousValues)
		if err != nil {
			return fmt.Errorf("failed to marshal previous values: %w", err)
		}
	}

	maxAttempts := s.cfg.DefaultMaxTries
	for _, cfg := range configs {
		if cfg.MaxAttempts > maxAttempts {
			maxAttempts = cfg.MaxAttempts
		}
	}

	event := entities.NewWebhookEvent(ownerID, eventType, payload, prev, maxAttempts)
	if err := s.eventRepo.Enqueue(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue webhook event: %w", err)
	}

	observability.WebhookEventsEnqueued.WithLabelValues(eventType).Inc()
	s.logger.Debug("webhook event enqueued",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", eventType),
		zap.Int("endpoints", len(configs)),
	)

	s.notifyDispatchers(ctx)
	return nil
}

// notifyDispatchers publishes a wake-up, coalesced inside the debounce window
func (s *service) notifyDispatchers(ctx context.Context) {
	if s.notifier == nil {
		return
	}

	first, err := s.store.SetNX(ctx, "webhooks:notify_debounce", "1", s.cfg.DebounceWindow)
	if err != nil {
		s.logger.Warn("webhook notify debounce check failed", zap.Error(err))
		return
	}
	if !first {
		return
	}

	if err := s.notifier.Notify(ctx, NotifyChannel, "wake"); err != nil {
		s.logger.Warn("failed to notify webhook dispatchers", zap.Error(err))
	}
}

// TestFire posts a synthetic event to the configuration's endpoint so the
// owner can verify connectivity and signature handling before real traffic.
func (s *service) TestFire(ctx context.Context, ownerID, configID uuid.UUID) (*TestResult, error) {
	cfg, err := s.GetConfig(ctx, ownerID, configID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]interface{}{
		"event_id":   uuid.New().String(),
		"event_type": TestEventType,
		"timestamp":  time.Now().UTC(),
		"data":       map[string]bool{"test": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build test payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.HTTPMethod, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build test request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, "sha256="+pkgai.SignHMAC(cfg.Secret, body))
	req.Header.Set("X-Webhook-Event", TestEventType)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	result := &TestResult{URL: cfg.URL}
	start := time.Now()
	resp, err := s.httpClient.Do(req)
	result.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	result.StatusCode = resp.StatusCode
	result.Body = string(respBody)
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !result.Success {
		result.Error = fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
	}

	s.logger.Info("webhook test fired",
		zap.String("config_id", cfg.ID.String()),
		zap.String("url", cfg.URL),
		zap.Bool("success", result.Success),
	)
	return result, nil
}

// Requeue resets a failed event for a fresh round of attempts
func (s *service) Requeue(ctx context.Context, ownerID, eventID uuid.UUID) (*entities.WebhookEvent, error) {
	event, err := s.GetEvent(ctx, ownerID, eventID)
	if err != nil {
		return nil, err
	}

	if err := event.Requeue(); err != nil {
		return nil, usecaseErrors.ErrEventNotRetryable
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to requeue event: %w", err)
	}

	s.logger.Info("webhook event requeued",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.EventType),
	)

	s.notifyDispatchers(ctx)
	return event, nil
}

// ListQueue retrieves the owner's queue entries
func (s *service) ListQueue(ctx context.Context, ownerID uuid.UUID, filters repositories.WebhookEventFilters) ([]*entities.WebhookEvent, int64, error) {
	filters.OwnerID = &ownerID
	return s.eventRepo.List(ctx, filters)
}

// ListQueueAll retrieves queue entries across every tenant
func (s *service) ListQueueAll(ctx context.Context, filters repositories.WebhookEventFilters) ([]*entities.WebhookEvent, int64, error) {
	return s.eventRepo.List(ctx, filters)
}

// GetEvent retrieves one owned queue entry
func (s *service) GetEvent(ctx context.Context, ownerID, eventID uuid.UUID) (*entities.WebhookEvent, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.OwnerID != ownerID {
		return nil, usecaseErrors.ErrEventNotFound
	}
	return event, nil
}

// ListDeliveryLogs retrieves delivery history of an owned configuration
func (s *service) ListDeliveryLogs(ctx context.Context, ownerID, configID uuid.UUID, limit, offset int) ([]*entities.WebhookDeliveryLog, int64, error) {
	if _, err := s.GetConfig(ctx, ownerID, configID); err != nil {
		return nil, 0, err
	}
	return s.logRepo.ListByConfig(ctx, configID, limit, offset)
}

// ListEventDeliveryLogs retrieves delivery history of an owned event
func (s *service) ListEventDeliveryLogs(ctx context.Context, ownerID, eventID uuid.UUID) ([]*entities.WebhookDeliveryLog, error) {
	if _, err := s.GetEvent(ctx, ownerID, eventID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByEvent(ctx, eventID)
}

func validateConfigInput(input ConfigInput, creating bool) error {
	if creating {
		if input.Name == "" || input.URL == "" || input.Secret == "" {
			return usecaseErrors.ErrInvalidInput
		}
	}
	if input.URL != "" {
		parsed, err := url.Parse(input.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return usecaseErrors.ErrInvalidInput
		}
	}
	for _, t := range input.EventTypes {
		if !entities.IsKnownEventType(t) {
			return usecaseErrors.ErrInvalidEventType
		}
	}
	return nil
}

func applyConfigInput(cfg *entities.WebhookConfiguration, input ConfigInput) {
	if input.HTTPMethod != "" {
		cfg.HTTPMethod = input.HTTPMethod
	}
	if input.Headers != nil {
		cfg.Headers = input.Headers
	}
	if input.EventTypes != nil {
		cfg.EventTypes = input.EventTypes
	}
	if input.IsActive != nil {
		cfg.IsActive = *input.IsActive
	}
	if input.MaxAttempts != nil && *input.MaxAttempts > 0 {
		cfg.MaxAttempts = *input.MaxAttempts
	}
}
