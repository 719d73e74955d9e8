package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/cache"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/observability"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/jobcontext"
)

// SignatureHeader carries the HMAC-SHA256 signature of the request body
const SignatureHeader = "X-Webhook-Signature"

const maxLoggedBodyBytes = 2048

// deliveryPayload is the JSON body sent to endpoints
type deliveryPayload struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	Timestamp      time.Time       `json:"timestamp"`
	Data           json.RawMessage `json:"data"`
	PreviousValues json.RawMessage `json:"previous_values,omitempty"`
}

// deliveryResult is what a single endpoint attempt produced
type deliveryResult struct {
	statusCode int
	body       string
	duration   time.Duration
}

// Dispatcher drains the event queue and delivers signed payloads to the
// subscribed endpoints.
type Dispatcher struct {
	eventRepo  repositories.WebhookEventRepository
	configRepo repositories.WebhookConfigRepository
	logRepo    repositories.WebhookDeliveryLogRepository
	notifier   cache.Notifier
	cfg        *config.WebhookConfig
	logger     *zap.Logger

	httpClient *http.Client

	// Per-endpoint breaker and limiter, keyed by configuration id
	mu       sync.Mutex
	breakers map[uuid.UUID]*gobreaker.CircuitBreaker[*deliveryResult]
	limiters map[uuid.UUID]*rate.Limiter

	runMu    sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher constructs a dispatcher
func NewDispatcher(
	eventRepo repositories.WebhookEventRepository,
	configRepo repositories.WebhookConfigRepository,
	logRepo repositories.WebhookDeliveryLogRepository,
	notifier cache.Notifier,
	cfg *config.WebhookConfig,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		eventRepo:  eventRepo,
		configRepo: configRepo,
		logRepo:    logRepo,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.DeliveryTimeout},
		breakers:   make(map[uuid.UUID]*gobreaker.CircuitBreaker[*deliveryResult]),
		limiters:   make(map[uuid.UUID]*rate.Limiter),
	}
}

// Start launches the poll loop and the worker pool
func (d *Dispatcher) Start(ctx context.Context) error {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if d.running {
		return fmt.Errorf("dispatcher already running")
	}
	d.running = true
	d.stopChan = make(chan struct{})

	work := make(chan *entities.WebhookEvent, d.cfg.ClaimBatchSize)

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i, work)
	}

	d.wg.Add(1)
	go d.pollLoop(ctx, work)

	d.logger.Info("webhook dispatcher started",
		zap.Int("workers", d.cfg.Workers),
		zap.Duration("poll_interval", d.cfg.PollInterval),
	)
	return nil
}

// Stop signals the loops and waits for in-flight deliveries
func (d *Dispatcher) Stop() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if !d.running {
		return
	}
	close(d.stopChan)
	d.wg.Wait()
	d.running = false

	d.logger.Info("webhook dispatcher stopped")
}

// pollLoop claims due events on a ticker and on pub/sub wake-ups
func (d *Dispatcher) pollLoop(ctx context.Context, work chan<- *entities.WebhookEvent) {
	defer d.wg.Done()
	defer close(work)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	var wake <-chan string
	if d.notifier != nil {
		wake = d.notifier.Subscribe(ctx, NotifyChannel)
	}

	// Drain whatever is already due before the first tick
	d.claimAndDistribute(ctx, work)

	for {
		select {
		case <-d.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.claimAndDistribute(ctx, work)
		case _, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
			d.claimAndDistribute(ctx, work)
		}
	}
}

func (d *Dispatcher) claimAndDistribute(ctx context.Context, work chan<- *entities.WebhookEvent) {
	events, err := d.eventRepo.ClaimDue(ctx, time.Now(), d.cfg.ClaimBatchSize)
	if err != nil {
		d.logger.Error("failed to claim due webhook events", zap.Error(err))
		return
	}

	d.updateQueueDepth(ctx)

	for _, event := range events {
		select {
		case work <- event:
		case <-d.stopChan:
			// Shutting down: release the claim so another process picks it up
			d.releaseClaim(ctx, event)
			return
		case <-ctx.Done():
			d.releaseClaim(ctx, event)
			return
		}
	}
}

func (d *Dispatcher) releaseClaim(ctx context.Context, event *entities.WebhookEvent) {
	event.Status = entities.WebhookEventStatusPending
	event.ClaimedAt = nil
	if err := d.eventRepo.Update(ctx, event); err != nil {
		d.logger.Warn("failed to release claimed event",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) updateQueueDepth(ctx context.Context) {
	pending := entities.WebhookEventStatusPending
	_, total, err := d.eventRepo.List(ctx, repositories.WebhookEventFilters{Status: &pending, Limit: 1})
	if err != nil {
		return
	}
	observability.WebhookQueueDepth.Set(float64(total))
}

// worker consumes claimed events
func (d *Dispatcher) worker(parentCtx context.Context, workerID int, work <-chan *entities.WebhookEvent) {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			return
		case event, ok := <-work:
			if !ok {
				return
			}
			ctx, cancel := jobcontext.Begin(parentCtx, event.ID, "webhook_dispatch", workerID)
			d.processEvent(ctx, event)
			cancel()
		}
	}
}

// processEvent delivers one claimed event to every subscribed endpoint and
// settles the queue row.
func (d *Dispatcher) processEvent(ctx context.Context, event *entities.WebhookEvent) {
	configs, err := d.configRepo.FindActiveForEvent(ctx, event.OwnerID, event.EventType)
	if err != nil {
		d.settleFailure(ctx, event, fmt.Sprintf("failed to resolve endpoints: %v", err))
		return
	}
	if len(configs) == 0 {
		// Every endpoint was removed or deactivated since enqueue
		event.MarkCompleted()
		if err := d.eventRepo.Update(ctx, event); err != nil {
			d.logger.Error("failed to settle event without endpoints",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
		}
		return
	}

	body, err := d.buildBody(event)
	if err != nil {
		d.settleFailure(ctx, event, fmt.Sprintf("failed to build payload: %v", err))
		return
	}

	var firstErr error
	for _, cfg := range configs {
		if err := d.DeliverToEndpoint(ctx, cfg, event, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		event.MarkCompleted()
		if err := d.eventRepo.Update(ctx, event); err != nil {
			d.logger.Error("failed to mark event completed",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
		}
		return
	}

	d.settleFailure(ctx, event, firstErr.Error())
}

// settleFailure records the failure and either reschedules or exhausts the event
func (d *Dispatcher) settleFailure(ctx context.Context, event *entities.WebhookEvent, errMsg string) {
	backoff := jobcontext.CalculateBackoff(event.Attempts, d.cfg.PollInterval)
	event.RecordFailure(errMsg, time.Now().Add(backoff))

	if event.Status == entities.WebhookEventStatusFailed {
		observability.WebhookEventsExhausted.Inc()
		d.logger.Warn("webhook event exhausted all attempts",
			zap.String("event_id", event.ID.String()),
			zap.String("event_type", event.EventType),
			zap.Int("attempts", event.Attempts),
			zap.String("last_error", errMsg),
		)
	} else {
		d.logger.Info("webhook event rescheduled",
			zap.String("event_id", event.ID.String()),
			zap.Int("attempt", event.Attempts),
			zap.Time("next_attempt_at", event.NextAttemptAt),
		)
	}

	if err := d.eventRepo.Update(ctx, event); err != nil {
		d.logger.Error("failed to settle event failure",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}

// buildBody serializes the delivery payload once per event
func (d *Dispatcher) buildBody(event *entities.WebhookEvent) ([]byte, error) {
	payload := deliveryPayload{
		EventID:   event.ID.String(),
		EventType: event.EventType,
		Timestamp: event.CreatedAt.UTC(),
		Data:      json.RawMessage(event.Payload),
	}
	if len(event.PreviousValues) > 0 {
		payload.PreviousValues = json.RawMessage(event.PreviousValues)
	}
	return json.Marshal(payload)
}

// DeliverToEndpoint sends the signed body to one endpoint and records the
// attempt in the delivery log.
func (d *Dispatcher) DeliverToEndpoint(ctx context.Context, cfg *entities.WebhookConfiguration, event *entities.WebhookEvent, body []byte) error {
	if err := d.limiterFor(cfg.ID).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}

	breaker := d.breakerFor(cfg.ID)
	result, err := breaker.Execute(func() (*deliveryResult, error) {
		return d.doRequest(ctx, cfg, event, body)
	})

	d.recordAttempt(ctx, cfg, event, result, err)

	if err != nil {
		return fmt.Errorf("delivery to %s failed: %w", cfg.URL, err)
	}
	return nil
}

// doRequest performs the signed HTTP call
func (d *Dispatcher) doRequest(ctx context.Context, cfg *entities.WebhookConfiguration, event *entities.WebhookEvent, body []byte) (*deliveryResult, error) {
	req, err := http.NewRequestWithContext(ctx, cfg.HTTPMethod, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, "sha256="+pkgai.SignHMAC(cfg.Secret, body))
	req.Header.Set("X-Webhook-Event", event.EventType)
	req.Header.Set("X-Webhook-Event-Id", event.ID.String())
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return &deliveryResult{duration: duration}, err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
	result := &deliveryResult{
		statusCode: resp.StatusCode,
		body:       string(bodyBytes),
		duration:   duration,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return result, nil
}

// recordAttempt writes the delivery log row and metrics
func (d *Dispatcher) recordAttempt(ctx context.Context, cfg *entities.WebhookConfiguration, event *entities.WebhookEvent, result *deliveryResult, deliveryErr error) {
	success := deliveryErr == nil

	log := &entities.WebhookDeliveryLog{
		ID:         uuid.New(),
		EventID:    event.ID,
		ConfigID:   cfg.ID,
		URL:        cfg.URL,
		HTTPMethod: cfg.HTTPMethod,
		Attempt:    event.Attempts + 1,
		Success:    success,
	}

	if result != nil {
		log.DurationMs = result.duration.Milliseconds()
		if result.statusCode != 0 {
			status := result.statusCode
			log.ResponseStatus = &status
		}
		if result.body != "" {
			body := result.body
			log.ResponseBody = &body
		}
		observability.RecordDelivery(event.EventType, success, result.duration)
	} else {
		// Breaker rejected the call before any request was made
		observability.RecordDelivery(event.EventType, success, 0)
	}

	if deliveryErr != nil {
		errMsg := deliveryErr.Error()
		log.Error = &errMsg
	}

	if err := d.logRepo.Create(ctx, log); err != nil {
		d.logger.Error("failed to record delivery log",
			zap.String("event_id", event.ID.String()),
			zap.String("config_id", cfg.ID.String()),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) breakerFor(configID uuid.UUID) *gobreaker.CircuitBreaker[*deliveryResult] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cb, ok := d.breakers[configID]; ok {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        "webhook-endpoint-" + configID.String(),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn("webhook endpoint breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	cb := gobreaker.NewCircuitBreaker[*deliveryResult](settings)
	d.breakers[configID] = cb
	return cb
}

func (d *Dispatcher) limiterFor(configID uuid.UUID) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.limiters[configID]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Limit(d.cfg.EndpointRate), d.cfg.EndpointBurst)
	d.limiters[configID] = l
	return l
}
