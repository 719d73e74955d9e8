package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
)

type fakePlanRepo struct {
	plans map[string]*entities.Plan
}

func (r *fakePlanRepo) Create(_ context.Context, plan *entities.Plan) error {
	r.plans[plan.Code] = plan
	return nil
}

func (r *fakePlanRepo) FindByCode(_ context.Context, code string) (*entities.Plan, error) {
	return r.plans[code], nil
}

func (r *fakePlanRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Plan, error) {
	for _, plan := range r.plans {
		if plan.ID == id {
			return plan, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*entities.Plan, error) {
	var out []*entities.Plan
	for _, plan := range r.plans {
		if plan.IsActive {
			out = append(out, plan)
		}
	}
	return out, nil
}

type fakeSubRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*entities.Subscription
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: make(map[uuid.UUID]*entities.Subscription)}
}

func (r *fakeSubRepo) Create(_ context.Context, sub *entities.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakeSubRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) (*entities.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Status == entities.SubscriptionStatusAtiva {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSubRepo) Update(_ context.Context, sub *entities.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakeSubRepo) ConsumeCredit(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Status == entities.SubscriptionStatusAtiva && sub.CreditsRemaining > 0 {
			sub.CreditsRemaining--
			sub.CreditsUsed++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubRepo) FindDueForRollover(_ context.Context, now time.Time) ([]*entities.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Subscription
	for _, sub := range r.subs {
		if sub.Status == entities.SubscriptionStatusAtiva && sub.PeriodEnd.Before(now) {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func newTestBillingService(plans ...*entities.Plan) (Service, *fakeSubRepo) {
	planRepo := &fakePlanRepo{plans: make(map[string]*entities.Plan)}
	for _, plan := range plans {
		planRepo.plans[plan.Code] = plan
	}
	subRepo := newFakeSubRepo()
	return NewService(planRepo, subRepo, zap.NewNop()), subRepo
}

func testPlan(code string, credits int) *entities.Plan {
	return &entities.Plan{
		ID:             uuid.New(),
		Code:           code,
		Name:           "Plano " + code,
		MonthlyCredits: credits,
		PriceCents:     9900,
		IsActive:       true,
	}
}

func TestBillingService_Subscribe(t *testing.T) {
	plan := testPlan("essencial", 10)
	svc, _ := newTestBillingService(plan)
	userID := uuid.New()

	sub, err := svc.Subscribe(context.Background(), userID, "essencial")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.Status != entities.SubscriptionStatusAtiva {
		t.Fatalf("status = %s, want ativa", sub.Status)
	}
	if sub.CreditsRemaining != 10 {
		t.Fatalf("credits_remaining = %d, want 10", sub.CreditsRemaining)
	}
	if !sub.PeriodEnd.After(sub.PeriodStart) {
		t.Fatal("period end should be after period start")
	}
}

func TestBillingService_Subscribe_UnknownPlan(t *testing.T) {
	svc, _ := newTestBillingService()
	if _, err := svc.Subscribe(context.Background(), uuid.New(), "inexistente"); err != usecaseErrors.ErrPlanNotFound {
		t.Fatalf("got %v, want ErrPlanNotFound", err)
	}
}

func TestBillingService_Subscribe_InactivePlan(t *testing.T) {
	plan := testPlan("legado", 5)
	plan.IsActive = false
	svc, _ := newTestBillingService(plan)

	if _, err := svc.Subscribe(context.Background(), uuid.New(), "legado"); err != usecaseErrors.ErrPlanInactive {
		t.Fatalf("got %v, want ErrPlanInactive", err)
	}
}

func TestBillingService_Subscribe_Twice(t *testing.T) {
	svc, _ := newTestBillingService(testPlan("profissional", 50))
	userID := uuid.New()

	if _, err := svc.Subscribe(context.Background(), userID, "profissional"); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if _, err := svc.Subscribe(context.Background(), userID, "profissional"); err != usecaseErrors.ErrAlreadySubscribed {
		t.Fatalf("second subscribe: got %v, want ErrAlreadySubscribed", err)
	}
}

func TestBillingService_Subscribe_SwitchesPlan(t *testing.T) {
	essencial := testPlan("essencial", 10)
	premium := testPlan("premium", 200)
	svc, subRepo := newTestBillingService(essencial, premium)
	userID := uuid.New()

	if _, err := svc.Subscribe(context.Background(), userID, "essencial"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	switched, err := svc.Subscribe(context.Background(), userID, "premium")
	if err != nil {
		t.Fatalf("switch plan: %v", err)
	}
	if switched.PlanID != premium.ID {
		t.Fatal("switched subscription should point at the new plan")
	}
	if switched.CreditsRemaining != 200 {
		t.Fatalf("credits_remaining = %d, want 200", switched.CreditsRemaining)
	}

	// Only the new subscription resolves as active
	active, _ := subRepo.FindActiveByUser(context.Background(), userID)
	if active == nil || active.ID != switched.ID {
		t.Fatal("previous subscription should be closed on switch")
	}
}

func TestBillingService_Cancel(t *testing.T) {
	svc, _ := newTestBillingService(testPlan("essencial", 10))
	userID := uuid.New()

	if _, err := svc.Subscribe(context.Background(), userID, "essencial"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), userID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != entities.SubscriptionStatusCancelada {
		t.Fatalf("status = %s, want cancelada", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("cancelled_at should be set")
	}

	// A cancelled subscription no longer resolves as active
	if _, err := svc.GetSubscription(context.Background(), userID); err != usecaseErrors.ErrSubscriptionNotFound {
		t.Fatalf("got %v, want ErrSubscriptionNotFound", err)
	}
}

func TestBillingService_ConsumeCredit(t *testing.T) {
	svc, subRepo := newTestBillingService(testPlan("essencial", 2))
	userID := uuid.New()

	if _, err := svc.Subscribe(context.Background(), userID, "essencial"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := svc.ConsumeCredit(context.Background(), userID); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if err := svc.ConsumeCredit(context.Background(), userID); err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if err := svc.ConsumeCredit(context.Background(), userID); err != usecaseErrors.ErrCreditsExhausted {
		t.Fatalf("third credit: got %v, want ErrCreditsExhausted", err)
	}

	sub, _ := subRepo.FindActiveByUser(context.Background(), userID)
	if sub.CreditsUsed != 2 || sub.CreditsRemaining != 0 {
		t.Fatalf("credits used=%d remaining=%d, want 2/0", sub.CreditsUsed, sub.CreditsRemaining)
	}
}

func TestBillingService_ConsumeCredit_NoSubscription(t *testing.T) {
	svc, _ := newTestBillingService(testPlan("essencial", 10))
	if err := svc.ConsumeCredit(context.Background(), uuid.New()); err != usecaseErrors.ErrSubscriptionNotFound {
		t.Fatalf("got %v, want ErrSubscriptionNotFound", err)
	}
}
