package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	authUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/auth"
	billingUsecase "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/billing"
	pkgvalidator "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/validator"
)

// stubAuthService answers Register with a fixed user and embeds the rest
type stubAuthService struct {
	authUsecase.Service
	user *entities.User
}

func (s *stubAuthService) Register(ctx context.Context, input authUsecase.RegisterInput) (*authUsecase.AuthResponse, error) {
	return &authUsecase.AuthResponse{
		User:         s.user,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
	}, nil
}

// stubBillingService records subscribe calls
type stubBillingService struct {
	billingUsecase.Service

	mu       sync.Mutex
	userIDs  []uuid.UUID
	planCode string
}

func (s *stubBillingService) Subscribe(ctx context.Context, userID uuid.UUID, planCode string) (*entities.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userIDs = append(s.userIDs, userID)
	s.planCode = planCode
	return &entities.Subscription{ID: uuid.New(), UserID: userID}, nil
}

func TestRegister_SubscribesDefaultPlan(t *testing.T) {
	user := entities.NewUser("consultor@w1.example", "Consultor W1", "hash")
	authSvc := &stubAuthService{user: user}
	billingSvc := &stubBillingService{}
	h := NewAuthHandler(authSvc, billingSvc, "essencial", zap.NewNop())

	e := echo.New()
	e.Validator = pkgvalidator.New()
	body := `{"email":"consultor@w1.example","name":"Consultor W1","password":"senha-muito-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	billingSvc.mu.Lock()
	defer billingSvc.mu.Unlock()
	if len(billingSvc.userIDs) != 1 || billingSvc.userIDs[0] != user.ID {
		t.Fatalf("default subscription not opened for new user: %v", billingSvc.userIDs)
	}
	if billingSvc.planCode != "essencial" {
		t.Fatalf("expected plan essencial, got %q", billingSvc.planCode)
	}
}

func TestRegister_NoDefaultPlanConfigured(t *testing.T) {
	user := entities.NewUser("consultor@w1.example", "Consultor W1", "hash")
	authSvc := &stubAuthService{user: user}
	billingSvc := &stubBillingService{}
	h := NewAuthHandler(authSvc, billingSvc, "", zap.NewNop())

	e := echo.New()
	e.Validator = pkgvalidator.New()
	body := `{"email":"consultor@w1.example","name":"Consultor W1","password":"senha-muito-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	billingSvc.mu.Lock()
	defer billingSvc.mu.Unlock()
	if len(billingSvc.userIDs) != 0 {
		t.Fatalf("no subscription should be opened without a default plan, got %d", len(billingSvc.userIDs))
	}
}
