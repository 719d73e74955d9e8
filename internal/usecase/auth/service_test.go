package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/cache"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/jwt"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entities.User
	findCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	user, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) finds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findCalls
}

func (r *fakeUserRepo) deactivate(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.IsActive = false
	}
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entities.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.RefreshTokenHash == tokenHash {
			cp := *session
			return &cp, nil
		}
	}
	return nil, entities.ErrSessionNotFound
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.Revoke()
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, session := range r.sessions {
		if session.IsExpired() {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func newTestAuthService(t *testing.T) (Service, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	manager := jwt.NewManager("access-test-secret", "refresh-test-secret", 15*time.Minute, time.Hour)
	svc := NewService(users, sessions, cache.NewMemoryStore(), manager, zap.NewNop())
	return svc, users, sessions
}

func register(t *testing.T, svc Service) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterInput{
		Email:    "consultor@w1.example",
		Name:     "Consultor W1",
		Password: "senha-muito-forte",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return resp
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "consultor@w1.example",
		Name:     "Outro",
		Password: "outra-senha",
	})
	if !errors.Is(err, usecaseErrors.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "consultor@w1.example",
		Password: "senha-errada",
	})
	if !errors.Is(err, usecaseErrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefresh_RotatesRefreshToken(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	first := register(t, svc)

	rotated, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == first.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if sessions.count() != 1 {
		t.Fatalf("rotation must reuse the session row, have %d", sessions.count())
	}

	// The spent token no longer matches any session
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, usecaseErrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for replayed token, got %v", err)
	}

	// The rotated token keeps working
	if _, err := svc.Refresh(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token rejected: %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	resp := register(t, svc)

	if err := svc.Logout(context.Background(), resp.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), resp.RefreshToken); !errors.Is(err, usecaseErrors.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestValidateSession_CachesUser(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	resp := register(t, svc)

	if _, err := svc.ValidateSession(context.Background(), resp.AccessToken); err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	lookups := users.finds()

	// Further validations are served from the cache
	for i := 0; i < 5; i++ {
		if _, err := svc.ValidateSession(context.Background(), resp.AccessToken); err != nil {
			t.Fatalf("ValidateSession (cached): %v", err)
		}
	}
	if got := users.finds(); got != lookups {
		t.Fatalf("expected %d user lookups, got %d", lookups, got)
	}
}

func TestValidateSession_RejectsGarbageToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.ValidateSession(context.Background(), "not-a-jwt"); !errors.Is(err, usecaseErrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestLogoutAll_EvictsCachedUser(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	resp := register(t, svc)

	if _, err := svc.ValidateSession(context.Background(), resp.AccessToken); err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}

	if err := svc.LogoutAll(context.Background(), resp.User.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	// After eviction a deactivated account is seen immediately, not after
	// the cache TTL runs out
	users.deactivate(resp.User.ID)
	if _, err := svc.ValidateSession(context.Background(), resp.AccessToken); !errors.Is(err, usecaseErrors.ErrUserNotActive) {
		t.Fatalf("expected ErrUserNotActive, got %v", err)
	}
}
