package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/cache"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/jwt"
)

// userCacheTTL bounds how long a deactivated account can keep passing
// token validation.
const userCacheTTL = time.Minute

// Service defines authentication operations
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	ValidateSession(ctx context.Context, accessToken string) (*entities.User, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// RegisterInput carries the fields needed to create an account
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput carries credentials plus optional device info
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User         *entities.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type authService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	store       cache.Store
	jwtManager  *jwt.Manager
	logger      *zap.Logger
}

// NewService constructs the authentication service
func NewService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	store cache.Store,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) Service {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		store:       store,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// Register creates an account and opens the first session
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && err != entities.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, usecaseErrors.ErrEmailAlreadyUsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.NewUser(input.Email, input.Name, string(hash))
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return s.openSession(ctx, user, "", "")
}

// Login verifies credentials and opens a session
func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, usecaseErrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, usecaseErrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, usecaseErrors.ErrUserNotActive
	}

	user.UpdateLastLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to update last login",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	return s.openSession(ctx, user, input.IPAddress, input.UserAgent)
}

// Refresh rotates both tokens of the session. The presented refresh token
// stops matching any stored hash, so a replay of it fails.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, usecaseErrors.ErrTokenInvalid
	}

	session, err := s.findSessionByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !session.IsValid() {
		return nil, usecaseErrors.ErrSessionExpired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, usecaseErrors.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, usecaseErrors.ErrUserNotActive
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	newHash, err := s.jwtManager.HashToken(newRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	session.RefreshTokenHash = newHash
	session.ExpiresAt = time.Now().Add(s.jwtManager.GetRefreshExpiry())
	session.UpdateLastUsed()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}

// Logout revokes the session of the refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.findSessionByToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	session.Revoke()
	return s.sessionRepo.Update(ctx, session)
}

// LogoutAll revokes every active session of the user
func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	s.evictCachedUser(ctx, userID)
	return nil
}

// ValidateSession resolves the user behind an access token. The user record
// is cached so the hot middleware path does not hit the database on every
// request.
func (s *authService) ValidateSession(ctx context.Context, accessToken string) (*entities.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, usecaseErrors.ErrTokenInvalid
	}

	if user := s.cachedUser(ctx, claims.UserID); user != nil {
		if !user.IsActive {
			return nil, usecaseErrors.ErrUserNotActive
		}
		return user, nil
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, usecaseErrors.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, usecaseErrors.ErrUserNotActive
	}

	s.cacheUser(ctx, user)
	return user, nil
}

// CleanupExpiredSessions removes sessions past their expiry
func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

func (s *authService) openSession(ctx context.Context, user *entities.User, ip, userAgent string) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Only the hash of the refresh token hits the database
	tokenHash, err := s.jwtManager.HashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	session := entities.NewSession(user.ID, tokenHash, time.Now().Add(s.jwtManager.GetRefreshExpiry()))
	if ip != "" || userAgent != "" {
		session.WithDeviceInfo(ip, userAgent)
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}

func userCacheKey(userID uuid.UUID) string {
	return "auth:user:" + userID.String()
}

// cachedUser returns the cached user record or nil on any miss or error
func (s *authService) cachedUser(ctx context.Context, userID uuid.UUID) *entities.User {
	if s.store == nil {
		return nil
	}
	raw, ok, err := s.store.Get(ctx, userCacheKey(userID))
	if err != nil || !ok {
		return nil
	}
	var user entities.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

func (s *authService) cacheUser(ctx context.Context, user *entities.User) {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, userCacheKey(user.ID), string(raw), userCacheTTL); err != nil {
		s.logger.Warn("failed to cache user record",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *authService) evictCachedUser(ctx context.Context, userID uuid.UUID) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, userCacheKey(userID)); err != nil {
		s.logger.Warn("failed to evict cached user record",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func (s *authService) findSessionByToken(ctx context.Context, refreshToken string) (*entities.Session, error) {
	tokenHash, err := s.jwtManager.HashToken(refreshToken)
	if err != nil {
		return nil, usecaseErrors.ErrTokenInvalid
	}

	session, err := s.sessionRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if err == entities.ErrSessionNotFound {
			return nil, usecaseErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}
