package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User represents a consultant account
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Role     UserRole  `json:"role" gorm:"type:varchar(50);default:'consultor';not null"`
	IsActive bool      `json:"is_active" gorm:"default:true;not null"`

	PasswordHash string `json:"-" gorm:"column:password_hash;type:text;not null"` // Never expose in JSON

	// Profile
	AvatarURL *string `json:"avatar_url,omitempty" gorm:"type:varchar(500)"`
	Phone     *string `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Timezone  string  `json:"timezone" gorm:"type:varchar(50);default:'America/Sao_Paulo';not null"`
	Language  string  `json:"language" gorm:"type:varchar(10);default:'pt-BR';not null"`

	// Status
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamp"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty" gorm:"type:timestamp"`

	// Preferences (stored as JSONB in PostgreSQL)
	NotificationPreferences datatypes.JSON `json:"notification_preferences" gorm:"type:jsonb;default:'{}'"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserRole defines user roles
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleConsultor UserRole = "consultor"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleConsultor:
		return true
	}
	return false
}

// NewUser creates a new user with default values
func NewUser(email, name, passwordHash string) *User {
	now := time.Now()

	notifPrefs, _ := json.Marshal(map[string]interface{}{
		"email":   true,
		"resumos": true,
	})

	return &User{
		ID:                      uuid.New(),
		Email:                   email,
		Name:                    name,
		Role:                    RoleConsultor,
		IsActive:                true,
		PasswordHash:            passwordHash,
		Timezone:                "America/Sao_Paulo",
		Language:                "pt-BR",
		NotificationPreferences: notifPrefs,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// UpdateLastLogin updates the last login timestamp
func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastActiveAt = &now
	u.UpdatedAt = now
}

// IsAdmin checks if user is admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrInvalidName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// PublicUser returns a user with sensitive fields removed
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to PublicUser
func (u *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
