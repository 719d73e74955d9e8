package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClientStatus represents the lifecycle status of a client
type ClientStatus string

const (
	ClientStatusAtivo     ClientStatus = "ativo"
	ClientStatusInativo   ClientStatus = "inativo"
	ClientStatusProspecto ClientStatus = "prospecto"
)

// IsValid checks if the client status is valid
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusAtivo, ClientStatusInativo, ClientStatusProspecto:
		return true
	}
	return false
}

// Client represents a client managed by a consultant
type Client struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Owner   *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	Name  string  `json:"name" gorm:"type:varchar(255);not null"`
	Email *string `json:"email,omitempty" gorm:"type:varchar(255);index"`
	Phone *string `json:"phone,omitempty" gorm:"type:varchar(30)"`

	Status      ClientStatus `json:"status" gorm:"type:varchar(20);not null;default:'prospecto';index"`
	RiskScore   int          `json:"risk_score" gorm:"default:0;check:risk_score >= 0 AND risk_score <= 100"`
	RiskProfile *string      `json:"risk_profile,omitempty" gorm:"type:varchar(50)"`
	Notes       *string      `json:"notes,omitempty" gorm:"type:text"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewClient creates a new client owned by a consultant
func NewClient(ownerID uuid.UUID, name string) *Client {
	now := time.Now()
	return &Client{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Status:    ClientStatusProspecto,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates client data
func (c *Client) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	if !c.Status.IsValid() {
		return ErrInvalidClientStatus
	}
	if c.RiskScore < 0 || c.RiskScore > 100 {
		return ErrInvalidRiskScore
	}
	return nil
}

// IsOwnedBy checks tenant ownership
func (c *Client) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == userID
}

// TableName specifies the table name for GORM
func (Client) TableName() string {
	return "clients"
}
