package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingStatus represents the current status of a meeting
type MeetingStatus string

const (
	MeetingStatusAgendada  MeetingStatus = "agendada"
	MeetingStatusRealizada MeetingStatus = "realizada"
	MeetingStatusCancelada MeetingStatus = "cancelada"
)

// IsValid checks if the meeting status is valid
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusAgendada, MeetingStatusRealizada, MeetingStatusCancelada:
		return true
	}
	return false
}

// Meeting type codes used by the practice
const (
	MeetingTypeOnboarding     = "r1_onboarding"
	MeetingTypeDiagnostico    = "r2_diagnostico"
	MeetingTypeApresentacao   = "r3_apresentacao"
	MeetingTypeAcompanhamento = "acompanhamento"
)

// Meeting represents a consultant/client meeting
type Meeting struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID  uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	ClientID uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index"`
	Client   *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`

	TypeCode string        `json:"type_code" gorm:"type:varchar(50);not null;index"`
	Title    string        `json:"title" gorm:"type:varchar(255);not null"`
	Status   MeetingStatus `json:"status" gorm:"type:varchar(20);not null;default:'agendada';index"`

	ScheduledAt     *time.Time `json:"scheduled_at,omitempty" gorm:"index"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`

	Transcript   *string `json:"transcript,omitempty" gorm:"type:text"`
	RecordingURL *string `json:"recording_url,omitempty" gorm:"type:text"`

	// AI-derived summary, decisions and risk signals
	Summary datatypes.JSON `json:"summary,omitempty" gorm:"type:jsonb"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewMeeting creates a new meeting
func NewMeeting(ownerID, clientID uuid.UUID, typeCode, title string) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		ClientID:  clientID,
		TypeCode:  typeCode,
		Title:     title,
		Status:    MeetingStatusAgendada,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasTranscript reports whether a transcript is attached
func (m *Meeting) HasTranscript() bool {
	return m.Transcript != nil && *m.Transcript != ""
}

// HasSummary reports whether AI analysis has been stored
func (m *Meeting) HasSummary() bool {
	return len(m.Summary) > 0
}

// IsOwnedBy checks tenant ownership
func (m *Meeting) IsOwnedBy(userID uuid.UUID) bool {
	return m.OwnerID == userID
}

// MarkRealizada marks the meeting as held
func (m *Meeting) MarkRealizada() {
	m.Status = MeetingStatusRealizada
	m.UpdatedAt = time.Now()
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}
