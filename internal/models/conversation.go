package models

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation statuses. Active is the only non-terminal state:
// once completed or cancelled a conversation is never reused.
const (
	ConversationStatusActive    = "active"
	ConversationStatusCompleted = "completed"
	ConversationStatusCancelled = "cancelled"
)

// Message roles
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Conversation represents one multi-turn exchange with a caller
type Conversation struct {
	ID              int            `gorm:"primaryKey;autoIncrement" json:"id"`
	BusinessID      int            `gorm:"not null;index" json:"business_id"`
	CallID          string         `gorm:"type:varchar(255)" json:"call_id"` // Telnyx call id when it came from a call
	Status          string         `gorm:"type:varchar(50);not null;default:'active'" json:"status"`
	ReservationID   *int           `json:"reservation_id"`                           // set once, at commit time
	ReservationData datatypes.JSON `gorm:"type:jsonb" json:"reservation_data"`       // partial slot set collected so far
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Business    Business               `gorm:"foreignKey:BusinessID;references:ID" json:"-"`
	Reservation *Reservation           `gorm:"foreignKey:ReservationID;references:ID" json:"-"`
	Messages    []ConversationMessage  `gorm:"foreignKey:ConversationID;references:ID" json:"-"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "conversations"
}

// IsTerminal reports whether the conversation can no longer accept turns
func (c *Conversation) IsTerminal() bool {
	return c.Status != ConversationStatusActive
}

// ConversationMessage is one turn's utterance, append-only
type ConversationMessage struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int       `gorm:"not null;index" json:"conversation_id"`
	Role           string    `gorm:"type:varchar(20);not null" json:"role"` // user, assistant
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (ConversationMessage) TableName() string {
	return "conversation_messages"
}

// CallLog keeps an audit record of inbound phone calls
type CallLog struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	BusinessID   *int      `json:"business_id"`
	CallID       string    `gorm:"type:varchar(255)" json:"call_id"`
	Transcript   string    `gorm:"type:text" json:"transcript"`
	AISummary    string    `gorm:"type:text" json:"ai_summary"`
	CallDuration int       `json:"call_duration"` // seconds
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (CallLog) TableName() string {
	return "call_logs"
}
