package models

import "time"

// Business represents a restaurant (or similar) that receives bookings
type Business struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID      int       `gorm:"not null;index" json:"owner_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	PhoneNumber  string    `gorm:"type:varchar(20)" json:"phone_number"`
	Address      string    `gorm:"type:text" json:"address"`
	OpeningHours string    `gorm:"type:text" json:"opening_hours"` // JSON stored as text
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Owner    User              `gorm:"foreignKey:OwnerID;references:ID" json:"-"`
	Settings *BusinessSettings `gorm:"foreignKey:BusinessID;references:ID" json:"settings,omitempty"`
}

// TableName specifies the table name
func (Business) TableName() string {
	return "businesses"
}

// BusinessSettings holds the per-business AI agent configuration
type BusinessSettings struct {
	ID                  int       `gorm:"primaryKey;autoIncrement" json:"id"`
	BusinessID          int       `gorm:"not null;uniqueIndex" json:"business_id"`
	Prompt              string    `gorm:"type:text" json:"prompt"`
	MaxReservationsHour int       `gorm:"default:10" json:"max_reservations_hour"`
	AITone              string    `gorm:"type:varchar(50);default:'professional'" json:"ai_tone"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (BusinessSettings) TableName() string {
	return "business_settings"
}

// DefaultPrompt is applied to every new business until the owner customizes it
const DefaultPrompt = "Eres un asistente de voz amigable para un restaurante. " +
	"Ayuda a los clientes a hacer reservas de manera profesional y cordial."
