package models

import "time"

// Reservation statuses
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// Reservation sources
const (
	ReservationSourcePhone = "phone"
	ReservationSourceWeb   = "web"
)

// Reservation represents a committed booking
type Reservation struct {
	ID               int       `gorm:"primaryKey;autoIncrement" json:"id"`
	BusinessID       int       `gorm:"not null;index" json:"business_id"`
	CustomerName     string    `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone    string    `gorm:"type:varchar(20)" json:"customer_phone"`
	PartySize        int       `json:"party_size"`
	Date             string    `gorm:"type:varchar(20)" json:"date"` // YYYY-MM-DD
	Time             string    `gorm:"type:varchar(10)" json:"time"` // HH:MM
	Status           string    `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	Source           string    `gorm:"type:varchar(50);default:'phone'" json:"source"`
	ConfirmationCode string    `gorm:"type:varchar(50);index" json:"confirmation_code"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationship
	Business Business `gorm:"foreignKey:BusinessID;references:ID" json:"-"`
}

// TableName specifies the table name
func (Reservation) TableName() string {
	return "reservations"
}
