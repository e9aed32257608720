package repositories

import (
	"time"

	"github.com/mesalibre/voice-booking-be/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationRepo interface {
	Create(conversation *models.Conversation) error
	GetByID(id int) (*models.Conversation, error)
	UpdateStatus(id int, status string) (*models.Conversation, error)
	SetPartialData(id int, data datatypes.JSON) error
	ClearPartialData(id int) error
	LinkReservation(id int, reservationID int) error
	AppendMessage(message *models.ConversationMessage) error
	RecentMessages(conversationID int, limit int) ([]models.ConversationMessage, error)
	CancelStale(idleFor time.Duration) (int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(conversation *models.Conversation) error {
	if conversation.Status == "" {
		conversation.Status = models.ConversationStatusActive
	}
	return r.db.Create(conversation).Error
}

func (r *conversationRepo) GetByID(id int) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.First(&conversation, id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// UpdateStatus force-sets the status. Leaving the active state always discards
// any partial reservation data so it cannot leak into a later conversation.
func (r *conversationRepo) UpdateStatus(id int, status string) (*models.Conversation, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status != models.ConversationStatusActive {
		updates["reservation_data"] = nil
	}

	tx := r.db.Model(&models.Conversation{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}

func (r *conversationRepo) SetPartialData(id int, data datatypes.JSON) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reservation_data": data,
			"updated_at":       time.Now(),
		}).Error
}

func (r *conversationRepo) ClearPartialData(id int) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reservation_data": nil,
			"updated_at":       time.Now(),
		}).Error
}

// LinkReservation attaches the committed reservation and closes the conversation
func (r *conversationRepo) LinkReservation(id int, reservationID int) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reservation_id":   reservationID,
			"status":           models.ConversationStatusCompleted,
			"reservation_data": nil,
			"updated_at":       time.Now(),
		}).Error
}

func (r *conversationRepo) AppendMessage(message *models.ConversationMessage) error {
	return r.db.Create(message).Error
}

// RecentMessages returns the newest messages in chronological order.
// The query fetches newest-first to apply the limit, then reverses.
func (r *conversationRepo) RecentMessages(conversationID int, limit int) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CancelStale cancels active conversations idle for longer than idleFor
func (r *conversationRepo) CancelStale(idleFor time.Duration) (int64, error) {
	cutoff := time.Now().Add(-idleFor)
	tx := r.db.Model(&models.Conversation{}).
		Where("status = ? AND updated_at < ?", models.ConversationStatusActive, cutoff).
		Updates(map[string]interface{}{
			"status":           models.ConversationStatusCancelled,
			"reservation_data": nil,
			"updated_at":       time.Now(),
		})
	return tx.RowsAffected, tx.Error
}
