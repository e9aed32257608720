package repositories

import (
	"github.com/mesalibre/voice-booking-be/internal/models"
	"gorm.io/gorm"
)

type CallLogRepo interface {
	Create(callLog *models.CallLog) error
	GetByBusiness(businessID int, limit int) ([]models.CallLog, error)
}

type callLogRepo struct {
	db *gorm.DB
}

func NewCallLogRepo(db *gorm.DB) CallLogRepo {
	return &callLogRepo{db: db}
}

func (r *callLogRepo) Create(callLog *models.CallLog) error {
	return r.db.Create(callLog).Error
}

func (r *callLogRepo) GetByBusiness(businessID int, limit int) ([]models.CallLog, error) {
	var logs []models.CallLog
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
