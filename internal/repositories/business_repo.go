package repositories

import (
	"github.com/mesalibre/voice-booking-be/internal/models"
	"gorm.io/gorm"
)

type BusinessRepo interface {
	Create(business *models.Business) error
	GetByID(id int) (*models.Business, error)
	GetByOwner(ownerID int) ([]models.Business, error)
	Update(business *models.Business) error
	Delete(id int) error

	GetSettings(businessID int) (*models.BusinessSettings, error)
	CreateSettings(settings *models.BusinessSettings) error
	UpdateSettings(settings *models.BusinessSettings) error
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepo {
	return &businessRepo{db: db}
}

// Create inserts the business plus a default settings row in one transaction,
// so every business is immediately usable by the voice agent.
func (r *businessRepo) Create(business *models.Business) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(business).Error; err != nil {
			return err
		}
		settings := &models.BusinessSettings{
			BusinessID:          business.ID,
			Prompt:              models.DefaultPrompt,
			MaxReservationsHour: 10,
			AITone:              "professional",
		}
		return tx.Create(settings).Error
	})
}

func (r *businessRepo) GetByID(id int) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) GetByOwner(ownerID int) ([]models.Business, error) {
	var businesses []models.Business
	err := r.db.Where("owner_id = ?", ownerID).Find(&businesses).Error
	return businesses, err
}

func (r *businessRepo) Update(business *models.Business) error {
	return r.db.Save(business).Error
}

func (r *businessRepo) Delete(id int) error {
	return r.db.Delete(&models.Business{}, id).Error
}

func (r *businessRepo) GetSettings(businessID int) (*models.BusinessSettings, error) {
	var settings models.BusinessSettings
	if err := r.db.Where("business_id = ?", businessID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *businessRepo) CreateSettings(settings *models.BusinessSettings) error {
	return r.db.Create(settings).Error
}

func (r *businessRepo) UpdateSettings(settings *models.BusinessSettings) error {
	return r.db.Save(settings).Error
}
