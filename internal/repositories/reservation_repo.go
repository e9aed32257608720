package repositories

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mesalibre/voice-booking-be/internal/models"
	"gorm.io/gorm"
)

// ErrBusinessMissing is returned when a reservation references a business
// that does not exist (Postgres foreign key violation).
var ErrBusinessMissing = errors.New("reservation references unknown business")

type ReservationRepo interface {
	Create(reservation *models.Reservation) error
	GetByID(id int) (*models.Reservation, error)
	GetByBusiness(businessID int) ([]models.Reservation, error)
	GetByOwner(ownerID int) ([]models.Reservation, error)
	OwnedBy(reservationID, ownerID int) (*models.Reservation, error)
	Update(reservation *models.Reservation) error
	Delete(id int) error
}

type reservationRepo struct {
	db *gorm.DB
}

func NewReservationRepo(db *gorm.DB) ReservationRepo {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(reservation *models.Reservation) error {
	if err := r.db.Create(reservation).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return ErrBusinessMissing
		}
		return err
	}
	return nil
}

func (r *reservationRepo) GetByID(id int) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) GetByBusiness(businessID int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.Where("business_id = ?", businessID).
		Order("date, time").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepo) GetByOwner(ownerID int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.
		Joins("JOIN businesses ON businesses.id = reservations.business_id").
		Where("businesses.owner_id = ?", ownerID).
		Order("reservations.date, reservations.time").
		Find(&reservations).Error
	return reservations, err
}

// OwnedBy returns the reservation only if it belongs to a business of ownerID
func (r *reservationRepo) OwnedBy(reservationID, ownerID int) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.
		Joins("JOIN businesses ON businesses.id = reservations.business_id").
		Where("reservations.id = ? AND businesses.owner_id = ?", reservationID, ownerID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) Update(reservation *models.Reservation) error {
	return r.db.Save(reservation).Error
}

func (r *reservationRepo) Delete(id int) error {
	return r.db.Delete(&models.Reservation{}, id).Error
}
