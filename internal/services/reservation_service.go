package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/core/agent"
	"github.com/mesalibre/voice-booking-be/internal/models"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
	"github.com/mesalibre/voice-booking-be/internal/shared/utils"
)

var (
	// ErrValidation wraps all input validation failures (mapped to 400)
	ErrValidation = errors.New("validation failed")
	// ErrBusinessNotFound means the referenced business does not exist
	ErrBusinessNotFound = errors.New("business not found")
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// CreateReservationInput is the committer contract: a complete slot set plus
// routing metadata.
type CreateReservationInput struct {
	BusinessID     int     `json:"businessId"`
	CustomerName   string  `json:"customerName"`
	CustomerPhone  string  `json:"customerPhone"`
	PartySize      int     `json:"partySize"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Status         string  `json:"status"`
	Source         string  `json:"source"`
	ConversationID *int    `json:"conversationId"`
}

// Validate checks field-level constraints and returns the first violation
func (in *CreateReservationInput) Validate() error {
	if in.BusinessID == 0 {
		return fmt.Errorf("%w: businessId is required", ErrValidation)
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return fmt.Errorf("%w: customerName must not be empty", ErrValidation)
	}
	if in.PartySize <= 0 {
		return fmt.Errorf("%w: partySize must be positive", ErrValidation)
	}
	if !dateRe.MatchString(in.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if !timeRe.MatchString(in.Time) {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	return nil
}

// ReservationService persists reservations and links them back to their
// originating conversations. It is the commit boundary of the voice agent.
type ReservationService struct {
	reservationRepo repositories.ReservationRepo
	businessRepo    repositories.BusinessRepo
	convRepo        repositories.ConversationRepo
}

func NewReservationService(
	reservationRepo repositories.ReservationRepo,
	businessRepo repositories.BusinessRepo,
	convRepo repositories.ConversationRepo,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		businessRepo:    businessRepo,
		convRepo:        convRepo,
	}
}

// Create validates and persists one reservation. Phone-sourced reservations
// only require the business to exist; caller identity is unknowable on a
// voice call. If a conversation id is supplied, the conversation is linked
// and marked completed as a side effect.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	if in.Status == "" {
		in.Status = models.ReservationStatusPending
	}
	if in.Source == "" {
		in.Source = models.ReservationSourcePhone
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.businessRepo.GetByID(in.BusinessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("load business: %w", err)
	}

	reservation := &models.Reservation{
		BusinessID:       in.BusinessID,
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		PartySize:        in.PartySize,
		Date:             in.Date,
		Time:             in.Time,
		Status:           in.Status,
		Source:           in.Source,
		ConfirmationCode: newConfirmationCode(),
	}

	if err := s.reservationRepo.Create(reservation); err != nil {
		if errors.Is(err, repositories.ErrBusinessMissing) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	if in.ConversationID != nil {
		if err := s.convRepo.LinkReservation(*in.ConversationID, reservation.ID); err != nil {
			// The reservation exists; a broken link is an audit problem,
			// not a reason to fail the booking.
			utils.LogError("failed to link reservation to conversation", err, map[string]interface{}{
				"reservation_id":  reservation.ID,
				"conversation_id": *in.ConversationID,
			})
		}
	}

	return reservation, nil
}

// Commit implements agent.Committer for phone conversations
func (s *ReservationService) Commit(ctx context.Context, businessID, conversationID int, draft agent.ReservationDraft) (*models.Reservation, error) {
	return s.Create(ctx, CreateReservationInput{
		BusinessID:     businessID,
		CustomerName:   draft.CustomerName,
		CustomerPhone:  draft.CustomerPhone,
		PartySize:      draft.PartySize,
		Date:           draft.Date,
		Time:           draft.Time,
		Status:         models.ReservationStatusPending,
		Source:         models.ReservationSourcePhone,
		ConversationID: &conversationID,
	})
}

func newConfirmationCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
