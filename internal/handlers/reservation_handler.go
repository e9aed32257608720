package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/core/auth"
	"github.com/mesalibre/voice-booking-be/internal/models"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
	"github.com/mesalibre/voice-booking-be/internal/services"
)

type ReservationHandler struct {
	reservationRepo    repositories.ReservationRepo
	businessRepo       repositories.BusinessRepo
	reservationService *services.ReservationService
	jwtService         *auth.JWTService
}

func NewReservationHandler(
	reservationRepo repositories.ReservationRepo,
	businessRepo repositories.BusinessRepo,
	reservationService *services.ReservationService,
	jwtService *auth.JWTService,
) *ReservationHandler {
	return &ReservationHandler{
		reservationRepo:    reservationRepo,
		businessRepo:       businessRepo,
		reservationService: reservationService,
		jwtService:         jwtService,
	}
}

// authedUserID resolves the bearer token when a route allows both public and
// authenticated access. Returns 0 when no valid token is present.
func (h *ReservationHandler) authedUserID(c *fiber.Ctx) int {
	header := c.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0
	}
	claims, err := h.jwtService.ValidateToken(parts[1])
	if err != nil {
		return 0
	}
	return claims.UserID
}

// List godoc
// @Summary List reservations
// @Description With businessId: public per-business list. Without: all reservations of the authenticated owner.
// @Tags Reservations
// @Produce json
// @Success 200 {array} models.Reservation
// @Router /reservations [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	if raw := c.Query("businessId"); raw != "" {
		businessID, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "businessId must be an integer",
			})
		}
		reservations, err := h.reservationRepo.GetByBusiness(businessID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		return c.JSON(reservations)
	}

	userID := h.authedUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	reservations, err := h.reservationRepo.GetByOwner(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(reservations)
}

// Create godoc
// @Summary Create a reservation
// @Description Phone-sourced reservations are unauthenticated; other sources require an owning user.
// @Tags Reservations
// @Accept json
// @Produce json
// @Success 201 {object} models.Reservation
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in services.CreateReservationInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if in.Source == "" {
		in.Source = models.ReservationSourcePhone
	}

	// Non-phone sources come from the dashboard: verify ownership first
	if in.Source != models.ReservationSourcePhone {
		userID := h.authedUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		business, err := h.businessRepo.GetByID(in.BusinessID)
		if err != nil || business.OwnerID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Business not found or unauthorized",
			})
		}
	}

	reservation, err := h.reservationService.Create(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, services.ErrBusinessNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(reservation)
}

type updateReservationRequest struct {
	ID            int     `json:"id"`
	CustomerName  *string `json:"customerName"`
	CustomerPhone *string `json:"customerPhone"`
	PartySize     *int    `json:"partySize"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	Status        *string `json:"status"`
}

// Update godoc
// @Summary Update a reservation (owner only)
// @Tags Reservations
// @Accept json
// @Produce json
// @Success 200 {object} models.Reservation
// @Router /reservations [put]
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	var req updateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Reservation ID is required",
		})
	}

	reservation, err := h.reservationRepo.OwnedBy(req.ID, userID)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	}

	if req.CustomerName != nil {
		if strings.TrimSpace(*req.CustomerName) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "customerName must not be empty",
			})
		}
		reservation.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		reservation.CustomerPhone = *req.CustomerPhone
	}
	if req.PartySize != nil {
		if *req.PartySize <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "partySize must be positive",
			})
		}
		reservation.PartySize = *req.PartySize
	}
	if req.Date != nil {
		reservation.Date = *req.Date
	}
	if req.Time != nil {
		reservation.Time = *req.Time
	}
	if req.Status != nil {
		reservation.Status = *req.Status
	}

	if err := h.reservationRepo.Update(reservation); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(reservation)
}

// Delete godoc
// @Summary Delete a reservation (owner only)
// @Tags Reservations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /reservations [delete]
func (h *ReservationHandler) Delete(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Reservation ID is required",
		})
	}

	if _, err := h.reservationRepo.OwnedBy(id, userID); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	}

	if err := h.reservationRepo.Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// QRCode godoc
// @Summary Confirmation QR code for a reservation
// @Tags Reservations
// @Produce png
// @Router /reservations/{id}/qr [get]
func (h *ReservationHandler) QRCode(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Reservation ID is required",
		})
	}

	reservation, err := h.reservationRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Reservation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	payload := reservation.ConfirmationCode + "|" + reservation.Date + " " + reservation.Time
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render QR code",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
