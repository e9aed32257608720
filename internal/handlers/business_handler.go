package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/core/auth"
	"github.com/mesalibre/voice-booking-be/internal/models"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
)

type BusinessHandler struct {
	businessRepo repositories.BusinessRepo
}

func NewBusinessHandler(businessRepo repositories.BusinessRepo) *BusinessHandler {
	return &BusinessHandler{businessRepo: businessRepo}
}

type businessRequest struct {
	Name         string          `json:"name"`
	PhoneNumber  string          `json:"phoneNumber"`
	Address      string          `json:"address"`
	OpeningHours json.RawMessage `json:"openingHours"`
}

// List godoc
// @Summary List the authenticated owner's businesses
// @Tags Businesses
// @Produce json
// @Success 200 {array} models.Business
// @Router /businesses [get]
func (h *BusinessHandler) List(c *fiber.Ctx) error {
	businesses, err := h.businessRepo.GetByOwner(auth.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(businesses)
}

// Create godoc
// @Summary Create a business with default agent settings
// @Tags Businesses
// @Accept json
// @Produce json
// @Success 201 {object} models.Business
// @Router /businesses [post]
func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var req businessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name must not be empty",
		})
	}

	business := &models.Business{
		OwnerID:      auth.UserID(c),
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		OpeningHours: string(req.OpeningHours),
	}
	if err := h.businessRepo.Create(business); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(business)
}

// ownedBusiness loads the business and enforces ownership
func (h *BusinessHandler) ownedBusiness(c *fiber.Ctx) (*models.Business, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Business ID is required",
		})
	}

	business, err := h.businessRepo.GetByID(id)
	if err != nil || business.OwnerID != auth.UserID(c) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	}
	return business, nil
}

// Update godoc
// @Summary Update a business
// @Tags Businesses
// @Accept json
// @Produce json
// @Success 200 {object} models.Business
// @Router /businesses/{id} [put]
func (h *BusinessHandler) Update(c *fiber.Ctx) error {
	business, errResp := h.ownedBusiness(c)
	if business == nil {
		return errResp
	}

	var req businessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.Name) != "" {
		business.Name = req.Name
	}
	if req.PhoneNumber != "" {
		business.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		business.Address = req.Address
	}
	if len(req.OpeningHours) > 0 {
		business.OpeningHours = string(req.OpeningHours)
	}

	if err := h.businessRepo.Update(business); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(business)
}

// Delete godoc
// @Summary Delete a business
// @Tags Businesses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /businesses/{id} [delete]
func (h *BusinessHandler) Delete(c *fiber.Ctx) error {
	business, errResp := h.ownedBusiness(c)
	if business == nil {
		return errResp
	}

	if err := h.businessRepo.Delete(business.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetSettings godoc
// @Summary Get the agent settings of a business
// @Tags Businesses
// @Produce json
// @Success 200 {object} models.BusinessSettings
// @Router /businesses/{id}/settings [get]
func (h *BusinessHandler) GetSettings(c *fiber.Ctx) error {
	business, errResp := h.ownedBusiness(c)
	if business == nil {
		return errResp
	}

	settings, err := h.businessRepo.GetSettings(business.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business settings not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(settings)
}

type settingsRequest struct {
	Prompt              *string `json:"prompt"`
	MaxReservationsHour *int    `json:"maxReservationsHour"`
	AITone              *string `json:"aiTone"`
}

// UpdateSettings godoc
// @Summary Update the agent settings of a business
// @Tags Businesses
// @Accept json
// @Produce json
// @Success 200 {object} models.BusinessSettings
// @Router /businesses/{id}/settings [put]
func (h *BusinessHandler) UpdateSettings(c *fiber.Ctx) error {
	business, errResp := h.ownedBusiness(c)
	if business == nil {
		return errResp
	}

	settings, err := h.businessRepo.GetSettings(business.ID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Business settings not found",
		})
	}

	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Prompt != nil {
		settings.Prompt = *req.Prompt
	}
	if req.MaxReservationsHour != nil {
		settings.MaxReservationsHour = *req.MaxReservationsHour
	}
	if req.AITone != nil {
		settings.AITone = *req.AITone
	}

	if err := h.businessRepo.UpdateSettings(settings); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(settings)
}
