package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/models"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
)

type ConversationHandler struct {
	convRepo repositories.ConversationRepo
}

func NewConversationHandler(convRepo repositories.ConversationRepo) *ConversationHandler {
	return &ConversationHandler{convRepo: convRepo}
}

type updateConversationRequest struct {
	ConversationID int    `json:"conversationId"`
	Status         string `json:"status"`
}

// Update godoc
// @Summary Force-set a conversation status
// @Description Used by the UI to end or cancel a conversation client-side
// @Tags Conversations
// @Accept json
// @Produce json
// @Success 200 {object} models.Conversation
// @Router /conversations [put]
func (h *ConversationHandler) Update(c *fiber.Ctx) error {
	var req updateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.ConversationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "conversationId is required",
		})
	}

	switch req.Status {
	case models.ConversationStatusActive,
		models.ConversationStatusCompleted,
		models.ConversationStatusCancelled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be one of: active, completed, cancelled",
		})
	}

	updated, err := h.convRepo.UpdateStatus(req.ConversationID, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(updated)
}
