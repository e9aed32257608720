package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mesalibre/voice-booking-be/internal/core/agent"
	"github.com/mesalibre/voice-booking-be/internal/core/llm"
	"github.com/mesalibre/voice-booking-be/internal/shared/utils"
)

// AIHandler exposes the voice agent endpoints: one conversational turn and
// audio transcription.
type AIHandler struct {
	engine     *agent.Engine
	llmService *llm.Service
}

func NewAIHandler(engine *agent.Engine, llmService *llm.Service) *AIHandler {
	return &AIHandler{engine: engine, llmService: llmService}
}

type generateRequest struct {
	Text           string `json:"text"`
	BusinessID     int    `json:"businessId"`
	ConversationID *int   `json:"conversationId"` // null or absent means new conversation
}

// Generate godoc
// @Summary Process one conversational turn
// @Description Classifies the utterance, accumulates reservation slots and replies
// @Tags AI
// @Accept json
// @Produce json
// @Success 200 {object} agent.TurnResult
// @Router /ai/generate [post]
func (h *AIHandler) Generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if len(req.Text) < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text must not be empty",
		})
	}
	if req.BusinessID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "businessId is required",
		})
	}

	result, err := h.engine.HandleTurn(c.Context(), req.BusinessID, req.ConversationID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrBusinessNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business not found",
			})
		case errors.Is(err, agent.ErrSettingsNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business settings not found or prompt not configured",
			})
		default:
			utils.LogError("turn failed", err, map[string]interface{}{
				"business_id": req.BusinessID,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to generate AI response",
				"details": err.Error(),
			})
		}
	}

	return c.JSON(result)
}

// Transcribe godoc
// @Summary Transcribe one audio turn
// @Tags AI
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ai/transcribe [post]
func (h *AIHandler) Transcribe(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No audio file provided",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to transcribe audio",
			"details": err.Error(),
		})
	}
	defer file.Close()

	text, err := h.llmService.Transcribe(c.Context(), fileHeader.Filename, file, "es")
	if err != nil {
		utils.LogError("transcription failed", err, map[string]interface{}{
			"filename": fileHeader.Filename,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to transcribe audio",
			"details": err.Error(),
		})
	}

	var businessID *int
	if raw := c.FormValue("businessId"); raw != "" {
		if id, convErr := strconv.Atoi(raw); convErr == nil {
			businessID = &id
		}
	}

	return c.JSON(fiber.Map{
		"text":       text,
		"businessId": businessID,
	})
}
