package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mesalibre/voice-booking-be/internal/core/llm"
)

type HealthHandler struct {
	llmService *llm.Service
}

func NewHealthHandler(llmService *llm.Service) *HealthHandler {
	return &HealthHandler{llmService: llmService}
}

// GetHealth godoc
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"llm_provider": h.llmService.GetProviderName(),
	})
}
