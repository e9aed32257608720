package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mesalibre/voice-booking-be/internal/models"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
	"github.com/mesalibre/voice-booking-be/internal/services"
	"github.com/mesalibre/voice-booking-be/internal/shared/utils"
)

const callGreeting = "Hola, gracias por llamar. ¿En qué puedo ayudarte con tu reserva?"

// TelnyxHandler receives Call Control webhooks for inbound phone calls
type TelnyxHandler struct {
	telnyx      *services.TelnyxClient
	callLogRepo repositories.CallLogRepo
}

func NewTelnyxHandler(telnyx *services.TelnyxClient, callLogRepo repositories.CallLogRepo) *TelnyxHandler {
	return &TelnyxHandler{telnyx: telnyx, callLogRepo: callLogRepo}
}

type telnyxEvent struct {
	Data struct {
		EventType string `json:"event_type"`
		Payload   struct {
			CallControlID string `json:"call_control_id"`
			CallSessionID string `json:"call_session_id"`
			HangupCause   string `json:"hangup_cause"`
		} `json:"payload"`
	} `json:"data"`
}

// Voice godoc
// @Summary Telnyx call-control webhook
// @Tags Telephony
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /telnyx/voice [post]
func (h *TelnyxHandler) Voice(c *fiber.Ctx) error {
	var event telnyxEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid webhook payload",
		})
	}

	callControlID := event.Data.Payload.CallControlID

	switch event.Data.EventType {
	case "call.initiated":
		if err := h.telnyx.Answer(c.Context(), callControlID); err != nil {
			utils.LogError("failed to answer call", err, map[string]interface{}{
				"call_control_id": callControlID,
			})
		}

	case "call.answered":
		if err := h.telnyx.Speak(c.Context(), callControlID, callGreeting); err != nil {
			utils.LogError("failed to speak greeting", err, map[string]interface{}{
				"call_control_id": callControlID,
			})
		}

	case "call.hangup":
		callID := event.Data.Payload.CallSessionID
		if callID == "" {
			callID = uuid.NewString()
		}
		err := h.callLogRepo.Create(&models.CallLog{
			CallID:    callID,
			AISummary: event.Data.Payload.HangupCause,
		})
		if err != nil {
			// Audit only, the webhook must still be acknowledged
			utils.LogError("failed to store call log", err, map[string]interface{}{
				"call_id": callID,
			})
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
