package agent

import (
	"fmt"
	"strings"
	"time"
)

// BuildSystemPrompt combines the business-specific instructions with the
// structured-output contract the state machine depends on.
func BuildSystemPrompt(businessPrompt string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(businessPrompt)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Hoy es %s. Mañana es %s.\n\n",
		now.Format(dateLayout), now.AddDate(0, 0, 1).Format(dateLayout)))

	sb.WriteString("Responde SIEMPRE con un único objeto JSON con esta forma:\n")
	sb.WriteString(`{"type": "<intent>", "data": {...}}` + "\n\n")

	sb.WriteString("Intents disponibles:\n")
	sb.WriteString(`- create_reservation: data con customerName, customerPhone (opcional), partySize, date (YYYY-MM-DD), time (HH:MM). Incluye solo los campos que el cliente ya ha dicho.` + "\n")
	sb.WriteString(`- ask_question: data con response (la pregunta que haces al cliente).` + "\n")
	sb.WriteString(`- request_info: data con info (información del restaurante que el cliente pidió).` + "\n")
	sb.WriteString(`- greeting: data con response (tu saludo).` + "\n")
	sb.WriteString(`- end_conversation: data con reason.` + "\n\n")

	sb.WriteString("Instrucciones:\n")
	sb.WriteString("- No inventes datos que el cliente no ha dicho\n")
	sb.WriteString("- Si el cliente quiere reservar, usa create_reservation aunque falten campos\n")
	sb.WriteString("- Usa \"cliente\" como customerName solo si aún no sabes el nombre\n")

	return sb.String()
}
