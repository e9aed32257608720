package agent

import (
	"encoding/json"
	"strings"
)

// namePlaceholder is what the model returns when it has no real name yet
const namePlaceholder = "cliente"

// ReservationDraft is the partial slot set collected across turns. It is
// serialized onto the conversation row between turns; field names match the
// JSON blob written by earlier versions of the system.
type ReservationDraft struct {
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	PartySize     int    `json:"partySize,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
}

// DecodeDraft restores a draft from the stored blob. A missing or corrupt
// blob yields an empty draft, never an error: the worst case is re-asking
// the caller for data we already had.
func DecodeDraft(raw []byte) ReservationDraft {
	var draft ReservationDraft
	if len(raw) == 0 {
		return draft
	}
	if err := json.Unmarshal(raw, &draft); err != nil {
		return ReservationDraft{}
	}
	return draft
}

// Encode serializes the draft for storage on the conversation row
func (d ReservationDraft) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Merge folds newly extracted fields into the draft. A known good value is
// never overwritten by an empty or placeholder one; dates and times are
// normalized before storage.
func (d *ReservationDraft) Merge(update ReservationDraft) {
	if name := strings.TrimSpace(update.CustomerName); name != "" && strings.ToLower(name) != namePlaceholder {
		d.CustomerName = update.CustomerName
	}
	if strings.TrimSpace(update.CustomerPhone) != "" {
		d.CustomerPhone = update.CustomerPhone
	}
	if update.PartySize != 0 {
		d.PartySize = update.PartySize
	}
	if update.Date != "" {
		d.Date = NormalizeDate(update.Date)
	}
	if update.Time != "" {
		d.Time = NormalizeTime(update.Time)
	}
}

// hasName reports whether the name slot holds a real customer name
func (d ReservationDraft) hasName() bool {
	name := strings.TrimSpace(d.CustomerName)
	return name != "" && strings.ToLower(name) != namePlaceholder
}

// IsComplete reports whether every required slot is filled. The phone
// number is never required.
func (d ReservationDraft) IsComplete() bool {
	return d.hasName() && d.PartySize != 0 && d.Date != "" && d.Time != ""
}

// MissingFields lists the unfilled required slots as caller-facing phrases,
// in the fixed name, party size, date, time order.
func (d ReservationDraft) MissingFields() []string {
	var missing []string
	if !d.hasName() {
		missing = append(missing, "tu nombre")
	}
	if d.PartySize == 0 {
		missing = append(missing, "cuántas personas serán")
	}
	if d.Date == "" {
		missing = append(missing, "qué día prefieres")
	}
	if d.Time == "" {
		missing = append(missing, "a qué hora")
	}
	return missing
}

// FollowUpQuestion builds the question asking for exactly the missing slots.
// One item stands alone, two are joined with "y", three or more use commas
// with ", y" before the last.
func (d ReservationDraft) FollowUpQuestion() string {
	missing := d.MissingFields()

	var sb strings.Builder
	sb.WriteString("Para completar tu reserva, todavía necesito: ")
	switch len(missing) {
	case 0:
		// Nothing missing; callers should not ask, but stay coherent
		sb.WriteString("nada más")
	case 1:
		sb.WriteString(missing[0])
	case 2:
		sb.WriteString(missing[0])
		sb.WriteString(" y ")
		sb.WriteString(missing[1])
	default:
		sb.WriteString(strings.Join(missing[:len(missing)-1], ", "))
		sb.WriteString(", y ")
		sb.WriteString(missing[len(missing)-1])
	}
	sb.WriteString(". ¿Podrías proporcionarme esta información?")
	return sb.String()
}
