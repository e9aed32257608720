package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ActionType tags the five intents the model may return
type ActionType string

const (
	ActionCreateReservation ActionType = "create_reservation"
	ActionAskQuestion       ActionType = "ask_question"
	ActionRequestInfo       ActionType = "request_info"
	ActionGreeting          ActionType = "greeting"
	ActionEndConversation   ActionType = "end_conversation"
)

// ActionData carries the payload; which fields are set depends on the type tag
type ActionData struct {
	// create_reservation
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	PartySize     int    `json:"partySize,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`

	// ask_question, greeting
	Response string `json:"response,omitempty"`

	// request_info
	Info string `json:"info,omitempty"`

	// end_conversation
	Reason string `json:"reason,omitempty"`
}

// Action is one classified intent
type Action struct {
	Type ActionType `json:"type"`
	Data ActionData `json:"data"`
}

// Draft extracts the reservation fields of a create_reservation action
func (a Action) Draft() ReservationDraft {
	return ReservationDraft{
		CustomerName:  a.Data.CustomerName,
		CustomerPhone: a.Data.CustomerPhone,
		PartySize:     a.Data.PartySize,
		Date:          a.Data.Date,
		Time:          a.Data.Time,
	}
}

// DecodeAction parses the raw model completion into an Action. An unknown or
// missing type tag is an error so the caller can degrade gracefully instead
// of acting on garbage.
func DecodeAction(raw string) (Action, error) {
	var action Action
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return Action{}, fmt.Errorf("malformed model output: %w", err)
	}

	switch action.Type {
	case ActionCreateReservation, ActionAskQuestion, ActionRequestInfo,
		ActionGreeting, ActionEndConversation:
		return action, nil
	default:
		return Action{}, fmt.Errorf("unknown action type %q", action.Type)
	}
}

// Phrases that always mean the caller wants out
var cancelKeywords = []string{
	"cancelar",
	"nada",
	"no quiero",
	"olvídalo",
	"no gracias",
	"no, gracias",
}

// WantsToCancel checks the raw utterance for explicit cancellation language.
// This runs before the model output is trusted, so a model that misses an
// obvious "no" cannot keep the conversation alive.
//
// The short-utterance rule ("no..." under 10 characters) is known to misfire
// on legitimate short negative answers; it is kept as-is for parity with
// observed caller behavior.
func WantsToCancel(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, keyword := range cancelKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return strings.HasPrefix(lower, "no") && utf8.RuneCountInString(lower) < 10
}
