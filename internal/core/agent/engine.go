package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/core/llm"
	"github.com/mesalibre/voice-booking-be/internal/models"
	"github.com/mesalibre/voice-booking-be/internal/repositories"
	"github.com/mesalibre/voice-booking-be/internal/shared/utils"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrSettingsNotFound = errors.New("business settings not found or prompt not configured")
)

const (
	historyLimit = 20

	closingMessage    = "Entendido, gracias por contactarnos. ¡Que tengas un buen día!"
	processingMessage = "Procesando tu solicitud..."
	cancelReason      = "Usuario canceló la conversación"
)

// ActionGenerator produces one raw model completion for a conversation turn
type ActionGenerator interface {
	GenerateAction(ctx context.Context, systemPrompt string, history []llm.Message) (string, error)
}

// Committer persists a complete slot set as a reservation and links it to
// the conversation (which becomes completed as a side effect).
type Committer interface {
	Commit(ctx context.Context, businessID, conversationID int, draft ReservationDraft) (*models.Reservation, error)
}

// TurnResult is everything one conversational turn produced
type TurnResult struct {
	Action           Action            `json:"action"`
	RawResponse      string            `json:"rawResponse"`
	BusinessID       int               `json:"businessId"`
	ConversationID   int               `json:"conversationId"`
	AssistantMessage string            `json:"assistantMessage"`
	ReservationData  *ReservationDraft `json:"reservationData,omitempty"`
	ReservationID    *int              `json:"reservationId,omitempty"`
}

// Engine owns the conversation lifecycle: it resolves or creates the
// conversation, classifies the utterance, accumulates slots and decides when
// to commit the reservation or keep asking.
type Engine struct {
	businessRepo repositories.BusinessRepo
	convRepo     repositories.ConversationRepo
	llm          ActionGenerator
	committer    Committer

	// Serializes turns per conversation id. Voice clients are strictly
	// sequential, so contention here is the exception, not the rule.
	turnLocks map[int]*sync.Mutex
	locksMu   sync.Mutex
}

func NewEngine(
	businessRepo repositories.BusinessRepo,
	convRepo repositories.ConversationRepo,
	generator ActionGenerator,
	committer Committer,
) *Engine {
	return &Engine{
		businessRepo: businessRepo,
		convRepo:     convRepo,
		llm:          generator,
		committer:    committer,
		turnLocks:    make(map[int]*sync.Mutex),
	}
}

func (e *Engine) lockConversation(id int) *sync.Mutex {
	e.locksMu.Lock()
	mu, ok := e.turnLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		e.turnLocks[id] = mu
	}
	e.locksMu.Unlock()
	mu.Lock()
	return mu
}

// HandleTurn processes one transcribed utterance and returns the resulting
// action plus the assistant's reply.
func (e *Engine) HandleTurn(ctx context.Context, businessID int, conversationID *int, text string) (*TurnResult, error) {
	if _, err := e.businessRepo.GetByID(businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("load business: %w", err)
	}

	settings, err := e.businessRepo.GetSettings(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.Prompt == "" {
		return nil, ErrSettingsNotFound
	}

	conversation, err := e.resolveConversation(businessID, conversationID)
	if err != nil {
		return nil, err
	}

	mu := e.lockConversation(conversation.ID)
	defer mu.Unlock()

	e.appendMessage(conversation.ID, models.MessageRoleUser, text)

	history, err := e.history(conversation.ID, text)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	systemPrompt := BuildSystemPrompt(settings.Prompt, time.Now())
	raw, err := e.llm.GenerateAction(ctx, systemPrompt, history)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	draft := DecodeDraft(conversation.ReservationData)

	action, committed, err := e.evaluateTurn(ctx, conversation, text, raw, draft)
	if err != nil {
		return nil, err
	}

	assistantMessage := e.renderAssistantMessage(action)
	e.appendMessage(conversation.ID, models.MessageRoleAssistant, assistantMessage)

	result := &TurnResult{
		Action:           action,
		RawResponse:      raw,
		BusinessID:       businessID,
		ConversationID:   conversation.ID,
		AssistantMessage: assistantMessage,
	}
	if committed != nil {
		data := action.Draft()
		result.ReservationData = &data
		result.ReservationID = &committed.ID
	}
	return result, nil
}

// resolveConversation loads the supplied conversation, transparently creating
// a fresh one when none was supplied, the id is unknown, or the conversation
// already reached a terminal state. Terminal conversations are never reused.
func (e *Engine) resolveConversation(businessID int, conversationID *int) (*models.Conversation, error) {
	if conversationID != nil {
		conversation, err := e.convRepo.GetByID(*conversationID)
		if err == nil && !conversation.IsTerminal() {
			return conversation, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
	}

	conversation := &models.Conversation{
		BusinessID: businessID,
		Status:     models.ConversationStatusActive,
	}
	if err := e.convRepo.Create(conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// evaluateTurn runs the guard chain over the raw model output. Order matters:
// explicit cancellation language beats whatever the model said, and a complete
// accumulated slot set beats a model that drifted into small talk.
func (e *Engine) evaluateTurn(ctx context.Context, conversation *models.Conversation, text, raw string, draft ReservationDraft) (Action, *models.Reservation, error) {
	if WantsToCancel(text) {
		if _, err := e.convRepo.UpdateStatus(conversation.ID, models.ConversationStatusCancelled); err != nil {
			return Action{}, nil, fmt.Errorf("cancel conversation: %w", err)
		}
		return Action{
			Type: ActionEndConversation,
			Data: ActionData{Reason: cancelReason},
		}, nil, nil
	}

	parsed, parseErr := DecodeAction(raw)
	if parseErr != nil {
		utils.LogWarn("unparseable model output, degrading", map[string]interface{}{
			"conversation_id": conversation.ID,
			"error":           parseErr.Error(),
		})
		if draft.IsComplete() {
			return e.commit(ctx, conversation, draft)
		}
		// Best effort: hand the raw completion back as a question turn
		return Action{
			Type: ActionAskQuestion,
			Data: ActionData{Response: raw},
		}, nil, nil
	}

	if parsed.Type == ActionCreateReservation {
		draft.Merge(parsed.Draft())
		if draft.IsComplete() {
			return e.commit(ctx, conversation, draft)
		}

		encoded, err := draft.Encode()
		if err != nil {
			return Action{}, nil, fmt.Errorf("encode draft: %w", err)
		}
		if err := e.convRepo.SetPartialData(conversation.ID, encoded); err != nil {
			return Action{}, nil, fmt.Errorf("persist partial data: %w", err)
		}
		return Action{
			Type: ActionAskQuestion,
			Data: ActionData{Response: draft.FollowUpQuestion()},
		}, nil, nil
	}

	// The model returned something else, but if prior turns already filled
	// every slot we commit anyway rather than stalling.
	if draft.IsComplete() {
		return e.commit(ctx, conversation, draft)
	}

	if parsed.Type == ActionEndConversation {
		if _, err := e.convRepo.UpdateStatus(conversation.ID, models.ConversationStatusCompleted); err != nil {
			return Action{}, nil, fmt.Errorf("complete conversation: %w", err)
		}
	}

	return parsed, nil, nil
}

func (e *Engine) commit(ctx context.Context, conversation *models.Conversation, draft ReservationDraft) (Action, *models.Reservation, error) {
	reservation, err := e.committer.Commit(ctx, conversation.BusinessID, conversation.ID, draft)
	if err != nil {
		return Action{}, nil, fmt.Errorf("commit reservation: %w", err)
	}

	return Action{
		Type: ActionCreateReservation,
		Data: ActionData{
			CustomerName:  draft.CustomerName,
			CustomerPhone: draft.CustomerPhone,
			PartySize:     draft.PartySize,
			Date:          draft.Date,
			Time:          draft.Time,
		},
	}, reservation, nil
}

// history returns recent turns in chronological order, ending with the
// current utterance. The store may return rows newest-first; the repo
// reorders before we build model context.
func (e *Engine) history(conversationID int, text string) ([]llm.Message, error) {
	stored, err := e.convRepo.RecentMessages(conversationID, historyLimit)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(stored)+1)
	for _, m := range stored {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	// The user message write is best-effort; make sure the utterance is
	// present as the final user turn either way.
	if len(messages) == 0 || messages[len(messages)-1].Content != text || messages[len(messages)-1].Role != models.MessageRoleUser {
		messages = append(messages, llm.Message{Role: models.MessageRoleUser, Content: text})
	}
	return messages, nil
}

func (e *Engine) renderAssistantMessage(action Action) string {
	switch action.Type {
	case ActionAskQuestion, ActionGreeting:
		return action.Data.Response
	case ActionEndConversation:
		return closingMessage
	case ActionCreateReservation:
		unit := "personas"
		if action.Data.PartySize == 1 {
			unit = "persona"
		}
		return fmt.Sprintf("¡Perfecto! He confirmado tu reserva para %d %s el %s a las %s. Te esperamos, %s!",
			action.Data.PartySize, unit,
			FormatSpanishDate(action.Data.Date), action.Data.Time,
			action.Data.CustomerName)
	default:
		return processingMessage
	}
}

// appendMessage writes one turn to the message log. Failures are logged and
// swallowed: the caller-facing conversation must not die over an audit write.
func (e *Engine) appendMessage(conversationID int, role, content string) {
	err := e.convRepo.AppendMessage(&models.ConversationMessage{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	})
	if err != nil {
		utils.LogError("failed to store conversation message", err, map[string]interface{}{
			"conversation_id": conversationID,
			"role":            role,
		})
	}
}
