package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/core/llm"
	"github.com/mesalibre/voice-booking-be/internal/models"
)

type mockBusinessRepo struct {
	mock.Mock
}

func (m *mockBusinessRepo) Create(business *models.Business) error {
	return m.Called(business).Error(0)
}

func (m *mockBusinessRepo) GetByID(id int) (*models.Business, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *mockBusinessRepo) GetByOwner(ownerID int) ([]models.Business, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Business), args.Error(1)
}

func (m *mockBusinessRepo) Update(business *models.Business) error {
	return m.Called(business).Error(0)
}

func (m *mockBusinessRepo) Delete(id int) error {
	return m.Called(id).Error(0)
}

func (m *mockBusinessRepo) GetSettings(businessID int) (*models.BusinessSettings, error) {
	args := m.Called(businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessSettings), args.Error(1)
}

func (m *mockBusinessRepo) CreateSettings(settings *models.BusinessSettings) error {
	return m.Called(settings).Error(0)
}

func (m *mockBusinessRepo) UpdateSettings(settings *models.BusinessSettings) error {
	return m.Called(settings).Error(0)
}

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) Create(conversation *models.Conversation) error {
	return m.Called(conversation).Error(0)
}

func (m *mockConversationRepo) GetByID(id int) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *mockConversationRepo) UpdateStatus(id int, status string) (*models.Conversation, error) {
	args := m.Called(id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *mockConversationRepo) SetPartialData(id int, data datatypes.JSON) error {
	return m.Called(id, data).Error(0)
}

func (m *mockConversationRepo) ClearPartialData(id int) error {
	return m.Called(id).Error(0)
}

func (m *mockConversationRepo) LinkReservation(id int, reservationID int) error {
	return m.Called(id, reservationID).Error(0)
}

func (m *mockConversationRepo) AppendMessage(message *models.ConversationMessage) error {
	return m.Called(message).Error(0)
}

func (m *mockConversationRepo) RecentMessages(conversationID int, limit int) ([]models.ConversationMessage, error) {
	args := m.Called(conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationMessage), args.Error(1)
}

func (m *mockConversationRepo) CancelStale(idleFor time.Duration) (int64, error) {
	args := m.Called(idleFor)
	return args.Get(0).(int64), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateAction(ctx context.Context, systemPrompt string, history []llm.Message) (string, error) {
	args := m.Called(ctx, systemPrompt, history)
	return args.String(0), args.Error(1)
}

type mockCommitter struct {
	mock.Mock
}

func (m *mockCommitter) Commit(ctx context.Context, businessID, conversationID int, draft ReservationDraft) (*models.Reservation, error) {
	args := m.Called(ctx, businessID, conversationID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

type engineFixture struct {
	engine     *Engine
	businesses *mockBusinessRepo
	convs      *mockConversationRepo
	generator  *mockGenerator
	committer  *mockCommitter
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		businesses: &mockBusinessRepo{},
		convs:      &mockConversationRepo{},
		generator:  &mockGenerator{},
		committer:  &mockCommitter{},
	}
	f.engine = NewEngine(f.businesses, f.convs, f.generator, f.committer)
	return f
}

// withBusiness wires the happy-path business and settings lookups
func (f *engineFixture) withBusiness(businessID int) {
	f.businesses.On("GetByID", businessID).Return(&models.Business{ID: businessID, Name: "La Terraza"}, nil)
	f.businesses.On("GetSettings", businessID).Return(&models.BusinessSettings{
		BusinessID: businessID,
		Prompt:     models.DefaultPrompt,
	}, nil)
}

func (f *engineFixture) withActiveConversation(conversation *models.Conversation) {
	f.convs.On("GetByID", conversation.ID).Return(conversation, nil)
	f.convs.On("AppendMessage", mock.Anything).Return(nil)
	f.convs.On("RecentMessages", conversation.ID, 20).Return([]models.ConversationMessage{}, nil)
}

func intPtr(v int) *int { return &v }

func TestHandleTurnBusinessNotFound(t *testing.T) {
	f := newEngineFixture()
	f.businesses.On("GetByID", 99).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.engine.HandleTurn(context.Background(), 99, nil, "hola")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestHandleTurnSettingsMissingOrEmptyPrompt(t *testing.T) {
	f := newEngineFixture()
	f.businesses.On("GetByID", 1).Return(&models.Business{ID: 1}, nil)
	f.businesses.On("GetSettings", 1).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.engine.HandleTurn(context.Background(), 1, nil, "hola")
	assert.ErrorIs(t, err, ErrSettingsNotFound)

	f = newEngineFixture()
	f.businesses.On("GetByID", 1).Return(&models.Business{ID: 1}, nil)
	f.businesses.On("GetSettings", 1).Return(&models.BusinessSettings{BusinessID: 1, Prompt: ""}, nil)

	_, err = f.engine.HandleTurn(context.Background(), 1, nil, "hola")
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestHandleTurnCreatesConversationWhenNoneSupplied(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	f.convs.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Conversation).ID = 7
	}).Return(nil)
	f.convs.On("AppendMessage", mock.Anything).Return(nil)
	f.convs.On("RecentMessages", 7, 20).Return([]models.ConversationMessage{}, nil)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"greeting","data":{"response":"¡Hola! ¿En qué puedo ayudarte?"}}`, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, nil, "hola")
	require.NoError(t, err)
	assert.Equal(t, 7, result.ConversationID)
	assert.Equal(t, ActionGreeting, result.Action.Type)
	assert.Equal(t, "¡Hola! ¿En qué puedo ayudarte?", result.AssistantMessage)
	assert.Nil(t, result.ReservationID)
}

func TestHandleTurnNeverReusesTerminalConversation(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	f.convs.On("GetByID", 5).Return(&models.Conversation{
		ID:         5,
		BusinessID: 1,
		Status:     models.ConversationStatusCancelled,
	}, nil)
	f.convs.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Conversation).ID = 8
	}).Return(nil)
	f.convs.On("AppendMessage", mock.Anything).Return(nil)
	f.convs.On("RecentMessages", 8, 20).Return([]models.ConversationMessage{}, nil)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"greeting","data":{"response":"Hola"}}`, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(5), "hola")
	require.NoError(t, err)
	assert.Equal(t, 8, result.ConversationID)
}

func TestHandleTurnIncompleteDraftAsksForMissing(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"create_reservation","data":{}}`, nil)
	f.convs.On("SetPartialData", 7, mock.Anything).Return(nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "quiero una reserva")
	require.NoError(t, err)
	assert.Equal(t, ActionAskQuestion, result.Action.Type)
	assert.Equal(t,
		"Para completar tu reserva, todavía necesito: tu nombre, cuántas personas serán, qué día prefieres, y a qué hora. ¿Podrías proporcionarme esta información?",
		result.AssistantMessage)
	assert.Nil(t, result.ReservationID)
	f.convs.AssertCalled(t, "SetPartialData", 7, mock.Anything)
}

func TestHandleTurnCompletesAndCommits(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{
		ID:              7,
		BusinessID:      1,
		Status:          models.ConversationStatusActive,
		ReservationData: datatypes.JSON(`{"customerName":"Juan"}`),
	}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"create_reservation","data":{"partySize":4,"date":"mañana","time":"9pm"}}`, nil)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	expected := ReservationDraft{CustomerName: "Juan", PartySize: 4, Date: tomorrow, Time: "21:00"}
	f.committer.On("Commit", mock.Anything, 1, 7, expected).
		Return(&models.Reservation{ID: 42, BusinessID: 1}, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "Juan, 4 personas, mañana a las 9pm")
	require.NoError(t, err)
	assert.Equal(t, ActionCreateReservation, result.Action.Type)
	require.NotNil(t, result.ReservationID)
	assert.Equal(t, 42, *result.ReservationID)
	require.NotNil(t, result.ReservationData)
	assert.Equal(t, expected, *result.ReservationData)
	assert.Contains(t, result.AssistantMessage, "He confirmado tu reserva para 4 personas")
	assert.Contains(t, result.AssistantMessage, "21:00")
	assert.Contains(t, result.AssistantMessage, "Juan")
	f.convs.AssertNotCalled(t, "SetPartialData", mock.Anything, mock.Anything)
}

func TestHandleTurnCancellationOverridesModel(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"ask_question","data":{"response":"¿Para qué fecha?"}}`, nil)
	f.convs.On("UpdateStatus", 7, models.ConversationStatusCancelled).
		Return(&models.Conversation{ID: 7, Status: models.ConversationStatusCancelled}, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "no")
	require.NoError(t, err)
	assert.Equal(t, ActionEndConversation, result.Action.Type)
	assert.Equal(t, "Usuario canceló la conversación", result.Action.Data.Reason)
	assert.Equal(t, "Entendido, gracias por contactarnos. ¡Que tengas un buen día!", result.AssistantMessage)
	f.convs.AssertCalled(t, "UpdateStatus", 7, models.ConversationStatusCancelled)
	f.committer.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTurnUnparseableOutputDegradesToQuestion(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return("Claro, te ayudo con eso", nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "quiero reservar")
	require.NoError(t, err)
	assert.Equal(t, ActionAskQuestion, result.Action.Type)
	assert.Equal(t, "Claro, te ayudo con eso", result.AssistantMessage)
}

func TestHandleTurnUnparseableOutputStillCommitsCompleteDraft(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{
		ID:              7,
		BusinessID:      1,
		Status:          models.ConversationStatusActive,
		ReservationData: datatypes.JSON(`{"customerName":"Juan","partySize":2,"date":"2025-06-21","time":"21:00"}`),
	}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return("sorry, something went sideways", nil)
	expected := ReservationDraft{CustomerName: "Juan", PartySize: 2, Date: "2025-06-21", Time: "21:00"}
	f.committer.On("Commit", mock.Anything, 1, 7, expected).
		Return(&models.Reservation{ID: 11, BusinessID: 1}, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "sí, eso es todo")
	require.NoError(t, err)
	assert.Equal(t, ActionCreateReservation, result.Action.Type)
	require.NotNil(t, result.ReservationID)
	assert.Equal(t, 11, *result.ReservationID)
}

func TestHandleTurnCompleteDraftOverridesSmallTalk(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{
		ID:              7,
		BusinessID:      1,
		Status:          models.ConversationStatusActive,
		ReservationData: datatypes.JSON(`{"customerName":"Ana","partySize":3,"date":"2025-06-21","time":"20:00"}`),
	}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"greeting","data":{"response":"¡Hola de nuevo!"}}`, nil)
	expected := ReservationDraft{CustomerName: "Ana", PartySize: 3, Date: "2025-06-21", Time: "20:00"}
	f.committer.On("Commit", mock.Anything, 1, 7, expected).
		Return(&models.Reservation{ID: 13, BusinessID: 1}, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "perfecto")
	require.NoError(t, err)
	assert.Equal(t, ActionCreateReservation, result.Action.Type)
	require.NotNil(t, result.ReservationID)
	assert.Equal(t, 13, *result.ReservationID)
}

func TestHandleTurnEndConversationCompletes(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"end_conversation","data":{"reason":"caller said goodbye"}}`, nil)
	f.convs.On("UpdateStatus", 7, models.ConversationStatusCompleted).
		Return(&models.Conversation{ID: 7, Status: models.ConversationStatusCompleted}, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "eso sería todo, muchas gracias")
	require.NoError(t, err)
	assert.Equal(t, ActionEndConversation, result.Action.Type)
	assert.Equal(t, "Entendido, gracias por contactarnos. ¡Que tengas un buen día!", result.AssistantMessage)
	f.convs.AssertCalled(t, "UpdateStatus", 7, models.ConversationStatusCompleted)
}

func TestHandleTurnGenerateFailureSurfaces(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.withActiveConversation(conversation)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("upstream timeout"))

	_, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestHandleTurnSurvivesMessageLogFailure(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.convs.On("GetByID", 7).Return(conversation, nil)
	f.convs.On("AppendMessage", mock.Anything).Return(fmt.Errorf("insert failed"))
	f.convs.On("RecentMessages", 7, 20).Return([]models.ConversationMessage{}, nil)
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"type":"greeting","data":{"response":"Hola"}}`, nil)

	result, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "hola")
	require.NoError(t, err)
	assert.Equal(t, "Hola", result.AssistantMessage)
}

func TestHandleTurnHistoryEndsWithCurrentUtterance(t *testing.T) {
	f := newEngineFixture()
	f.withBusiness(1)
	conversation := &models.Conversation{ID: 7, BusinessID: 1, Status: models.ConversationStatusActive}
	f.convs.On("GetByID", 7).Return(conversation, nil)
	f.convs.On("AppendMessage", mock.Anything).Return(errors.New("down"))
	f.convs.On("RecentMessages", 7, 20).Return([]models.ConversationMessage{
		{Role: models.MessageRoleUser, Content: "hola"},
		{Role: models.MessageRoleAssistant, Content: "¡Hola! ¿En qué puedo ayudarte?"},
	}, nil)

	var seen []llm.Message
	f.generator.On("GenerateAction", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seen = args.Get(2).([]llm.Message)
		}).
		Return(`{"type":"greeting","data":{"response":"Hola"}}`, nil)

	_, err := f.engine.HandleTurn(context.Background(), 1, intPtr(7), "quiero una reserva")
	require.NoError(t, err)
	require.Len(t, seen, 3)
	assert.Equal(t, models.MessageRoleUser, seen[2].Role)
	assert.Equal(t, "quiero una reserva", seen[2].Content)
}
