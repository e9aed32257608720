package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mesalibre/voice-booking-be/internal/models"
)

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

func newConversationApp(repo *mockConversationRepo) *fiber.App {
	app := fiber.New()
	handler := NewConversationHandler(repo)
	app.Put("/conversations", handler.Update)
	return app
}

func putJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, []byte) {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}

func TestUpdateConversationStatus(t *testing.T) {
	repo := &mockConversationRepo{}
	repo.On("UpdateStatus", 7, models.ConversationStatusCancelled).
		Return(&models.Conversation{ID: 7, Status: models.ConversationStatusCancelled}, nil)

	status, payload := putJSON(t, newConversationApp(repo), "/conversations", fiber.Map{
		"conversationId": 7,
		"status":         "cancelled",
	})

	assert.Equal(t, fiber.StatusOK, status)
	var updated models.Conversation
	require.NoError(t, json.Unmarshal(payload, &updated))
	assert.Equal(t, 7, updated.ID)
	assert.Equal(t, models.ConversationStatusCancelled, updated.Status)
}

func TestUpdateConversationRejectsBadStatus(t *testing.T) {
	repo := &mockConversationRepo{}

	status, _ := putJSON(t, newConversationApp(repo), "/conversations", fiber.Map{
		"conversationId": 7,
		"status":         "paused",
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestUpdateConversationRequiresID(t *testing.T) {
	repo := &mockConversationRepo{}

	status, _ := putJSON(t, newConversationApp(repo), "/conversations", fiber.Map{
		"status": "completed",
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdateConversationNotFound(t *testing.T) {
	repo := &mockConversationRepo{}
	repo.On("UpdateStatus", 99, models.ConversationStatusCompleted).
		Return(nil, gorm.ErrRecordNotFound)

	status, payload := putJSON(t, newConversationApp(repo), "/conversations", fiber.Map{
		"conversationId": 99,
		"status":         "completed",
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(payload), "Conversation not found")
}
