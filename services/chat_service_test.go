package services

import (
	"testing"

	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveMessageAndHistoryOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db)
	user := createTestUser(t, db, 0, 0)
	admin := createTestAdmin(t, db)

	first, err := svc.SaveMessage("user-1", user.ID, "I need help with my withdrawal", false)
	require.NoError(t, err)
	assert.Equal(t, models.ChatStatusSent, first.Status)

	_, err = svc.SaveMessage("user-1", admin.ID, "Checking your request now", true)
	require.NoError(t, err)

	// Сообщение другой комнаты в историю не попадает
	_, err = svc.SaveMessage("user-2", user.ID, "Different room", false)
	require.NoError(t, err)

	history, err := svc.GetHistory("user-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "I need help with my withdrawal", history[0].Text)
	assert.True(t, history[1].IsAdmin)
}

func TestSaveMessageRejectsEmptyText(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db)
	user := createTestUser(t, db, 0, 0)

	_, err := svc.SaveMessage("user-1", user.ID, "", false)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestMarkDelivered(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db)
	user := createTestUser(t, db, 0, 0)

	message, err := svc.SaveMessage("user-1", user.ID, "hello", false)
	require.NoError(t, err)

	require.NoError(t, svc.MarkDelivered(message.ID))

	var reloaded models.ChatMessage
	require.NoError(t, db.First(&reloaded, message.ID).Error)
	assert.Equal(t, models.ChatStatusDelivered, reloaded.Status)
}

func TestContactSubmitPersistsBeforeEmail(t *testing.T) {
	db := setupTestDB(t)

	// Почтовый сервис с пустыми настройками упадет при отправке,
	// но обращение все равно должно сохраниться
	svc := NewContactService(db, newTestEmailService())

	message, err := svc.Submit(ContactRequest{
		Name:    "Anna",
		Email:   "anna@example.com",
		Message: "How do I verify my account?",
	})
	require.NoError(t, err)

	var reloaded models.ContactMessage
	require.NoError(t, db.First(&reloaded, message.ID).Error)
	assert.Equal(t, "anna@example.com", reloaded.Email)
}

func TestContactSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContactService(db, newTestEmailService())

	_, err := svc.Submit(ContactRequest{
		Name:  "Anna",
		Email: "not-an-email",
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
