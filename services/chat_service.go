package services

import (
	"github.com/SegundamanoDev/Aurelius-backend/models"
	"gorm.io/gorm"
)

// ChatService реализует хранение сообщений чата поддержки.
// Журнал денежных операций от чата не зависит.
type ChatService struct {
	db *gorm.DB
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// GetHistory возвращает историю комнаты в хронологическом порядке
func (s *ChatService) GetHistory(room string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.db.Where("room = ?", room).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// SaveMessage сохраняет сообщение комнаты
func (s *ChatService) SaveMessage(room string, senderID uint, text string, isAdmin bool) (*models.ChatMessage, error) {
	if text == "" {
		return nil, newValidationError("message text is required")
	}

	message := &models.ChatMessage{
		Room:     room,
		SenderID: senderID,
		Text:     text,
		IsAdmin:  isAdmin,
		Status:   models.ChatStatusSent,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// MarkDelivered помечает сообщение доставленным
func (s *ChatService) MarkDelivered(id uint) error {
	return s.db.Model(&models.ChatMessage{}).
		Where("id = ?", id).
		Update("status", models.ChatStatusDelivered).Error
}
