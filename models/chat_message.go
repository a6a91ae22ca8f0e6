package models

import (
	"time"
)

// Статусы сообщения чата
const (
	ChatStatusSent      = "sent"
	ChatStatusDelivered = "delivered"
)

// ChatMessage представляет сообщение в комнате поддержки.
// Персональная комната пользователя именуется user-<id>.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Room      string    `gorm:"column:room;not null;size:50;index" json:"room"`
	SenderID  uint      `gorm:"column:sender_id" json:"senderId"`
	Text      string    `gorm:"column:text;not null;size:2000" json:"text"`
	IsAdmin   bool      `gorm:"column:is_admin;not null;default:false" json:"isAdmin"`
	Status    string    `gorm:"column:status;not null;size:20;default:'sent'" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"timestamp"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
