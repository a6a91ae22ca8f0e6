package models

import (
	"time"
)

// ContactMessage представляет обращение через форму обратной связи.
// Сохраняется до попытки отправки уведомления на почту.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;size:100" json:"name"`
	Email     string    `gorm:"column:email;not null;size:100" json:"email"`
	Message   string    `gorm:"column:message;not null;size:5000" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}
