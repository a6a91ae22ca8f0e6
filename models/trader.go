package models

import (
	"time"
)

// Trader представляет публичный профиль стратега для копи-трейдинга
type Trader struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"column:name;not null;size:100" json:"name"`
	Avatar   string `gorm:"column:avatar;not null;size:255" json:"avatar"` // инициалы или URL
	Strategy string `gorm:"column:strategy;not null;size:50;default:'Institutional'" json:"strategy"`

	// Показатели для витрины (строки, как в UI: "+124.5%")
	ROI         string `gorm:"column:roi;not null;size:20" json:"roi"`
	WinRate     string `gorm:"column:win_rate;not null;size:20" json:"winRate"`
	MaxDrawdown string `gorm:"column:max_drawdown;not null;size:20;default:'-0.0%'" json:"maxDrawdown"`

	// Счетчик подписчиков, поддерживается операциями копирования
	Followers int64 `gorm:"column:followers;not null;default:0" json:"followers"`

	IsPublic   bool `gorm:"column:is_public;not null" json:"isPublic"`
	IsTrending bool `gorm:"column:is_trending;not null;default:false" json:"isTrending"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Trader) TableName() string {
	return "traders"
}
