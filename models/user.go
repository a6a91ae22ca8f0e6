package models

import (
	"time"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Типы аккаунтов (тарифные планы)
const (
	AccountTypeBasic    = "basic"
	AccountTypeStandard = "standard"
	AccountTypeSilver   = "silver"
	AccountTypeGold     = "gold"
	AccountTypeDemo     = "demo"
)

// Address представляет почтовый адрес пользователя
type Address struct {
	Street  string `gorm:"column:street;size:100" json:"street"`
	City    string `gorm:"column:city;size:100" json:"city"`
	State   string `gorm:"column:state;size:100" json:"state"`
	Country string `gorm:"column:country;size:100" json:"country"`
	ZipCode string `gorm:"column:zip_code;size:20" json:"zipCode"`
}

// User представляет клиента с его балансами и скопированными стратегами
type User struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName  string `gorm:"column:first_name;not null;size:50" json:"firstName"`
	MiddleName string `gorm:"column:middle_name;size:50" json:"middleName,omitempty"`
	LastName   string `gorm:"column:last_name;not null;size:50" json:"lastName"`
	Email      string `gorm:"column:email;unique;not null;size:100;index" json:"email"`
	Password   string `gorm:"column:password;not null;size:100" json:"-"`
	Currency   string `gorm:"column:currency;not null;size:3;default:'USD'" json:"currency"`

	Sex           string  `gorm:"column:sex;size:10" json:"sex,omitempty"`
	MaritalStatus string  `gorm:"column:marital_status;size:20" json:"maritalStatus,omitempty"`
	Occupation    string  `gorm:"column:occupation;size:100" json:"occupation,omitempty"`
	Address       Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	WalletBalance  float64 `gorm:"column:wallet_balance;type:decimal(20,2);not null;default:0.0" json:"walletBalance"`
	TradingBalance float64 `gorm:"column:trading_balance;type:decimal(20,2);not null;default:0.0" json:"tradingBalance"`
	TotalProfits   float64 `gorm:"column:total_profits;type:decimal(20,2);not null;default:0.0" json:"totalProfits"`

	AccountType string     `gorm:"column:account_type;not null;size:20;default:'basic'" json:"accountType"`
	Role        string     `gorm:"column:role;not null;size:10;default:'user'" json:"role"`
	// Без default в теге: явный false не затирается значением колонки
	IsActive    bool       `gorm:"column:is_active;not null" json:"isActive"`
	LastLogin   *time.Time `gorm:"column:last_login" json:"lastLogin,omitempty"`

	CopiedTraders []CopiedTrader `gorm:"foreignKey:UserID" json:"copiedTraders"`
	Transactions  []Transaction  `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// CopiedTrader связывает пользователя со стратегом и заблокированной суммой.
// Пара (user_id, trader_id) уникальна: не более одной аллокации на стратега.
type CopiedTrader struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_trader" json:"userId"`
	TraderID        uint      `gorm:"column:trader_id;not null;uniqueIndex:idx_user_trader" json:"traderId"`
	AmountAllocated float64   `gorm:"column:amount_allocated;type:decimal(20,2);not null;default:0.0" json:"amountAllocated"`
	CreatedAt       time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (CopiedTrader) TableName() string {
	return "copied_traders"
}
