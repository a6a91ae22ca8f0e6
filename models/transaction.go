package models

import (
	"time"
)

// Типы операций в журнале. Знак суммы определяется типом,
// само значение хранится как положительная величина.
const (
	TransactionTypeDeposit        = "deposit"
	TransactionTypeWithdrawal     = "withdrawal"
	TransactionTypePurchase       = "purchase"
	TransactionTypeAccountUpgrade = "account_upgrade"
	TransactionTypeTradingFund    = "trading_fund"
	TransactionTypeTradingSell    = "trading_sell"
	TransactionTypeTradingYield   = "trading_yield"
	TransactionTypeProfit         = "profit"
	TransactionTypeSignalPurchase = "signal_purchase"
	TransactionTypeStakingDeposit = "staking_deposit"
	TransactionTypeStakingReward  = "staking_reward"
)

// Статусы операции. Статусы completed и failed терминальные.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// TransactionDetails содержит справочные данные операции.
// На расчет балансов эти поля не влияют.
type TransactionDetails struct {
	PlanName        string `gorm:"column:plan_name;size:50" json:"planName,omitempty"`
	SignalType      string `gorm:"column:signal_type;size:50" json:"signalType,omitempty"`
	StakingDuration int    `gorm:"column:staking_duration" json:"stakingDuration,omitempty"`
}

// Transaction представляет запись в журнале денежных операций
type Transaction struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"column:user_id;not null;index" json:"userId"`
	User   User `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Type   string  `gorm:"column:type;not null;size:30" json:"type"`
	Amount float64 `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status string  `gorm:"column:status;not null;size:20;default:'pending'" json:"status"`

	Method     string             `gorm:"column:method;size:50" json:"method,omitempty"`
	ProofImage string             `gorm:"column:proof_image;size:255" json:"proofImage,omitempty"`
	Details    TransactionDetails `gorm:"embedded;embeddedPrefix:details_" json:"details"`

	ReferenceID string `gorm:"column:reference_id;size:50;index" json:"referenceId,omitempty"`
	Description string `gorm:"column:description;size:255" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// IsTerminal сообщает, закрыта ли операция для дальнейших переходов статуса
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
