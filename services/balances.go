package services

import (
	"github.com/SegundamanoDev/Aurelius-backend/models"
	"gorm.io/gorm"
)

// Изменения балансов внутри транзакционной области. Все дебеты выполняются
// условным UPDATE с проверкой остатка в WHERE: при параллельных запросах
// баланс не может уйти в минус, даже если предварительная проверка
// в вызывающем коде устарела.

// debitWallet списывает сумму с основного баланса
func debitWallet(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND wallet_balance >= ?", userID, amount).
		Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return debitFailure(tx, userID, ErrInsufficientFunds)
	}
	return nil
}

// creditWallet зачисляет сумму на основной баланс
func creditWallet(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// debitTrading списывает сумму с торгового баланса
func debitTrading(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND trading_balance >= ?", userID, amount).
		Update("trading_balance", gorm.Expr("trading_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return debitFailure(tx, userID, ErrInsufficientTrading)
	}
	return nil
}

// creditTrading зачисляет сумму на торговый баланс
func creditTrading(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("trading_balance", gorm.Expr("trading_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// creditProfits увеличивает накопленную прибыль
func creditProfits(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("total_profits", gorm.Expr("total_profits + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// debitFailure различает отсутствие пользователя и нехватку средств
func debitFailure(tx *gorm.DB, userID uint, insufficientErr error) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return insufficientErr
}
