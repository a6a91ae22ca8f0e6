package services

import (
	"errors"

	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreateTraderRequest представляет данные для создания профиля стратега
type CreateTraderRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Avatar      string `json:"avatar" validate:"required"`
	Strategy    string `json:"strategy"`
	ROI         string `json:"roi" validate:"required"`
	WinRate     string `json:"winRate" validate:"required"`
	MaxDrawdown string `json:"maxDrawdown"`
	IsPublic    *bool  `json:"isPublic"`
	IsTrending  bool   `json:"isTrending"`
}

// UpdateTraderRequest представляет частичное обновление профиля стратега
type UpdateTraderRequest struct {
	Name        *string `json:"name"`
	Avatar      *string `json:"avatar"`
	Strategy    *string `json:"strategy"`
	ROI         *string `json:"roi"`
	WinRate     *string `json:"winRate"`
	MaxDrawdown *string `json:"maxDrawdown"`
	IsPublic    *bool   `json:"isPublic"`
	IsTrending  *bool   `json:"isTrending"`
}

// CopyRequest представляет запуск копирования стратега
type CopyRequest struct {
	TraderID uint    `json:"traderId" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// StopCopyRequest представляет остановку копирования стратега
type StopCopyRequest struct {
	TraderID uint `json:"traderId" validate:"required"`
}

// CopyResult возвращает состояние после операции копирования
type CopyResult struct {
	TradingBalance float64               `json:"tradingBalance"`
	CopiedTraders  []models.CopiedTrader `json:"copiedTraders"`
}

// TraderService реализует реестр стратегов и жизненный цикл копирования.
// Операции копирования изменяют аллокации пользователя, его торговый
// баланс и счетчик подписчиков стратега как одно целое.
type TraderService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewTraderService создает новый экземпляр TraderService
func NewTraderService(db *gorm.DB) *TraderService {
	return &TraderService{
		db:        db,
		validator: validator.New(),
	}
}

// GetPublicTraders возвращает витрину стратегов по убыванию подписчиков
func (s *TraderService) GetPublicTraders() ([]models.Trader, error) {
	var traders []models.Trader
	if err := s.db.Where("is_public = ?", true).
		Order("followers desc").
		Find(&traders).Error; err != nil {
		return nil, err
	}
	return traders, nil
}

// GetByID возвращает стратега по ID
func (s *TraderService) GetByID(id uint) (*models.Trader, error) {
	var trader models.Trader
	if err := s.db.First(&trader, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trader, nil
}

// CreateTrader создает профиль стратега
func (s *TraderService) CreateTrader(req CreateTraderRequest) (*models.Trader, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	trader := &models.Trader{
		Name:       req.Name,
		Avatar:     req.Avatar,
		Strategy:   req.Strategy,
		ROI:        req.ROI,
		WinRate:    req.WinRate,
		IsTrending: req.IsTrending,
		IsPublic:   true,
	}
	if trader.Strategy == "" {
		trader.Strategy = "Institutional"
	}
	if req.MaxDrawdown != "" {
		trader.MaxDrawdown = req.MaxDrawdown
	} else {
		trader.MaxDrawdown = "-0.0%"
	}
	if req.IsPublic != nil {
		trader.IsPublic = *req.IsPublic
	}

	if err := s.db.Create(trader).Error; err != nil {
		return nil, err
	}
	return trader, nil
}

// UpdateTrader обновляет поля профиля, переданные в запросе
func (s *TraderService) UpdateTrader(id uint, req UpdateTraderRequest) (*models.Trader, error) {
	trader, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		trader.Name = *req.Name
	}
	if req.Avatar != nil {
		trader.Avatar = *req.Avatar
	}
	if req.Strategy != nil {
		trader.Strategy = *req.Strategy
	}
	if req.ROI != nil {
		trader.ROI = *req.ROI
	}
	if req.WinRate != nil {
		trader.WinRate = *req.WinRate
	}
	if req.MaxDrawdown != nil {
		trader.MaxDrawdown = *req.MaxDrawdown
	}
	if req.IsPublic != nil {
		trader.IsPublic = *req.IsPublic
	}
	if req.IsTrending != nil {
		trader.IsTrending = *req.IsTrending
	}

	if err := s.db.Save(trader).Error; err != nil {
		return nil, err
	}
	return trader, nil
}

// DeactivateTrader скрывает стратега с витрины, сохраняя ссылочную
// целостность существующих аллокаций
func (s *TraderService) DeactivateTrader(id uint) error {
	res := s.db.Model(&models.Trader{}).
		Where("id = ?", id).
		Update("is_public", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTrader удаляет профиль стратега. Отклоняется, пока на стратега
// ссылаются активные аллокации.
func (s *TraderService) DeleteTrader(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var allocations int64
		if err := tx.Model(&models.CopiedTrader{}).
			Where("trader_id = ?", id).
			Count(&allocations).Error; err != nil {
			return err
		}
		if allocations > 0 {
			return newValidationError("trader still has active copy allocations")
		}

		res := tx.Delete(&models.Trader{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// StartCopying начинает копирование стратега: добавляет аллокацию,
// блокирует сумму на торговом балансе и увеличивает счетчик подписчиков.
// Повторное копирование того же стратега отклоняется.
func (s *TraderService) StartCopying(userID uint, req CopyRequest) (*CopyResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var trader models.Trader
		if err := tx.Where("id = ? AND is_public = ?", req.TraderID, true).
			First(&trader).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.CopiedTrader{}).
			Where("user_id = ? AND trader_id = ?", userID, req.TraderID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyFollowing
		}

		if err := debitTrading(tx, userID, req.Amount); err != nil {
			return err
		}

		allocation := &models.CopiedTrader{
			UserID:          userID,
			TraderID:        req.TraderID,
			AmountAllocated: req.Amount,
		}
		if err := tx.Create(allocation).Error; err != nil {
			return err
		}

		return tx.Model(&models.Trader{}).
			Where("id = ?", req.TraderID).
			Update("followers", gorm.Expr("followers + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	return s.copyResult(userID)
}

// StopCopying прекращает копирование: аллокация удаляется, заблокированная
// сумма возвращается на торговый баланс, счетчик подписчиков уменьшается.
func (s *TraderService) StopCopying(userID uint, req StopCopyRequest) (*CopyResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var allocation models.CopiedTrader
		if err := tx.Where("user_id = ? AND trader_id = ?", userID, req.TraderID).
			First(&allocation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Delete(&allocation).Error; err != nil {
			return err
		}

		if err := creditTrading(tx, userID, allocation.AmountAllocated); err != nil {
			return err
		}

		return tx.Model(&models.Trader{}).
			Where("id = ? AND followers > 0", req.TraderID).
			Update("followers", gorm.Expr("followers - 1")).Error
	})
	if err != nil {
		return nil, err
	}

	return s.copyResult(userID)
}

// copyResult собирает торговый баланс и актуальный список аллокаций
func (s *TraderService) copyResult(userID uint) (*CopyResult, error) {
	var user models.User
	if err := s.db.Preload("CopiedTraders").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &CopyResult{
		TradingBalance: user.TradingBalance,
		CopiedTraders:  user.CopiedTraders,
	}, nil
}
