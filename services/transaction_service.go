package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/beevik/etree"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepositRequest представляет данные заявки на пополнение
type DepositRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required"`
	ReferenceID string  `json:"referenceId"`
	ProofImage  string  `json:"proofImage" validate:"required"`
}

// WithdrawRequest представляет данные заявки на вывод средств
type WithdrawRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method" validate:"required"`
	PayoutAddress string  `json:"payoutAddress" validate:"required"`
}

// PurchaseRequest представляет покупку плана или сигнала
type PurchaseRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PlanName    string  `json:"planName"`
	SignalType  string  `json:"signalType"`
	Description string  `json:"description"`
}

// ServicePurchaseRequest представляет дискриминированную сервисную операцию
type ServicePurchaseRequest struct {
	Type        string                    `json:"type" validate:"required,oneof=account_upgrade trading_fund trading_sell"`
	Amount      float64                   `json:"amount" validate:"required,gt=0"`
	Details     models.TransactionDetails `json:"details"`
	Description string                    `json:"description"`
}

// UpdateStatusRequest представляет переход статуса операции администратором
type UpdateStatusRequest struct {
	TransactionID uint   `json:"transactionId" validate:"required"`
	Status        string `json:"status" validate:"required,oneof=completed failed"`
}

// InjectLedgerRequest представляет прямую запись в журнал администратором
type InjectLedgerRequest struct {
	UserID uint    `json:"userId" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Type   string  `json:"type"`
	Method string  `json:"method"`
	Date   string  `json:"date"` // RFC3339 или YYYY-MM-DD, для задним числом
}

// TopupProfitRequest представляет начисление прибыли администратором
type TopupProfitRequest struct {
	UserID      uint    `json:"userId" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// TransactionService реализует операции журнала денежных движений.
// Каждая операция, затрагивающая больше одной сущности, выполняется
// внутри db.Transaction: либо применяется целиком, либо откатывается.
type TransactionService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewTransactionService создает новый экземпляр TransactionService
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{
		db:        db,
		validator: validator.New(),
	}
}

// Deposit создает заявку на пополнение со статусом pending.
// Баланс не меняется: деньги зачисляются только после подтверждения
// администратором через UpdateStatus.
func (s *TransactionService) Deposit(userID uint, req DepositRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeDeposit,
		Amount:      req.Amount,
		Method:      req.Method,
		ReferenceID: req.ReferenceID,
		Status:      models.TransactionStatusPending,
		Description: "Deposit via " + req.Method,
		ProofImage:  req.ProofImage,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation(models.TransactionTypeDeposit, nil)
	return transaction, nil
}

// RequestWithdrawal создает заявку на вывод и сразу блокирует средства:
// основной баланс уменьшается в момент заявки, до решения администратора.
func (s *TransactionService) RequestWithdrawal(userID uint, req WithdrawRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeWithdrawal,
		Amount:      req.Amount,
		Method:      req.Method,
		ReferenceID: withdrawalReference(),
		Status:      models.TransactionStatusPending,
		Description: "Withdrawal request to " + req.PayoutAddress,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := debitWallet(tx, userID, req.Amount); err != nil {
			return err
		}
		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation(models.TransactionTypeWithdrawal, nil)
	return transaction, nil
}

// Purchase списывает средства с основного баланса и пишет завершенную
// операцию. Стадии pending нет: покупка необратима с момента создания.
func (s *TransactionService) Purchase(userID uint, req PurchaseRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	purchaseType := models.TransactionTypePurchase
	if req.SignalType != "" && req.PlanName == "" {
		purchaseType = models.TransactionTypeSignalPurchase
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        purchaseType,
		Amount:      req.Amount,
		Status:      models.TransactionStatusCompleted,
		Description: req.Description,
		Details: models.TransactionDetails{
			PlanName:   req.PlanName,
			SignalType: req.SignalType,
		},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := debitWallet(tx, userID, req.Amount); err != nil {
			return err
		}
		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation(purchaseType, nil)
	return transaction, nil
}

// PurchaseService выполняет сервисную операцию, выбранную дискриминатором.
// Каждый вариант полностью описывает свой эффект на балансы,
// общего шага списания нет.
func (s *TransactionService) PurchaseService(userID uint, req ServicePurchaseRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Status:      models.TransactionStatusCompleted,
		Description: req.Description,
		Details:     req.Details,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		switch req.Type {
		case models.TransactionTypeAccountUpgrade:
			// Смена тарифа: списываем стоимость с основного баланса
			if req.Details.PlanName == "" {
				return newValidationError("field planName is required for account_upgrade")
			}
			if err := debitWallet(tx, userID, req.Amount); err != nil {
				return err
			}
			res := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("account_type", req.Details.PlanName)
			if res.Error != nil {
				return res.Error
			}

		case models.TransactionTypeTradingFund:
			// Перевод с основного баланса на торговый
			if err := debitWallet(tx, userID, req.Amount); err != nil {
				return err
			}
			if err := creditTrading(tx, userID, req.Amount); err != nil {
				return err
			}

		case models.TransactionTypeTradingSell:
			// Обратный перевод: с торгового баланса на основной
			if err := debitTrading(tx, userID, req.Amount); err != nil {
				return err
			}
			if err := creditWallet(tx, userID, req.Amount); err != nil {
				return err
			}
		}

		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation(req.Type, nil)
	return transaction, nil
}

// UpdateStatus переводит операцию из pending в терминальный статус.
// Терминальные статусы неизменяемы. Для депозита переход в completed
// зачисляет сумму на основной баланс в той же транзакционной области:
// именно здесь деньги депозита реально поступают на счет.
func (s *TransactionService) UpdateStatus(req UpdateStatusRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	var transaction models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&transaction, req.TransactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if transaction.IsTerminal() {
			return ErrAlreadyProcessed
		}

		// Статус забирается условным UPDATE, как и списания балансов:
		// из двух параллельных подтверждений выигрывает ровно одно,
		// проигравшее не зачисляет ничего
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", req.TransactionID, models.TransactionStatusPending).
			Update("status", req.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		if transaction.Type == models.TransactionTypeDeposit && req.Status == models.TransactionStatusCompleted {
			if err := creditWallet(tx, transaction.UserID, transaction.Amount); err != nil {
				return err
			}
		}

		transaction.Status = req.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordStatusTransition(transaction.Type)
	return &transaction, nil
}

// InjectLedgerEntry создает завершенную запись в обход pending-цикла
// и сразу зачисляет сумму. Используется администратором для сверки
// внесистемных событий, например подтвержденных банковских переводов.
func (s *TransactionService) InjectLedgerEntry(req InjectLedgerRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	entryType := req.Type
	if entryType == "" {
		entryType = models.TransactionTypeDeposit
	}

	description := ""
	if entryType == models.TransactionTypeProfit {
		description = "+" + strconv.FormatFloat(req.Amount, 'f', 2, 64) + " Profit"
	}

	transaction := &models.Transaction{
		UserID:      req.UserID,
		Type:        entryType,
		Amount:      req.Amount,
		Method:      req.Method,
		Status:      models.TransactionStatusCompleted,
		Description: description,
	}
	if ts, ok := parseBackdate(req.Date); ok {
		transaction.CreatedAt = ts
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}
		if err := creditWallet(tx, req.UserID, req.Amount); err != nil {
			return err
		}
		if entryType == models.TransactionTypeProfit || entryType == models.TransactionTypeTradingYield {
			return creditProfits(tx, req.UserID, req.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordCompletedOperation(entryType)
	return transaction, nil
}

// TopupProfit зачисляет прибыль: растут и ликвидный баланс,
// и накопленный счетчик прибыли.
func (s *TransactionService) TopupProfit(req TopupProfitRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	description := req.Description
	if description == "" {
		description = "System Profit Allocation"
	}

	transaction := &models.Transaction{
		UserID:      req.UserID,
		Type:        models.TransactionTypeProfit,
		Amount:      req.Amount,
		Status:      models.TransactionStatusCompleted,
		Description: description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := creditWallet(tx, req.UserID, req.Amount); err != nil {
			return err
		}
		if err := creditProfits(tx, req.UserID, req.Amount); err != nil {
			return err
		}
		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation(models.TransactionTypeProfit, nil)
	return transaction, nil
}

// GetUserTransactions возвращает историю операций пользователя
func (s *TransactionService) GetUserTransactions(userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// LedgerUser содержит краткие данные владельца операции
// для административного списка
type LedgerUser struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AdminTransaction представляет запись журнала вместе с владельцем
type AdminTransaction struct {
	models.Transaction
	User LedgerUser `json:"user"`
}

// GetAllTransactions возвращает все операции с краткими данными владельцев
func (s *TransactionService) GetAllTransactions() ([]AdminTransaction, error) {
	transactions, err := s.listAllWithUsers()
	if err != nil {
		return nil, err
	}

	entries := make([]AdminTransaction, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, AdminTransaction{
			Transaction: t,
			User: LedgerUser{
				ID:        t.User.ID,
				FirstName: t.User.FirstName,
				LastName:  t.User.LastName,
				Email:     t.User.Email,
			},
		})
	}
	return entries, nil
}

// listAllWithUsers загружает все операции вместе с пользователями
func (s *TransactionService) listAllWithUsers() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("User").
		Order("created_at desc").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// ExportStatement выгружает журнал в XML для внешней сверки
func (s *TransactionService) ExportStatement() ([]byte, error) {
	transactions, err := s.listAllWithUsers()
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("statement")
	root.CreateAttr("generatedAt", time.Now().UTC().Format(time.RFC3339))
	root.CreateAttr("count", strconv.Itoa(len(transactions)))

	for _, t := range transactions {
		entry := root.CreateElement("transaction")
		entry.CreateAttr("id", strconv.FormatUint(uint64(t.ID), 10))
		entry.CreateElement("user").SetText(t.User.Email)
		entry.CreateElement("type").SetText(t.Type)
		entry.CreateElement("amount").SetText(strconv.FormatFloat(t.Amount, 'f', 2, 64))
		entry.CreateElement("status").SetText(t.Status)
		if t.ReferenceID != "" {
			entry.CreateElement("reference").SetText(t.ReferenceID)
		}
		entry.CreateElement("createdAt").SetText(t.CreatedAt.UTC().Format(time.RFC3339))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// withdrawalReference генерирует уникальный референс заявки на вывод
func withdrawalReference() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "WD-" + token[:8]
}

// parseBackdate разбирает дату для записи задним числом
func parseBackdate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
