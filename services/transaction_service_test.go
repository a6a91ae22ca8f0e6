package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDepositCreatesPendingWithoutBalanceChange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	transaction, err := svc.Deposit(user.ID, DepositRequest{
		Amount:     500,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusPending, transaction.Status)
	assert.Equal(t, models.TransactionTypeDeposit, transaction.Type)

	// Деньги не зачисляются до подтверждения администратором
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 100.0, reloaded.WalletBalance)
}

func TestDepositRequiresProofImage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	_, err := svc.Deposit(user.ID, DepositRequest{
		Amount: 500,
		Method: "BTC",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestWithdrawalDebitsWalletImmediately(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	transaction, err := svc.RequestWithdrawal(user.ID, WithdrawRequest{
		Amount:        400,
		Method:        "USDT",
		PayoutAddress: "0xABCDEF",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusPending, transaction.Status)
	assert.True(t, strings.HasPrefix(transaction.ReferenceID, "WD-"))
	assert.Len(t, transaction.ReferenceID, 11)

	// Средства блокируются в момент заявки
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 600.0, reloaded.WalletBalance)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	_, err := svc.RequestWithdrawal(user.ID, WithdrawRequest{
		Amount:        400,
		Method:        "USDT",
		PayoutAddress: "0xABCDEF",
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Баланс не тронут, заявка не создана
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 100.0, reloaded.WalletBalance)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWithdrawalRollsBackDebitWhenInsertFails(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	failInsertsInto(t, db, "transactions")

	_, err := svc.RequestWithdrawal(user.ID, WithdrawRequest{
		Amount:        400,
		Method:        "USDT",
		PayoutAddress: "0xABCDEF",
	})
	require.Error(t, err)

	// Списание откатилось вместе с неудавшейся записью журнала
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 1000.0, reloaded.WalletBalance)
}

func TestPurchaseCompletedAtCreation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	transaction, err := svc.Purchase(user.ID, PurchaseRequest{
		Amount:      250,
		PlanName:    "silver",
		Description: "Silver plan purchase",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusCompleted, transaction.Status)
	assert.Equal(t, models.TransactionTypePurchase, transaction.Type)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 750.0, reloaded.WalletBalance)
}

func TestPurchaseSignalType(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	transaction, err := svc.Purchase(user.ID, PurchaseRequest{
		Amount:     100,
		SignalType: "forex-vip",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTypeSignalPurchase, transaction.Type)
	assert.Equal(t, "forex-vip", transaction.Details.SignalType)
}

func TestServicePurchaseAccountUpgrade(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	_, err := svc.PurchaseService(user.ID, ServicePurchaseRequest{
		Type:    models.TransactionTypeAccountUpgrade,
		Amount:  300,
		Details: models.TransactionDetails{PlanName: "gold"},
	})
	require.NoError(t, err)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 700.0, reloaded.WalletBalance)
	assert.Equal(t, "gold", reloaded.AccountType)
}

func TestServicePurchaseAccountUpgradeRequiresPlanName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	_, err := svc.PurchaseService(user.ID, ServicePurchaseRequest{
		Type:   models.TransactionTypeAccountUpgrade,
		Amount: 300,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Неудавшаяся операция не оставляет следов
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 1000.0, reloaded.WalletBalance)
	assert.Equal(t, models.AccountTypeBasic, reloaded.AccountType)
}

func TestServicePurchaseTradingFund(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 200)

	_, err := svc.PurchaseService(user.ID, ServicePurchaseRequest{
		Type:   models.TransactionTypeTradingFund,
		Amount: 400,
	})
	require.NoError(t, err)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 600.0, reloaded.WalletBalance)
	assert.Equal(t, 600.0, reloaded.TradingBalance)
}

func TestServicePurchaseTradingSellLeavesWalletDebitUntouched(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 500)

	_, err := svc.PurchaseService(user.ID, ServicePurchaseRequest{
		Type:   models.TransactionTypeTradingSell,
		Amount: 300,
	})
	require.NoError(t, err)

	// Продажа двигает деньги только в одну сторону: торговый -> основной
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 1300.0, reloaded.WalletBalance)
	assert.Equal(t, 200.0, reloaded.TradingBalance)
}

func TestServicePurchaseTradingSellInsufficientTrading(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 100)

	_, err := svc.PurchaseService(user.ID, ServicePurchaseRequest{
		Type:   models.TransactionTypeTradingSell,
		Amount: 300,
	})
	require.ErrorIs(t, err, ErrInsufficientTrading)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 1000.0, reloaded.WalletBalance)
	assert.Equal(t, 100.0, reloaded.TradingBalance)
}

func TestUpdateStatusCompletesDepositAndCreditsWallet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	deposit, err := svc.Deposit(user.ID, DepositRequest{
		Amount:     500,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: deposit.ID,
		Status:        models.TransactionStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)

	// Именно здесь депозит реально поступает на счет
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 600.0, reloaded.WalletBalance)
}

func TestUpdateStatusFailedDepositLeavesBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	deposit, err := svc.Deposit(user.ID, DepositRequest{
		Amount:     500,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: deposit.ID,
		Status:        models.TransactionStatusFailed,
	})
	require.NoError(t, err)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 100.0, reloaded.WalletBalance)
}

func TestUpdateStatusTerminalIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	deposit, err := svc.Deposit(user.ID, DepositRequest{
		Amount:     500,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: deposit.ID,
		Status:        models.TransactionStatusCompleted,
	})
	require.NoError(t, err)

	// Повторный переход отклоняется, повторного зачисления нет
	_, err = svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: deposit.ID,
		Status:        models.TransactionStatusCompleted,
	})
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 600.0, reloaded.WalletBalance)
}

func TestUpdateStatusWithdrawalCompletionLeavesBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	withdrawal, err := svc.RequestWithdrawal(user.ID, WithdrawRequest{
		Amount:        40,
		Method:        "USDT",
		PayoutAddress: "0xABCDEF",
	})
	require.NoError(t, err)

	reloaded := reloadUser(t, db, user.ID)
	require.Equal(t, 60.0, reloaded.WalletBalance)

	updated, err := svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: withdrawal.ID,
		Status:        models.TransactionStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)

	// Средства заблокированы еще заявкой, подтверждение баланс не трогает
	reloaded = reloadUser(t, db, user.ID)
	assert.Equal(t, 60.0, reloaded.WalletBalance)
}

func TestUpdateStatusLosingRaceDoesNotDoubleCredit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	deposit, err := svc.Deposit(user.ID, DepositRequest{
		Amount:     500,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)

	// Между чтением pending-записи и записью статуса другой администратор
	// успевает подтвердить ту же операцию
	raced := false
	err = db.Callback().Query().After("gorm:query").
		Register("test_concurrent_update_status", func(tx *gorm.DB) {
			if tx.Statement.Table != "transactions" || raced {
				return
			}
			raced = true
			tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE transactions SET status = ? WHERE id = ?",
					models.TransactionStatusCompleted, deposit.ID)
		})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: deposit.ID,
		Status:        models.TransactionStatusCompleted,
	})
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	// Проигравшее подтверждение ничего не зачисляет
	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 100.0, reloaded.WalletBalance)
}

func TestUpdateStatusUnknownTransaction(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)

	_, err := svc.UpdateStatus(UpdateStatusRequest{
		TransactionID: 9999,
		Status:        models.TransactionStatusCompleted,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInjectLedgerEntryCreditsWallet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	transaction, err := svc.InjectLedgerEntry(InjectLedgerRequest{
		UserID: user.ID,
		Amount: 250,
		Method: "Bank Transfer",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusCompleted, transaction.Status)
	assert.Equal(t, models.TransactionTypeDeposit, transaction.Type)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 350.0, reloaded.WalletBalance)
	assert.Equal(t, 0.0, reloaded.TotalProfits)
}

func TestInjectLedgerEntryProfitCreditsTotalProfits(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	transaction, err := svc.InjectLedgerEntry(InjectLedgerRequest{
		UserID: user.ID,
		Amount: 75.5,
		Type:   models.TransactionTypeProfit,
	})
	require.NoError(t, err)
	assert.Equal(t, "+75.50 Profit", transaction.Description)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 175.5, reloaded.WalletBalance)
	assert.Equal(t, 75.5, reloaded.TotalProfits)
}

func TestInjectLedgerEntryBackdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 0, 0)

	transaction, err := svc.InjectLedgerEntry(InjectLedgerRequest{
		UserID: user.ID,
		Amount: 100,
		Date:   "2025-03-15",
	})
	require.NoError(t, err)

	assert.Equal(t, 2025, transaction.CreatedAt.Year())
	assert.Equal(t, "March", transaction.CreatedAt.Month().String())
	assert.Equal(t, 15, transaction.CreatedAt.Day())
}

func TestTopupProfitCreditsBothCounters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 100, 0)

	transaction, err := svc.TopupProfit(TopupProfitRequest{
		UserID: user.ID,
		Amount: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "System Profit Allocation", transaction.Description)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 150.0, reloaded.WalletBalance)
	assert.Equal(t, 50.0, reloaded.TotalProfits)
}

func TestGetUserTransactionsOnlyOwn(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	first := createTestUser(t, db, 1000, 0)
	second := createTestUser(t, db, 1000, 0)

	_, err := svc.Deposit(first.ID, DepositRequest{
		Amount:     100,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	_, err = svc.Deposit(second.ID, DepositRequest{
		Amount:     200,
		Method:     "ETH",
		ProofImage: "https://cdn.example.com/b.png",
	})
	require.NoError(t, err)

	transactions, err := svc.GetUserTransactions(first.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, first.ID, transactions[0].UserID)
}

func TestInjectLedgerEntryKeepsPendingGaugeFlat(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 0, 0)

	metrics := utils.GetMetrics()
	before := metrics.GetMetricsSnapshot()["pending_deposits"].(int64)

	// Запись создается сразу завершенной и в pending не попадает
	_, err := svc.InjectLedgerEntry(InjectLedgerRequest{
		UserID: user.ID,
		Amount: 100,
	})
	require.NoError(t, err)

	after := metrics.GetMetricsSnapshot()["pending_deposits"].(int64)
	assert.Equal(t, before, after)
}

func TestGetAllTransactionsIncludesUserSummary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	_, err := svc.Deposit(user.ID, DepositRequest{
		Amount:     100,
		Method:     "BTC",
		ProofImage: "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)

	entries, err := svc.GetAllTransactions()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, user.ID, entries[0].User.ID)
	assert.Equal(t, user.Email, entries[0].User.Email)
	assert.Equal(t, "Ivan", entries[0].User.FirstName)

	// Балансы владельца в административный список не попадают
	payload, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "walletBalance")
	assert.Contains(t, string(payload), user.Email)
}

func TestExportStatementProducesXML(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTransactionService(db)
	user := createTestUser(t, db, 1000, 0)

	_, err := svc.RequestWithdrawal(user.ID, WithdrawRequest{
		Amount:        100,
		Method:        "USDT",
		PayoutAddress: "0xABCDEF",
	})
	require.NoError(t, err)

	data, err := svc.ExportStatement()
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, "<statement")
	assert.Contains(t, xml, "<type>withdrawal</type>")
	assert.Contains(t, xml, user.Email)
}
