package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/SegundamanoDev/Aurelius-backend/config"
	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB создает изолированную in-memory базу для одного теста
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CopiedTrader{},
		&models.Trader{},
		&models.Transaction{},
		&models.ChatMessage{},
		&models.ContactMessage{},
	))

	return db
}

// createTestUser создает пользователя с заданными балансами
func createTestUser(t *testing.T, db *gorm.DB, wallet, trading float64) *models.User {
	t.Helper()

	user := &models.User{
		FirstName:      "Ivan",
		LastName:       "Petrov",
		Email:          fmt.Sprintf("user%d@example.com", testUserSeq(db)),
		Password:       "hashed-password",
		Currency:       "USD",
		WalletBalance:  wallet,
		TradingBalance: trading,
		AccountType:    models.AccountTypeBasic,
		Role:           models.RoleUser,
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestAdmin создает пользователя с ролью администратора
func createTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	admin := &models.User{
		FirstName:   "Olga",
		LastName:    "Sidorova",
		Email:       fmt.Sprintf("admin%d@example.com", testUserSeq(db)),
		Password:    "hashed-password",
		Currency:    "USD",
		AccountType: models.AccountTypeGold,
		Role:        models.RoleAdmin,
		IsActive:    true,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

// createTestTrader создает публичного стратега для витрины
func createTestTrader(t *testing.T, db *gorm.DB) *models.Trader {
	t.Helper()

	trader := &models.Trader{
		Name:        "Alpha Capital",
		Avatar:      "AC",
		Strategy:    "Institutional",
		ROI:         "+124.5%",
		WinRate:     "92%",
		MaxDrawdown: "-3.1%",
		IsPublic:    true,
	}
	require.NoError(t, db.Create(trader).Error)
	return trader
}

// testUserSeq возвращает следующий порядковый номер для уникальных email
func testUserSeq(db *gorm.DB) int64 {
	var count int64
	db.Model(&models.User{}).Count(&count)
	return count + 1
}

// failInsertsInto заставляет все последующие вставки в таблицу падать.
// Используется для проверки отката транзакционной области.
func failInsertsInto(t *testing.T, db *gorm.DB, table string) {
	t.Helper()

	err := db.Callback().Create().Before("gorm:create").
		Register("test_fail_insert_"+table, func(tx *gorm.DB) {
			if tx.Statement.Table == table {
				tx.AddError(errors.New("simulated insert failure"))
			}
		})
	require.NoError(t, err)
}

// newTestEmailService создает почтовый сервис с заведомо недоступным
// SMTP-сервером: отправка быстро падает, не покидая машину
func newTestEmailService() *EmailService {
	cfg := &config.Config{}
	cfg.SMTP.Host = "127.0.0.1"
	cfg.SMTP.Port = 1
	cfg.SMTP.From = "no-reply@test.local"
	cfg.SMTP.ContactTo = "support@test.local"
	return NewEmailService(cfg)
}

// reloadUser перечитывает пользователя из базы
func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}
