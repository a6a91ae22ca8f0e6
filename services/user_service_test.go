package services

import (
	"testing"

	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func registerRequest(email string) RegisterRequest {
	return RegisterRequest{
		FirstName:       "Ivan",
		LastName:        "Petrov",
		Email:           email,
		Password:        "correct-horse-battery",
		ConfirmPassword: "correct-horse-battery",
	}
}

func TestRegisterHashesPasswordAndZeroesBalances(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(registerRequest("ivan@example.com"))
	require.NoError(t, err)

	// Пароль хранится только в виде bcrypt-хеша
	assert.NotEqual(t, "correct-horse-battery", user.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(user.Password), []byte("correct-horse-battery")))

	assert.Equal(t, 0.0, user.WalletBalance)
	assert.Equal(t, 0.0, user.TradingBalance)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.AccountTypeBasic, user.AccountType)
	assert.Equal(t, "USD", user.Currency)
}

func TestRegisterNormalizesEmailAndRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(registerRequest("  Ivan@Example.COM "))
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", user.Email)

	_, err = svc.Register(registerRequest("IVAN@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	req := registerRequest("ivan@example.com")
	req.ConfirmPassword = "something-else-entirely"

	_, err := svc.Register(req)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestAuthenticateSuccessAndFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register(registerRequest("ivan@example.com"))
	require.NoError(t, err)

	user, err := svc.Authenticate("Ivan@Example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)

	_, err = svc.Authenticate("ivan@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "correct-horse-battery")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfileDoesNotTouchFinancials(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, 500, 200)

	newName := "Petr"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileRequest{
		FirstName: &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, "Petr", updated.FirstName)
	assert.Equal(t, 500.0, updated.WalletBalance)
	assert.Equal(t, 200.0, updated.TradingBalance)
}

func TestAdminUpdateUserSetsBalancesAndRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, 0, 0)

	wallet := 2500.0
	role := models.RoleAdmin
	active := false
	updated, err := svc.AdminUpdateUser(user.ID, AdminUpdateUserRequest{
		WalletBalance: &wallet,
		Role:          &role,
		IsActive:      &active,
	})
	require.NoError(t, err)

	assert.Equal(t, 2500.0, updated.WalletBalance)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.False(t, updated.IsActive)
}

func TestAdminUpdateUserRejectsNegativeBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, 100, 0)

	negative := -50.0
	_, err := svc.AdminUpdateUser(user.ID, AdminUpdateUserRequest{
		WalletBalance: &negative,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 100.0, reloaded.WalletBalance)
}

func TestDeleteUserRemovesAllocations(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	traderSvc := NewTraderService(db)

	user := createTestUser(t, db, 0, 1000)
	trader := createTestTrader(t, db)
	_, err := traderSvc.StartCopying(user.ID, CopyRequest{TraderID: trader.ID, Amount: 100})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(user.ID))

	var allocations int64
	db.Model(&models.CopiedTrader{}).Where("user_id = ?", user.ID).Count(&allocations)
	assert.Equal(t, int64(0), allocations)
}

func TestDeleteUserProtectsLastAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	admin := createTestAdmin(t, db)

	err := svc.DeleteUser(admin.ID)
	require.ErrorIs(t, err, ErrLastAdmin)

	// При наличии второго администратора удаление разрешено
	second := createTestAdmin(t, db)
	require.NoError(t, svc.DeleteUser(admin.ID))

	var remaining models.User
	require.NoError(t, db.First(&remaining, second.ID).Error)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	require.NoError(t, svc.EnsureAdmin("root@example.com", "super-secret-pass"))
	require.NoError(t, svc.EnsureAdmin("Root@Example.com", "different-pass"))

	var admins int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	assert.Equal(t, int64(1), admins)

	// Пустой email отключает посев
	require.NoError(t, svc.EnsureAdmin("", ""))
}

func TestDeleteUserUnknown(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	err := svc.DeleteUser(9999)
	require.ErrorIs(t, err, ErrNotFound)
}
