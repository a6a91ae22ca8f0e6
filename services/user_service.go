package services

import (
	"errors"
	"strings"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest представляет данные регистрации нового пользователя
type RegisterRequest struct {
	FirstName       string         `json:"firstName" validate:"required,min=2,max=50"`
	MiddleName      string         `json:"middleName" validate:"omitempty,max=50"`
	LastName        string         `json:"lastName" validate:"required,min=2,max=50"`
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=8"`
	ConfirmPassword string         `json:"confirmPassword" validate:"required"`
	Currency        string         `json:"currency" validate:"omitempty,len=3"`
	Sex             string         `json:"sex" validate:"omitempty,oneof=male female other"`
	MaritalStatus   string         `json:"maritalStatus" validate:"omitempty,oneof=single married divorced widowed"`
	Occupation      string         `json:"occupation" validate:"omitempty,max=100"`
	Address         models.Address `json:"address"`
}

// UpdateProfileRequest представляет обновление собственного профиля.
// Финансовые поля и роль через этот путь недоступны.
type UpdateProfileRequest struct {
	FirstName     *string         `json:"firstName"`
	MiddleName    *string         `json:"middleName"`
	LastName      *string         `json:"lastName"`
	Sex           *string         `json:"sex"`
	MaritalStatus *string         `json:"maritalStatus"`
	Occupation    *string         `json:"occupation"`
	Address       *models.Address `json:"address"`
}

// AdminUpdateUserRequest представляет привилегированное обновление
// пользователя: балансы, роль, тип аккаунта, активность
type AdminUpdateUserRequest struct {
	FirstName      *string  `json:"firstName"`
	LastName       *string  `json:"lastName"`
	Email          *string  `json:"email"`
	WalletBalance  *float64 `json:"walletBalance"`
	TradingBalance *float64 `json:"tradingBalance"`
	TotalProfits   *float64 `json:"totalProfits"`
	AccountType    *string  `json:"accountType"`
	Role           *string  `json:"role"`
	IsActive       *bool    `json:"isActive"`
	Password       *string  `json:"password"`
}

// UserService реализует операции над счетами пользователей
type UserService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewUserService создает новый экземпляр UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:        db,
		validator: validator.New(),
	}
}

// HashPassword хеширует пароль. Явное преобразование перед сохранением,
// без хуков на уровне хранилища.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// normalizeEmail приводит email к нижнему регистру без пробелов
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с нулевыми балансами
func (s *UserService) Register(req RegisterRequest) (*models.User, error) {
	// Нормализация до валидации: email с пробелами по краям
	// принимается, а не отклоняется тегом email
	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}
	if req.Password != req.ConfirmPassword {
		return nil, newValidationError("passwords do not match")
	}

	email := req.Email

	var existing int64
	if err := s.db.Model(&models.User{}).
		Where("LOWER(email) = ?", email).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	user := &models.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    strings.TrimSpace(req.MiddleName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         email,
		Password:      hashed,
		Currency:      currency,
		Sex:           req.Sex,
		MaritalStatus: req.MaritalStatus,
		Occupation:    strings.TrimSpace(req.Occupation),
		Address:       req.Address,
		AccountType:   models.AccountTypeBasic,
		Role:          models.RoleUser,
		IsActive:      true,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin создает администратора при старте, если его еще нет.
// Пустой email отключает посев.
func (s *UserService) EnsureAdmin(email, password string) error {
	if email == "" {
		return nil
	}

	email = normalizeEmail(email)

	var existing int64
	if err := s.db.Model(&models.User{}).
		Where("LOWER(email) = ?", email).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName:   "System",
		LastName:    "Administrator",
		Email:       email,
		Password:    hashed,
		Currency:    "USD",
		AccountType: models.AccountTypeGold,
		Role:        models.RoleAdmin,
		IsActive:    true,
	}
	return s.db.Create(admin).Error
}

// Authenticate проверяет учетные данные и отмечает время входа
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(TRIM(email)) = ?", normalizeEmail(email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return &user, nil
}

// GetByID возвращает пользователя с его аллокациями
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("CopiedTraders").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetAllUsers возвращает всех пользователей, новые первыми
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile обновляет собственный профиль пользователя
func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.MiddleName != nil {
		user.MiddleName = *req.MiddleName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Sex != nil {
		user.Sex = *req.Sex
	}
	if req.MaritalStatus != nil {
		user.MaritalStatus = *req.MaritalStatus
	}
	if req.Occupation != nil {
		user.Occupation = *req.Occupation
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// AdminUpdateUser обновляет пользователя с привилегиями администратора
func (s *UserService) AdminUpdateUser(id uint, req AdminUpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.WalletBalance != nil {
		if *req.WalletBalance < 0 {
			return nil, newValidationError("walletBalance cannot be negative")
		}
		user.WalletBalance = *req.WalletBalance
	}
	if req.TradingBalance != nil {
		if *req.TradingBalance < 0 {
			return nil, newValidationError("tradingBalance cannot be negative")
		}
		user.TradingBalance = *req.TradingBalance
	}
	if req.TotalProfits != nil {
		user.TotalProfits = *req.TotalProfits
	}
	if req.AccountType != nil {
		user.AccountType = *req.AccountType
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser удаляет пользователя. Последний администратор защищен
// от удаления, чтобы система не осталась без привилегированного доступа.
func (s *UserService) DeleteUser(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if user.Role == models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).
				Where("role = ?", models.RoleAdmin).
				Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.CopiedTrader{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
