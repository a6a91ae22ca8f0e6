package services

import (
	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ContactRequest представляет обращение через форму обратной связи
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=2,max=5000"`
}

// ContactService принимает обращения и рассылает уведомления.
// Отправка почты не входит в успех операции: обращение сохранено,
// а сбой уведомления только логируется.
type ContactService struct {
	db        *gorm.DB
	email     *EmailService
	validator *validator.Validate
}

// NewContactService создает новый экземпляр ContactService
func NewContactService(db *gorm.DB, email *EmailService) *ContactService {
	return &ContactService{
		db:        db,
		email:     email,
		validator: validator.New(),
	}
}

// Submit сохраняет обращение и пытается отправить уведомление
func (s *ContactService) Submit(req ContactRequest) (*models.ContactMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, formatValidationErrors(err)
	}

	message := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	// Сначала сохраняем: обращение не должно теряться из-за почты
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}

	if err := s.email.SendContactNotification(req.Name, req.Email, req.Message); err != nil {
		utils.LogError("contact notification email failed: %v", err)
	}

	return message, nil
}
