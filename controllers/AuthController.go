package controllers

import (
	"net/http"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/config"
	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthController обрабатывает регистрацию и вход
type AuthController struct {
	userService *services.UserService
	config      *config.Config
}

// LoginRequest представляет данные для входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims представляет полезную нагрузку JWT токена
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(userService *services.UserService, cfg *config.Config) *AuthController {
	return &AuthController{
		userService: userService,
		config:      cfg,
	}
}

// Register обрабатывает регистрацию нового пользователя
func (ctrl *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := ctrl.userService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login обрабатывает вход пользователя и выдает JWT токен
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := ctrl.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	tokenString, err := ctrl.generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"firstName":     user.FirstName,
		"lastName":      user.LastName,
		"email":         user.Email,
		"role":          user.Role,
		"currency":      user.Currency,
		"accountType":   user.AccountType,
		"walletBalance": user.WalletBalance,
		"token":         tokenString,
	})
}

// generateToken создает JWT токен
func (ctrl *AuthController) generateToken(user *models.User) (string, error) {
	expirationTime := time.Now().Add(time.Duration(ctrl.config.JWT.ExpiresIn) * time.Hour)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ctrl.config.JWT.SecretKey))
}

// RegisterRoutes регистрирует маршруты контроллера
func (ctrl *AuthController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/register", ctrl.Register)
	router.POST("/auth/login", ctrl.Login)
}
